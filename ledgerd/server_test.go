// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ledgerd

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	config "github.com/BOXFoundation/ledgerd/config"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/BOXFoundation/ledgerd/wallet/account"
	"github.com/facebookgo/ensure"
	"github.com/jbenet/goprocess"
	"github.com/spf13/viper"
)

const cfgYAML = `
network: testnet
log:
  out:
    name: stderr
  level: error
  formatter:
    name: text
database:
  name: memdb
rpc:
  enabled: false
consensus:
  keypath: validator.keystore
  passphrase: %s
  timeout_propose: 1s
  block_interval: 100ms
sync:
  poll_interval: 100ms
genesis:
  timestamp: 1540000000
  validators:
    - address: %s
      weight: 1
`

const passphrase = "ledgerd"

func newTestServer(t *testing.T) (*Server, func()) {
	ws, err := ioutil.TempDir("", "ledgerd-node")
	ensure.Nil(t, err)
	acc, err := account.NewAccount(filepath.Join(ws, "validator.keystore"), passphrase)
	ensure.Nil(t, err)

	v := viper.New()
	v.SetConfigType("yaml")
	ensure.Nil(t, v.ReadConfig(bytes.NewBufferString(fmt.Sprintf(cfgYAML, passphrase, acc.Address()))))
	v.Set("workspace", ws)
	cfg, err := config.Load(v)
	ensure.Nil(t, err)

	tr, err := p2p.NewPipeNetwork().NewTransport()
	ensure.Nil(t, err)
	server := newServer(goprocess.Background(), cfg, tr)
	ensure.Nil(t, server.Prepare())
	return server, func() {
		server.Stop()
		os.RemoveAll(ws)
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSingleValidatorCommits(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()
	ensure.Nil(t, server.Start())

	waitUntil(t, 10*time.Second, func() bool {
		height, _ := server.Chain().Head()
		return height >= 3
	})
	_, _, halted := server.ConsensusStatus()
	ensure.False(t, halted)
	ensure.DeepEqual(t, server.RPCAddr(), "")
}

func TestFatalStopsConsensus(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()
	ensure.Nil(t, server.Start())

	storageErr := errors.New("disk gone")
	server.bus.Publish(eventbus.TopicNodeFatal, storageErr)
	ensure.DeepEqual(t, server.Fatal(), storageErr)
	_, _, halted := server.ConsensusStatus()
	ensure.True(t, halted)

	// the first error is kept
	server.bus.Publish(eventbus.TopicNodeFatal, errors.New("later"))
	ensure.DeepEqual(t, server.Fatal(), storageErr)
}
