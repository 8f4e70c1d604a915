// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wallet

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/wallet/account"
	"github.com/facebookgo/ensure"
)

func TestWalletManager(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledgerd-wallet")
	ensure.Nil(t, err)
	defer os.RemoveAll(dir)

	wlt, err := NewWalletManager(dir)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(wlt.ListAccounts()), 0)

	_, err = wlt.NewAccount("")
	ensure.DeepEqual(t, err, account.ErrEmptyPassphrase)

	addr, err := wlt.NewAccount("secret")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, wlt.ListAccounts(), []types.Address{addr})

	// a fresh manager finds the keystore on disk
	reloaded, err := NewWalletManager(dir)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, reloaded.ListAccounts(), []types.Address{addr})

	acc, err := reloaded.Unlock(addr, "secret")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, acc.Address(), addr)
	hash := crypto.DoubleHashH([]byte("payload"))
	sig, err := acc.Sign(hash[:])
	ensure.Nil(t, err)
	ensure.True(t, crypto.VerifyCompact(sig, hash, addr.Bytes()))

	_, err = reloaded.Unlock(addr, "wrong")
	ensure.NotNil(t, err)
	_, err = reloaded.Unlock(types.ZeroAddress, "secret")
	ensure.NotNil(t, err)

	hexKey, err := reloaded.DumpPrivKey(addr, "secret")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(hexKey), 64)
}
