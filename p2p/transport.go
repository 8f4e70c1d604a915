// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"strings"
	"sync"

	crypto "github.com/libp2p/go-libp2p-crypto"
	peer "github.com/libp2p/go-libp2p-peer"
)

// Stream is a reliable ordered byte stream to one remote peer.
type Stream io.ReadWriteCloser

// StreamHandler is called, on its own goroutine, for every inbound stream.
type StreamHandler func(s Stream, remote peer.ID)

// Transport opens and accepts streams. The router knows nothing else about
// the network below it.
type Transport interface {
	ID() peer.ID
	ListenAddr() string
	SetStreamHandler(StreamHandler)
	Dial(ctx context.Context, addr string) (Stream, peer.ID, error)
	Close() error
}

const pipePrefix = "/pipe/"

// PipeNetwork connects PipeTransports in memory.
type PipeNetwork struct {
	mtx        sync.Mutex
	transports map[string]*PipeTransport
}

// NewPipeNetwork creates an empty in-memory network.
func NewPipeNetwork() *PipeNetwork {
	return &PipeNetwork{transports: make(map[string]*PipeTransport)}
}

// NewTransport attaches a transport with a fresh identity.
func (n *PipeNetwork) NewTransport() (*PipeTransport, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, err
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	t := &PipeTransport{network: n, id: id, addr: pipePrefix + id.Pretty()}
	n.mtx.Lock()
	n.transports[t.addr] = t
	n.mtx.Unlock()
	return t, nil
}

func (n *PipeNetwork) lookup(addr string) *PipeTransport {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.transports[addr]
}

func (n *PipeNetwork) remove(addr string) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	delete(n.transports, addr)
}

// PipeTransport is a Transport over net.Pipe, used by tests.
type PipeTransport struct {
	network *PipeNetwork
	id      peer.ID
	addr    string

	mtx     sync.RWMutex
	handler StreamHandler
}

var _ Transport = (*PipeTransport)(nil)

// ID implements Transport.
func (t *PipeTransport) ID() peer.ID { return t.id }

// ListenAddr implements Transport.
func (t *PipeTransport) ListenAddr() string { return t.addr }

// SetStreamHandler implements Transport.
func (t *PipeTransport) SetStreamHandler(h StreamHandler) {
	t.mtx.Lock()
	t.handler = h
	t.mtx.Unlock()
}

// Dial implements Transport.
func (t *PipeTransport) Dial(ctx context.Context, addr string) (Stream, peer.ID, error) {
	if !strings.HasPrefix(addr, pipePrefix) {
		return nil, "", ErrUnknownAddress
	}
	remote := t.network.lookup(addr)
	if remote == nil {
		return nil, "", ErrUnknownAddress
	}
	remote.mtx.RLock()
	handler := remote.handler
	remote.mtx.RUnlock()
	if handler == nil {
		return nil, "", ErrUnknownAddress
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	local, other := net.Pipe()
	go handler(other, t.id)
	return local, remote.id, nil
}

// Close detaches the transport from its network.
func (t *PipeTransport) Close() error {
	t.network.remove(t.addr)
	return nil
}
