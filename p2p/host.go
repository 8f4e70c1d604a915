// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	libp2p "github.com/libp2p/go-libp2p"
	crypto "github.com/libp2p/go-libp2p-crypto"
	host "github.com/libp2p/go-libp2p-host"
	libp2pnet "github.com/libp2p/go-libp2p-net"
	peer "github.com/libp2p/go-libp2p-peer"
	peerstore "github.com/libp2p/go-libp2p-peerstore"
	ma "github.com/multiformats/go-multiaddr"
)

// Host is the libp2p Transport.
type Host struct {
	host host.Host
	addr string
}

var _ Transport = (*Host)(nil)

// NewHost creates a libp2p host listening on the configured address, with
// the network identity stored at config.KeyPath.
func NewHost(ctx context.Context, config *Config) (*Host, error) {
	networkIdentity, err := loadNetworkIdentity(config.KeyPath)
	if err != nil {
		return nil, err
	}
	opts := []libp2p.Option{
		libp2p.ListenAddrStrings(fmt.Sprintf("/ip4/%s/tcp/%d", config.Address, config.Port)),
		libp2p.Identity(networkIdentity),
		libp2p.DefaultTransports,
		libp2p.DefaultMuxers,
		libp2p.DefaultSecurity,
		libp2p.NATPortMap(),
	}
	h, err := libp2p.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	full, err := PeerMultiAddr(h)
	if err != nil {
		h.Close()
		return nil, err
	}
	logger.Infof("Now listening on %v", full)
	return &Host{host: h, addr: full.String()}, nil
}

// loadNetworkIdentity reads the base64 ed25519 key at path, creating it on
// first start. An empty path gives an ephemeral identity.
func loadNetworkIdentity(path string) (crypto.PrivKey, error) {
	if path == "" {
		key, _, err := crypto.GenerateEd25519Key(rand.Reader)
		return key, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		key, _, err := crypto.GenerateEd25519Key(rand.Reader)
		if err != nil {
			return nil, err
		}
		raw, err := crypto.MarshalPrivateKey(key)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
		data := base64.StdEncoding.EncodeToString(raw)
		if err := ioutil.WriteFile(path, []byte(data), 0400); err != nil {
			return nil, err
		}
		return key, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decodeData, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	return crypto.UnmarshalPrivateKey(decodeData)
}

// ID implements Transport.
func (h *Host) ID() peer.ID {
	return h.host.ID()
}

// ListenAddr implements Transport.
func (h *Host) ListenAddr() string {
	return h.addr
}

// SetStreamHandler implements Transport.
func (h *Host) SetStreamHandler(handler StreamHandler) {
	h.host.SetStreamHandler(ProtocolID, func(s libp2pnet.Stream) {
		handler(s, s.Conn().RemotePeer())
	})
}

// Dial implements Transport. addr is a full p2p multiaddr.
func (h *Host) Dial(ctx context.Context, addr string) (Stream, peer.ID, error) {
	maddr, err := ma.NewMultiaddr(addr)
	if err != nil {
		return nil, "", err
	}
	target, pid, err := DecapsulatePeerMultiAddr(maddr)
	if err != nil {
		return nil, "", err
	}
	h.host.Peerstore().AddAddr(pid, target, peerstore.PermanentAddrTTL)
	s, err := h.host.NewStream(ctx, pid, ProtocolID)
	if err != nil {
		return nil, "", err
	}
	return s, pid, nil
}

// Close implements Transport.
func (h *Host) Close() error {
	return h.host.Close()
}
