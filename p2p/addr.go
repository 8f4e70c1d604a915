// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"fmt"
	"sort"
	"sync"
	"time"

	host "github.com/libp2p/go-libp2p-host"
	peer "github.com/libp2p/go-libp2p-peer"
	ma "github.com/multiformats/go-multiaddr"
)

func init() {
	ma.SwapToP2pMultiaddrs() // change ma.P_P2P from 'ipfs' to 'p2p'
}

// PeerMultiAddr returns the full p2p multiaddr of specified host.
// e.g. /ip4/192.168.10.34/tcp/19199/p2p/12D3KooWLornEge5BiVbL92o8wdFivY4c7GV3QdfmjkFk7Vm48Uk
func PeerMultiAddr(h host.Host) (ma.Multiaddr, error) {
	if len(h.Addrs()) == 0 {
		return nil, ErrUnknownAddress
	}
	return EncapsulatePeerMultiAddr(h.Addrs()[0], h.ID())
}

// DecapsulatePeerMultiAddr splits a p2p multiaddr into the transport
// multiaddr and the peer id.
func DecapsulatePeerMultiAddr(addr ma.Multiaddr) (ma.Multiaddr, peer.ID, error) {
	pid, err := addr.ValueForProtocol(ma.P_P2P)
	if err != nil {
		return nil, "", err
	}
	peerid, err := peer.IDB58Decode(pid)
	if err != nil {
		return nil, "", err
	}
	pma, err := ma.NewMultiaddr(fmt.Sprintf("/%s/%s", ma.ProtocolWithCode(ma.P_P2P).Name, pid))
	if err != nil {
		return nil, "", err
	}
	return addr.Decapsulate(pma), peerid, nil
}

// EncapsulatePeerMultiAddr appends /p2p/{peerid} to a transport multiaddr.
func EncapsulatePeerMultiAddr(addr ma.Multiaddr, peerid peer.ID) (ma.Multiaddr, error) {
	pma, err := ma.NewMultiaddr(
		fmt.Sprintf("/%s/%s", ma.ProtocolWithCode(ma.P_P2P).Name, peer.IDB58Encode(peerid)),
	)
	if err != nil {
		return nil, err
	}
	return addr.Encapsulate(pma), nil
}

// addrEntry is a dialable address with its failure history.
type addrEntry struct {
	addr     string
	pid      peer.ID
	failures int
	nextDial time.Time
}

// addrBook remembers every address ever known. Failures push an address
// back in dial order and delay its next dial; they never remove it.
type addrBook struct {
	mtx     sync.Mutex
	entries map[string]*addrEntry
	base    time.Duration
	max     time.Duration
}

func newAddrBook(base, max time.Duration) *addrBook {
	return &addrBook{entries: make(map[string]*addrEntry), base: base, max: max}
}

func (ab *addrBook) add(addr string, pid peer.ID) {
	if addr == "" {
		return
	}
	ab.mtx.Lock()
	defer ab.mtx.Unlock()
	if e, ok := ab.entries[addr]; ok {
		if pid != "" {
			e.pid = pid
		}
		return
	}
	ab.entries[addr] = &addrEntry{addr: addr, pid: pid}
}

func (ab *addrBook) backoff(failures int) time.Duration {
	d := ab.base
	for i := 1; i < failures && d < ab.max; i++ {
		d *= 2
	}
	if d > ab.max {
		d = ab.max
	}
	return d
}

func (ab *addrBook) failed(addr string, now time.Time) time.Duration {
	ab.mtx.Lock()
	defer ab.mtx.Unlock()
	e, ok := ab.entries[addr]
	if !ok {
		return 0
	}
	e.failures++
	d := ab.backoff(e.failures)
	e.nextDial = now.Add(d)
	return d
}

func (ab *addrBook) succeeded(addr string, pid peer.ID) {
	ab.mtx.Lock()
	defer ab.mtx.Unlock()
	if e, ok := ab.entries[addr]; ok {
		e.failures = 0
		e.nextDial = time.Time{}
		e.pid = pid
	}
}

func (ab *addrBook) failures(addr string) int {
	ab.mtx.Lock()
	defer ab.mtx.Unlock()
	if e, ok := ab.entries[addr]; ok {
		return e.failures
	}
	return 0
}

// candidates returns the addresses due for a dial, fewest failures first.
// skip filters connected and banned peers.
func (ab *addrBook) candidates(now time.Time, skip func(addr string, pid peer.ID) bool) []string {
	ab.mtx.Lock()
	due := make([]*addrEntry, 0, len(ab.entries))
	for _, e := range ab.entries {
		if e.nextDial.After(now) {
			continue
		}
		cp := *e
		due = append(due, &cp)
	}
	ab.mtx.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].failures != due[j].failures {
			return due[i].failures < due[j].failures
		}
		return due[i].addr < due[j].addr
	})
	addrs := make([]string, 0, len(due))
	for _, e := range due {
		if skip != nil && skip(e.addr, e.pid) {
			continue
		}
		addrs = append(addrs, e.addr)
	}
	return addrs
}
