// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	peer "github.com/libp2p/go-libp2p-peer"
)

// PeerState is the trust level of a peer.
type PeerState int

// PeerState values
const (
	Unverified PeerState = iota
	Active
	Penalized
	Banned
)

var peerStateNames = [...]string{"Unverified", "Active", "Penalized", "Banned"}

func (s PeerState) String() string {
	if s >= 0 && int(s) < len(peerStateNames) {
		return peerStateNames[s]
	}
	return "Unknown"
}

// stateTransitions is the only place peer states may change. Disconnects
// return a peer to Unverified; an expired ban does too.
var stateTransitions = map[PeerState]map[PeerState]bool{
	Unverified: {Active: true, Banned: true},
	Active:     {Penalized: true, Banned: true, Unverified: true},
	Penalized:  {Active: true, Banned: true, Unverified: true},
	Banned:     {Unverified: true},
}

// CanTransitTo reports whether s may move to next.
func (s PeerState) CanTransitTo(next PeerState) bool {
	return stateTransitions[s][next]
}

// PeerRecord is a snapshot of what the router knows about a peer.
type PeerRecord struct {
	ID       peer.ID
	Addr     string
	Height   uint64
	State    PeerState
	Score    int64
	Failures int
	Inbound  bool
}

// Connected reports whether the peer is usable for requests.
func (r *PeerRecord) Connected() bool {
	return r.State == Active || r.State == Penalized
}
