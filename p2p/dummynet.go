// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"crypto/rand"
	"sync"

	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	conv "github.com/BOXFoundation/ledgerd/p2p/convert"
	proto "github.com/gogo/protobuf/proto"
	"github.com/jbenet/goprocess"
	crypto "github.com/libp2p/go-libp2p-crypto"
	peer "github.com/libp2p/go-libp2p-peer"
)

// DummyHub is an in-memory network of DummyNets. Every joined net is
// connected to every other.
type DummyHub struct {
	mtx  sync.RWMutex
	nets map[peer.ID]*DummyNet
	proc goprocess.Process
}

// NewDummyHub creates an empty hub.
func NewDummyHub() *DummyHub {
	return &DummyHub{
		nets: make(map[peer.ID]*DummyNet),
		proc: goprocess.WithParent(goprocess.Background()),
	}
}

// Join attaches a new net with a fresh identity.
func (h *DummyHub) Join() *DummyNet {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		panic(err)
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		panic(err)
	}
	n := &DummyNet{
		hub:      h,
		id:       id,
		notifier: NewNotifier(),
		heights:  make(map[peer.ID]uint64),
		cut:      make(map[peer.ID]bool),
	}
	n.notifier.Loop(h.proc)
	h.mtx.Lock()
	h.nets[id] = n
	h.mtx.Unlock()
	return n
}

// Leave detaches n; it can no longer send or receive.
func (h *DummyHub) Leave(n *DummyNet) {
	h.mtx.Lock()
	delete(h.nets, n.id)
	h.mtx.Unlock()
}

// Close stops every notifier of the hub.
func (h *DummyHub) Close() {
	h.proc.Close()
}

func (h *DummyHub) lookup(pid peer.ID) *DummyNet {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return h.nets[pid]
}

func (h *DummyHub) others(self peer.ID) []*DummyNet {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	nets := make([]*DummyNet, 0, len(h.nets))
	for pid, n := range h.nets {
		if pid != self {
			nets = append(nets, n)
		}
	}
	return nets
}

// DummyNet implements Net over a DummyHub.
type DummyNet struct {
	hub      *DummyHub
	id       peer.ID
	notifier *Notifier

	mtx     sync.Mutex
	heights map[peer.ID]uint64
	cut     map[peer.ID]bool
	sent    []Message
}

var _ Net = (*DummyNet)(nil)

// NewDummyNet returns a net alone on its own hub.
func NewDummyNet() *DummyNet {
	return NewDummyHub().Join()
}

// ID implements Net.
func (n *DummyNet) ID() peer.ID {
	return n.id
}

// Cut drops all traffic between n and pid, both ways.
func (n *DummyNet) Cut(pid peer.ID) {
	n.mtx.Lock()
	n.cut[pid] = true
	n.mtx.Unlock()
	if other := n.hub.lookup(pid); other != nil {
		other.mtx.Lock()
		other.cut[n.id] = true
		other.mtx.Unlock()
	}
}

func (n *DummyNet) isCut(pid peer.ID) bool {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.cut[pid]
}

// Send implements Net.
func (n *DummyNet) Send(pid peer.ID, code uint32, msg conv.Serializable) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	n.record(NewMessage(code, body, pid))
	target := n.hub.lookup(pid)
	if target == nil || n.isCut(pid) {
		return ErrPeerGone
	}
	target.Deliver(code, body, n.id)
	return nil
}

// Broadcast implements Net.
func (n *DummyNet) Broadcast(code uint32, msg conv.Serializable, exclude map[peer.ID]struct{}) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	n.record(NewMessage(code, body, ""))
	for _, target := range n.hub.others(n.id) {
		if _, skip := exclude[target.id]; skip || n.isCut(target.id) {
			continue
		}
		target.Deliver(code, body, n.id)
	}
	return nil
}

// Deliver injects an inbound message as if from sent it.
func (n *DummyNet) Deliver(code uint32, body []byte, from peer.ID) {
	if code == HeightAnnouncement {
		ann := new(corepb.HeightAnnouncement)
		if err := proto.Unmarshal(body, ann); err == nil {
			n.SetPeerHeight(from, ann.Height)
		}
	}
	n.notifier.Notify(NewMessage(code, body, from))
}

func (n *DummyNet) record(msg Message) {
	n.mtx.Lock()
	n.sent = append(n.sent, msg)
	n.mtx.Unlock()
}

// Sent returns the messages sent so far. Broadcasts have an empty From.
func (n *DummyNet) Sent() []Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]Message(nil), n.sent...)
}

// SetPeerHeight sets the height reported for pid by Peers.
func (n *DummyNet) SetPeerHeight(pid peer.ID, height uint64) {
	n.mtx.Lock()
	n.heights[pid] = height
	n.mtx.Unlock()
}

// Subscribe implements Net.
func (n *DummyNet) Subscribe(notifiee *Notifiee) {
	n.notifier.Subscribe(notifiee)
}

// UnSubscribe implements Net.
func (n *DummyNet) UnSubscribe(notifiee *Notifiee) {
	n.notifier.UnSubscribe(notifiee)
}

// Peers implements Net.
func (n *DummyNet) Peers() []PeerRecord {
	others := n.hub.others(n.id)
	n.mtx.Lock()
	defer n.mtx.Unlock()
	records := make([]PeerRecord, 0, len(others))
	for _, o := range others {
		if n.cut[o.id] {
			continue
		}
		records = append(records, PeerRecord{ID: o.id, Height: n.heights[o.id], State: Active})
	}
	return records
}
