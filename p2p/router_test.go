// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"sync"
	"testing"
	"time"

	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p/pb"
	"github.com/facebookgo/ensure"
	proto "github.com/gogo/protobuf/proto"
	"github.com/jbenet/goprocess"
	peer "github.com/libp2p/go-libp2p-peer"
)

var testGenesis = []byte("genesis")

func testConfig() *Config {
	return &Config{
		MinPeers:       1,
		MaxPeers:       8,
		ConnectTimeout: 2 * time.Second,
		PingInterval:   time.Hour,
		IdleTimeout:    2 * time.Hour,
		MaintainPeriod: time.Hour,
	}
}

func newTestRouter(t *testing.T, network *PipeNetwork, genesis []byte, cfg *Config) *Router {
	tr, err := network.NewTransport()
	ensure.Nil(t, err)
	r, err := NewRouter(goprocess.Background(), cfg, tr, genesis, eventbus.New())
	ensure.Nil(t, err)
	ensure.Nil(t, r.Run())
	return r
}

func waitUntil(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func recv(t *testing.T, ch chan Message) Message {
	select {
	case msg := <-ch:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}
	return nil
}

func silent(ch chan Message, d time.Duration) bool {
	select {
	case <-ch:
		return false
	case <-time.After(d):
		return true
	}
}

func subscribe(n Net, code uint32) chan Message {
	ch := make(chan Message, 1024)
	n.Subscribe(NewNotifiee(code, ch))
	return ch
}

func connect(t *testing.T, from, to *Router) {
	pid, err := from.Connect(context.Background(), to.ListenAddr())
	ensure.Nil(t, err)
	ensure.DeepEqual(t, pid, to.ID())
	waitUntil(t, func() bool {
		_, ok := to.connected(from.ID())
		return ok
	})
}

func (r *Router) connected(pid peer.ID) (PeerRecord, bool) {
	for _, record := range r.Peers() {
		if record.ID == pid {
			return record, true
		}
	}
	return PeerRecord{}, false
}

func ping(nonce uint64) *protoBody {
	return &protoBody{&p2ppb.Ping{Nonce: nonce}}
}

func TestRouterConnect(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	b.SetHeight(7)

	connect(t, a, b)
	record, ok := a.connected(b.ID())
	ensure.True(t, ok)
	ensure.DeepEqual(t, record.State, Active)
	ensure.DeepEqual(t, record.Height, uint64(7))
	ensure.False(t, record.Inbound)

	record, ok = b.connected(a.ID())
	ensure.True(t, ok)
	ensure.True(t, record.Inbound)
	ensure.DeepEqual(t, record.Addr, a.ListenAddr())

	_, err := a.Connect(context.Background(), b.ListenAddr())
	ensure.DeepEqual(t, err, ErrDuplicateConnection)
}

func TestRouterSendAndSubscribe(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	connect(t, a, b)

	first := subscribe(b, TransactionMsg)
	second := subscribe(b, TransactionMsg)
	ensure.Nil(t, a.Send(b.ID(), TransactionMsg, ping(1)))

	for _, ch := range []chan Message{first, second} {
		msg := recv(t, ch)
		ensure.DeepEqual(t, msg.From(), a.ID())
		got := new(p2ppb.Ping)
		ensure.Nil(t, proto.Unmarshal(msg.Body(), got))
		ensure.DeepEqual(t, got.Nonce, uint64(1))
	}

	ensure.DeepEqual(t, a.Send("nobody", TransactionMsg, ping(1)), ErrPeerGone)
}

func TestRouterDedup(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	connect(t, a, b)

	txs := subscribe(b, TransactionMsg)
	reqs := subscribe(b, BlockRequest)
	for i := 0; i < 3; i++ {
		ensure.Nil(t, a.Send(b.ID(), TransactionMsg, ping(1)))
		ensure.Nil(t, a.Send(b.ID(), BlockRequest, ping(1)))
	}
	ensure.Nil(t, a.Send(b.ID(), TransactionMsg, ping(2)))

	// repeated requests are meaningful and pass through
	for i := 0; i < 3; i++ {
		recv(t, reqs)
	}
	ensure.DeepEqual(t, recv(t, txs).Body(), mustMarshal(t, ping(1)))
	ensure.DeepEqual(t, recv(t, txs).Body(), mustMarshal(t, ping(2)))
	ensure.True(t, silent(txs, 50*time.Millisecond))
}

func mustMarshal(t *testing.T, body *protoBody) []byte {
	data, err := body.Marshal()
	ensure.Nil(t, err)
	return data
}

func TestRouterBroadcastExclusions(t *testing.T) {
	network := NewPipeNetwork()
	hub := newTestRouter(t, network, testGenesis, testConfig())
	defer hub.Stop()
	var leaves []*Router
	var chans []chan Message
	for i := 0; i < 3; i++ {
		r := newTestRouter(t, network, testGenesis, testConfig())
		defer r.Stop()
		connect(t, r, hub)
		leaves = append(leaves, r)
		chans = append(chans, subscribe(r, TransactionMsg))
	}
	churn := newTestRouter(t, network, testGenesis, testConfig())
	defer churn.Stop()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			churn.Connect(context.Background(), hub.ListenAddr())
			churn.Disconnect(hub.ID())
		}
	}()

	const n = 100
	exclude := Exclude(leaves[1].ID())
	for i := 0; i < n; i++ {
		ensure.Nil(t, hub.Broadcast(TransactionMsg, ping(uint64(i)), exclude))
	}
	for _, idx := range []int{0, 2} {
		for i := 0; i < n; i++ {
			msg := recv(t, chans[idx])
			ensure.DeepEqual(t, msg.Body(), mustMarshal(t, ping(uint64(i))))
		}
	}
	close(done)
	wg.Wait()
	ensure.True(t, silent(chans[1], 50*time.Millisecond))
}

func TestRouterGenesisMismatch(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, []byte("other"), testConfig())
	defer b.Stop()

	_, err := a.Connect(context.Background(), b.ListenAddr())
	ensure.DeepEqual(t, err, ErrGenesisMismatch)
	ensure.DeepEqual(t, len(a.Peers()), 0)
	waitUntil(t, func() bool { return len(b.Peers()) == 0 })
}

func TestRouterSelfConnection(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()

	_, err := a.Connect(context.Background(), a.ListenAddr())
	ensure.DeepEqual(t, err, ErrSelfConnection)

	_, err = a.Connect(context.Background(), "/pipe/unknown")
	ensure.DeepEqual(t, err, ErrConnectFailed)
}

func TestRouterMaxPeers(t *testing.T) {
	network := NewPipeNetwork()
	cfg := testConfig()
	cfg.MaxPeers = 1
	b := newTestRouter(t, network, testGenesis, cfg)
	defer b.Stop()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	c := newTestRouter(t, network, testGenesis, testConfig())
	defer c.Stop()

	connect(t, a, b)
	_, err := c.Connect(context.Background(), b.ListenAddr())
	ensure.NotNil(t, err)
	ensure.DeepEqual(t, len(c.Peers()), 0)
	ensure.DeepEqual(t, len(b.Peers()), 1)
}

func TestRouterRateLimitBans(t *testing.T) {
	network := NewPipeNetwork()
	cfg := testConfig()
	cfg.PeerRate = 1
	cfg.PeerBurst = 1
	cfg.MaxViolations = 3
	b := newTestRouter(t, network, testGenesis, cfg)
	defer b.Stop()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()

	events := make(chan eventbus.BusEvent, 64)
	b.bus.Subscribe(eventbus.TopicConnEvent, func(pid peer.ID, event eventbus.BusEvent) {
		if event == eventbus.RateLimitEvent {
			events <- event
		}
	})

	connect(t, a, b)
	for i := 0; i < 10; i++ {
		a.Send(b.ID(), BlockRequest, ping(uint64(i)))
	}
	waitUntil(t, func() bool {
		record, _ := b.Record(a.ID())
		return record.State == Banned
	})
	ensure.True(t, len(events) > 0)
	waitUntil(t, func() bool { return len(a.Peers()) == 0 })

	_, err := a.Connect(context.Background(), b.ListenAddr())
	ensure.NotNil(t, err)
}

func TestRouterBanExpires(t *testing.T) {
	network := NewPipeNetwork()
	cfg := testConfig()
	cfg.BanDuration = 50 * time.Millisecond
	b := newTestRouter(t, network, testGenesis, cfg)
	defer b.Stop()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()

	connect(t, a, b)
	b.Ban(a.ID())
	waitUntil(t, func() bool { return len(a.Peers()) == 0 })

	time.Sleep(60 * time.Millisecond)
	connect(t, a, b)
	record, _ := b.Record(a.ID())
	ensure.DeepEqual(t, record.State, Active)
}

func TestRouterPenalizeAndRestore(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	connect(t, a, b)

	record, _ := a.Record(b.ID())
	ensure.DeepEqual(t, record.State, Active)
	a.Penalize(b.ID())
	record, _ = a.Record(b.ID())
	ensure.DeepEqual(t, record.State, Penalized)
	ensure.True(t, record.Connected())
	a.Restore(b.ID())
	record, _ = a.Record(b.ID())
	ensure.DeepEqual(t, record.State, Active)
}

func TestRouterHeightAnnouncement(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	connect(t, a, b)

	ch := subscribe(b, HeightAnnouncement)
	ensure.Nil(t, a.Broadcast(HeightAnnouncement, ProtoBody(&corepb.HeightAnnouncement{Height: 42}), nil))
	recv(t, ch)
	record, _ := b.connected(a.ID())
	ensure.DeepEqual(t, record.Height, uint64(42))
}

func TestRouterDisconnect(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	connect(t, a, b)

	gone := make(chan peer.ID, 1)
	b.bus.Subscribe(eventbus.TopicConnEvent, func(pid peer.ID, event eventbus.BusEvent) {
		if event == eventbus.PeerDisconnEvent {
			gone <- pid
		}
	})
	a.Disconnect(b.ID())
	ensure.DeepEqual(t, len(a.Peers()), 0)
	select {
	case pid := <-gone:
		ensure.DeepEqual(t, pid, a.ID())
	case <-time.After(3 * time.Second):
		t.Fatal("no disconnect event")
	}
	record, _ := b.Record(a.ID())
	ensure.DeepEqual(t, record.State, Unverified)
}

func TestRouterMaintainDialsSeeds(t *testing.T) {
	network := NewPipeNetwork()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()

	cfg := testConfig()
	cfg.Seeds = []string{b.ListenAddr()}
	cfg.MaintainPeriod = 20 * time.Millisecond
	a := newTestRouter(t, network, testGenesis, cfg)
	defer a.Stop()
	waitUntil(t, func() bool {
		_, ok := a.connected(b.ID())
		return ok
	})
}

// rawPeer handshakes on a bare stream so tests can write arbitrary frames.
func rawPeer(t *testing.T, network *PipeNetwork, target *Router) Stream {
	tr, err := network.NewTransport()
	ensure.Nil(t, err)
	s, _, err := tr.Dial(context.Background(), target.ListenAddr())
	ensure.Nil(t, err)

	body, err := proto.Marshal(&p2ppb.Handshake{
		Magic:   Mainnet,
		Genesis: testGenesis,
		PeerId:  peer.IDB58Encode(tr.ID()),
	})
	ensure.Nil(t, err)
	data, err := newMessage(Mainnet, Handshake, body).Marshal()
	ensure.Nil(t, err)
	written := make(chan error, 1)
	go func() {
		_, err := s.Write(data)
		written <- err
	}()
	msg, err := readMessageData(s)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, msg.code, Handshake)
	ensure.Nil(t, <-written)
	waitUntil(t, func() bool { return len(target.Peers()) == 1 })
	return s
}

func writeFrame(t *testing.T, s Stream, msg *message) {
	data, err := msg.Marshal()
	ensure.Nil(t, err)
	_, err = s.Write(data)
	ensure.Nil(t, err)
}

func TestRouterWrongMagicDisconnects(t *testing.T) {
	network := NewPipeNetwork()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()

	s := rawPeer(t, network, b)
	defer s.Close()
	writeFrame(t, s, newMessage(Testnet, TransactionMsg, []byte("tx")))
	waitUntil(t, func() bool { return len(b.Peers()) == 0 })
}

func TestRouterBadChecksumDropped(t *testing.T) {
	network := NewPipeNetwork()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	ch := subscribe(b, TransactionMsg)

	s := rawPeer(t, network, b)
	defer s.Close()
	bad := newMessage(Mainnet, TransactionMsg, []byte("bad"))
	bad.dataChecksum++
	writeFrame(t, s, bad)
	writeFrame(t, s, newMessage(Mainnet, TransactionMsg, []byte("good")))

	ensure.DeepEqual(t, recv(t, ch).Body(), []byte("good"))
	ensure.DeepEqual(t, len(b.Peers()), 1)
}

func TestRouterIdlePeerDisconnected(t *testing.T) {
	network := NewPipeNetwork()
	cfg := testConfig()
	cfg.PingInterval = 10 * time.Millisecond
	cfg.IdleTimeout = 40 * time.Millisecond
	b := newTestRouter(t, network, testGenesis, cfg)
	defer b.Stop()

	s := rawPeer(t, network, b)
	defer s.Close()
	waitUntil(t, func() bool { return len(b.Peers()) == 0 })
}

func TestRouterKeepaliveHoldsConnection(t *testing.T) {
	network := NewPipeNetwork()
	cfg := func() *Config {
		c := testConfig()
		c.PingInterval = 10 * time.Millisecond
		c.IdleTimeout = 40 * time.Millisecond
		return c
	}
	a := newTestRouter(t, network, testGenesis, cfg())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, cfg())
	defer b.Stop()
	connect(t, a, b)

	time.Sleep(200 * time.Millisecond)
	ensure.DeepEqual(t, len(a.Peers()), 1)
	ensure.DeepEqual(t, len(b.Peers()), 1)
}

func TestScoreManager(t *testing.T) {
	network := NewPipeNetwork()
	a := newTestRouter(t, network, testGenesis, testConfig())
	defer a.Stop()
	b := newTestRouter(t, network, testGenesis, testConfig())
	defer b.Stop()
	sm := NewScoreManager(b.Proc(), b.bus, b)
	connect(t, a, b)

	b.bus.Publish(eventbus.TopicConnEvent, a.ID(), eventbus.BadBlockEvent)
	record, _ := b.Record(a.ID())
	ensure.DeepEqual(t, record.State, Penalized)
	ensure.True(t, sm.Score(a.ID()) < 60)

	b.bus.Publish(eventbus.TopicConnEvent, a.ID(), eventbus.BadBlockEvent)
	record, _ = b.Record(a.ID())
	ensure.DeepEqual(t, record.State, Banned)
	waitUntil(t, func() bool { return len(a.Peers()) == 0 })
}

func TestDummyHub(t *testing.T) {
	hub := NewDummyHub()
	defer hub.Close()
	a, b, c := hub.Join(), hub.Join(), hub.Join()
	chB, chC := subscribe(b, VoteMsg), subscribe(c, VoteMsg)

	ensure.Nil(t, a.Broadcast(VoteMsg, ping(1), Exclude(c.ID())))
	ensure.DeepEqual(t, recv(t, chB).From(), a.ID())
	ensure.True(t, silent(chC, 20*time.Millisecond))

	ensure.Nil(t, a.Send(c.ID(), VoteMsg, ping(2)))
	ensure.DeepEqual(t, recv(t, chC).Body(), mustMarshal(t, ping(2)))
	ensure.DeepEqual(t, len(a.Sent()), 2)

	a.Cut(c.ID())
	ensure.DeepEqual(t, a.Send(c.ID(), VoteMsg, ping(3)), ErrPeerGone)
	ensure.DeepEqual(t, len(a.Peers()), 1)

	ann := ProtoBody(&corepb.HeightAnnouncement{Height: 9})
	ensure.Nil(t, b.Broadcast(HeightAnnouncement, ann, nil))
	waitUntil(t, func() bool {
		for _, r := range a.Peers() {
			if r.ID == b.ID() && r.Height == 9 {
				return true
			}
		}
		return false
	})
}
