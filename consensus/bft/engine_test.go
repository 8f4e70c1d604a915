// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BOXFoundation/ledgerd/consensus"
	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/chain/chaintest"
	"github.com/BOXFoundation/ledgerd/core/testutil"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/BOXFoundation/ledgerd/storage/memdb"
	"github.com/facebookgo/ensure"
	"github.com/jbenet/goprocess"
	peer "github.com/libp2p/go-libp2p-peer"
)

type testNode struct {
	env    *chaintest.Env
	chain  *chain.BlockChain
	bus    eventbus.Bus
	pool   *txpool.TransactionPool
	net    *p2p.DummyNet
	engine *Engine
}

func testConfig() *Config {
	return &Config{
		TimeoutPropose: 400 * time.Millisecond,
		TimeoutDelta:   100 * time.Millisecond,
		BlockInterval:  10 * time.Millisecond,
	}
}

func newTestNode(t *testing.T, env *chaintest.Env, net *p2p.DummyNet, signer core.Account, cfg *Config) *testNode {
	bus := eventbus.New()
	return newTestNodeOn(t, env, env.Open(t, bus), bus, net, signer, cfg)
}

func newTestNodeOn(t *testing.T, env *chaintest.Env, c *chain.BlockChain, bus eventbus.Bus,
	net *p2p.DummyNet, signer core.Account, cfg *Config) *testNode {

	pool := txpool.NewTransactionPool(goprocess.Background(), &txpool.Config{}, net, c, env.Validator, bus)
	e, err := NewEngine(goprocess.Background(), cfg, c, pool, env.Validator, net, bus, signer)
	ensure.Nil(t, err)
	return &testNode{env: env, chain: c, bus: bus, pool: pool, net: net, engine: e}
}

func (n *testNode) run(t *testing.T) {
	ensure.Nil(t, n.pool.Run())
	ensure.Nil(t, n.engine.Run())
}

func (n *testNode) stop() {
	n.engine.Stop()
	n.pool.Stop()
}

func (n *testNode) height() uint64 {
	height, _ := n.chain.Head()
	return height
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// keyOf returns the validator key scheduled to propose round.
func keyOf(env *chaintest.Env, vs *types.ValidatorSet, height uint64, round uint32) *testutil.Key {
	addr := consensus.RoundRobin{}.Proposer(vs, height, round)
	for _, k := range env.Validators {
		if k.Addr == addr {
			return k
		}
	}
	panic("proposer is not a validator")
}

// proposal builds an empty block for the next height of c.
func proposal(t *testing.T, env *chaintest.Env, c *chain.BlockChain, round uint32, timestamp int64) *types.Block {
	head := c.HeadBlock()
	vs := c.ValidatorSet()
	block, err := env.Validator.BuildBlock(context.Background(), head, c.StateView(), nil,
		keyOf(env, vs, head.Height()+1, round), round, vs, timestamp)
	ensure.Nil(t, err)
	return block
}

func mustMarshal(t *testing.T, msg interface{ Marshal() ([]byte, error) }) []byte {
	data, err := msg.Marshal()
	ensure.Nil(t, err)
	return data
}

// votesOf returns the votes signed by voter that n sent.
func votesOf(t *testing.T, n *p2p.DummyNet, voter types.Address) []*types.Vote {
	var votes []*types.Vote
	for _, msg := range n.Sent() {
		if msg.Code() != p2p.VoteMsg {
			continue
		}
		v := new(types.Vote)
		ensure.Nil(t, v.Unmarshal(msg.Body()))
		if v.Voter == voter {
			votes = append(votes, v)
		}
	}
	return votes
}

func proposalsOf(t *testing.T, n *p2p.DummyNet) []*types.Block {
	var blocks []*types.Block
	for _, msg := range n.Sent() {
		if msg.Code() != p2p.ProposalMsg {
			continue
		}
		b := new(types.Block)
		ensure.Nil(t, b.Unmarshal(msg.Body()))
		blocks = append(blocks, b)
	}
	return blocks
}

func TestNetworkCommits(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 2)
	hub := p2p.NewDummyHub()
	defer hub.Close()

	nodes := make([]*testNode, 0, len(env.Validators))
	for _, k := range env.Validators {
		nodes = append(nodes, newTestNode(t, env, hub.Join(), k, testConfig()))
	}
	for _, n := range nodes {
		n.run(t)
		defer n.stop()
	}

	alice, bob := env.Funded[0], env.Funded[1]
	tx := alice.Transfer(bob.Addr, 100, 1, 1)
	ensure.Nil(t, nodes[0].pool.Submit(context.Background(), tx))

	waitUntil(t, 10*time.Second, func() bool {
		for _, n := range nodes {
			if n.height() < 3 || !n.chain.IsCommitted(tx.Hash()) {
				return false
			}
		}
		return true
	})
	for h := uint64(1); h <= 3; h++ {
		expect, err := nodes[0].chain.GetBlockByHeight(h)
		ensure.Nil(t, err)
		ensure.NotNil(t, expect.Certificate)
		for _, n := range nodes[1:] {
			block, err := n.chain.GetBlockByHeight(h)
			ensure.Nil(t, err)
			ensure.DeepEqual(t, block.Hash(), expect.Hash())
		}
	}
	waitUntil(t, 3*time.Second, func() bool { return nodes[1].pool.Size() == 0 })
}

func TestQuorumInAnyOrderCommitsOnlyCertifiedBlock(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 6; i++ {
		hub := p2p.NewDummyHub()
		local, remote := hub.Join(), hub.Join()
		node := newTestNode(t, env, local, nil, testConfig())

		head := node.chain.HeadBlock()
		certified := proposal(t, env, node.chain, 0, head.Header.TimeStamp+1)
		rival := proposal(t, env, node.chain, 1, head.Header.TimeStamp+1)

		type delivery struct {
			code uint32
			body []byte
		}
		msgs := []delivery{
			{p2p.ProposalMsg, mustMarshal(t, certified)},
			{p2p.ProposalMsg, mustMarshal(t, rival)},
			{p2p.VoteMsg, mustMarshal(t, env.Validators[3].Vote(1, 1, rival.Hash()))},
			{p2p.VoteMsg, mustMarshal(t, env.Validators[0].Vote(1, 1, rival.Hash()))},
		}
		for _, k := range env.Validators[:3] {
			msgs = append(msgs, delivery{p2p.VoteMsg, mustMarshal(t, k.Vote(1, 0, certified.Hash()))})
		}
		rnd.Shuffle(len(msgs), func(a, b int) { msgs[a], msgs[b] = msgs[b], msgs[a] })

		node.run(t)
		for _, m := range msgs {
			local.Deliver(m.code, m.body, remote.ID())
		}
		waitUntil(t, 3*time.Second, func() bool { return node.height() == 1 })
		_, hash := node.chain.Head()
		ensure.DeepEqual(t, hash, certified.Hash())
		time.Sleep(20 * time.Millisecond)
		ensure.DeepEqual(t, node.height(), uint64(1))

		node.stop()
		hub.Close()
	}
}

func TestSecondProposalIgnored(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local, remote := hub.Join(), hub.Join()
	cfg := testConfig()
	cfg.TimeoutPropose = 10 * time.Second
	self := env.Validators[0]
	node := newTestNode(t, env, local, self, cfg)

	equivocations := make(chan peer.ID, 4)
	node.bus.Subscribe(eventbus.TopicConnEvent, func(pid peer.ID, event eventbus.BusEvent) {
		if event == eventbus.EquivocationEvent {
			equivocations <- pid
		}
	})
	node.run(t)
	defer node.stop()

	head := node.chain.HeadBlock()
	first := proposal(t, env, node.chain, 0, head.Header.TimeStamp+1)
	second := proposal(t, env, node.chain, 0, head.Header.TimeStamp+2)
	ensure.True(t, first.Hash() != second.Hash())

	local.Deliver(p2p.ProposalMsg, mustMarshal(t, first), remote.ID())
	waitUntil(t, 3*time.Second, func() bool { return len(votesOf(t, local, self.Addr)) == 1 })

	local.Deliver(p2p.ProposalMsg, mustMarshal(t, second), remote.ID())
	select {
	case pid := <-equivocations:
		ensure.DeepEqual(t, pid, remote.ID())
	case <-time.After(3 * time.Second):
		t.Fatal("second proposal not reported")
	}
	votes := votesOf(t, local, self.Addr)
	ensure.DeepEqual(t, len(votes), 1)
	ensure.DeepEqual(t, votes[0].BlockHash, first.Hash())

	for _, k := range env.Validators[1:3] {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, k.Vote(1, 0, first.Hash())), remote.ID())
	}
	waitUntil(t, 3*time.Second, func() bool { return node.height() == 1 })
	_, hash := node.chain.Head()
	ensure.DeepEqual(t, hash, first.Hash())
}

func TestRoundTimeoutMovesToNextProposer(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local := hub.Join()

	bus := eventbus.New()
	c := env.Open(t, bus)
	self := keyOf(env, c.ValidatorSet(), 1, 1)
	cfg := testConfig()
	cfg.TimeoutPropose = 100 * time.Millisecond
	node := newTestNodeOn(t, env, c, bus, local, self, cfg)
	node.run(t)
	defer node.stop()

	waitUntil(t, 3*time.Second, func() bool { return len(proposalsOf(t, local)) > 0 })
	block := proposalsOf(t, local)[0]
	ensure.DeepEqual(t, block.Height(), uint64(1))
	ensure.DeepEqual(t, block.Header.Round, uint32(1))
	ensure.DeepEqual(t, block.Header.Proposer, self.Addr)
	ensure.True(t, node.engine.Status().Round >= 1)

	// the proposer votes for its own block
	waitUntil(t, 3*time.Second, func() bool { return len(votesOf(t, local, self.Addr)) == 1 })
	ensure.DeepEqual(t, votesOf(t, local, self.Addr)[0].BlockHash, block.Hash())
}

func TestStopAndRecoverMint(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local := hub.Join()

	bus := eventbus.New()
	c := env.Open(t, bus)
	node := newTestNodeOn(t, env, c, bus, local, keyOf(env, c.ValidatorSet(), 1, 0), testConfig())
	node.engine.StopMint()
	node.run(t)
	defer node.stop()

	time.Sleep(100 * time.Millisecond)
	ensure.DeepEqual(t, len(proposalsOf(t, local)), 0)
	ensure.DeepEqual(t, node.engine.Status().State, Idle)

	node.engine.RecoverMint()
	waitUntil(t, 3*time.Second, func() bool { return len(proposalsOf(t, local)) > 0 })
	ensure.DeepEqual(t, proposalsOf(t, local)[0].Header.Round, uint32(0))
}

func TestFollowsCommitsOfOthers(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	node := newTestNode(t, env, p2p.NewDummyNet(), nil, testConfig())
	node.run(t)
	defer node.stop()

	waitUntil(t, 3*time.Second, func() bool { return node.engine.Status().Height == 1 })
	env.Extend(t, node.chain, 2, nil)
	waitUntil(t, 3*time.Second, func() bool { return node.engine.Status().Height == 3 })
}

func TestEquivocatingVoteNotCounted(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local, remote := hub.Join(), hub.Join()
	node := newTestNode(t, env, local, nil, testConfig())
	node.run(t)
	defer node.stop()

	head := node.chain.HeadBlock()
	block := proposal(t, env, node.chain, 0, head.Header.TimeStamp+1)
	other := crypto.DoubleHashH([]byte("other"))
	deliver := func(v *types.Vote) {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, v), remote.ID())
	}

	local.Deliver(p2p.ProposalMsg, mustMarshal(t, block), remote.ID())
	deliver(env.Validators[0].Vote(1, 0, other))
	deliver(env.Validators[0].Vote(1, 0, block.Hash()))
	deliver(env.Validators[1].Vote(1, 0, block.Hash()))
	deliver(env.Validators[2].Vote(1, 0, block.Hash()))

	waitUntil(t, 3*time.Second, func() bool { return len(node.engine.Evidence()) == 1 })
	ev := node.engine.Evidence()[0]
	ensure.DeepEqual(t, ev.First.BlockHash, other)
	ensure.DeepEqual(t, ev.Second.BlockHash, block.Hash())
	time.Sleep(20 * time.Millisecond)
	ensure.DeepEqual(t, node.height(), uint64(0))

	deliver(env.Validators[3].Vote(1, 0, block.Hash()))
	waitUntil(t, 3*time.Second, func() bool { return node.height() == 1 })
}

func TestConflictWithCommittedBlockFlagged(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local, remote := hub.Join(), hub.Join()
	node := newTestNode(t, env, local, nil, testConfig())

	conflicts := make(chan *ConflictEvidence, 4)
	node.bus.Subscribe(eventbus.TopicConsensusConflict, func(ev *ConflictEvidence) {
		conflicts <- ev
	})
	node.run(t)
	defer node.stop()

	head := node.chain.HeadBlock()
	block := proposal(t, env, node.chain, 0, head.Header.TimeStamp+1)
	local.Deliver(p2p.ProposalMsg, mustMarshal(t, block), remote.ID())
	for _, k := range env.Validators[:3] {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, k.Vote(1, 0, block.Hash())), remote.ID())
	}
	waitUntil(t, 3*time.Second, func() bool { return node.engine.Status().Height == 2 })

	rival := crypto.DoubleHashH([]byte("rival"))
	for _, k := range env.Validators[1:] {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, k.Vote(1, 1, rival)), remote.ID())
	}
	select {
	case ev := <-conflicts:
		ensure.True(t, ev.Committed)
		ensure.DeepEqual(t, ev.Height, uint64(1))
		ensure.DeepEqual(t, ev.Chosen.BlockHash, block.Hash())
		ensure.DeepEqual(t, ev.Rejected.BlockHash, rival)
	case <-time.After(3 * time.Second):
		t.Fatal("conflict not published")
	}
	_, hash := node.chain.Head()
	ensure.DeepEqual(t, hash, block.Hash())
}

type flakyDB struct {
	storage.Storage
	fail int32
}

func (db *flakyDB) Table(name string) (storage.Table, error) {
	t, err := db.Storage.Table(name)
	if err != nil {
		return nil, err
	}
	return &flakyTable{Table: t, db: db}, nil
}

type flakyTable struct {
	storage.Table
	db *flakyDB
}

func (t *flakyTable) NewBatch() storage.Batch {
	return &flakyBatch{Batch: t.Table.NewBatch(), db: t.db}
}

type flakyBatch struct {
	storage.Batch
	db *flakyDB
}

func (b *flakyBatch) Write() error {
	if atomic.LoadInt32(&b.db.fail) == 1 {
		return errors.New("disk failure")
	}
	return b.Batch.Write()
}

func TestStorageFailureHalts(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	mem, err := memdb.NewMemoryDB("", nil)
	ensure.Nil(t, err)
	db := &flakyDB{Storage: mem}
	bus := eventbus.New()
	c, err := chain.NewBlockChain(goprocess.Background(), db, env.Validator, bus, &chain.Config{}, env.Genesis)
	ensure.Nil(t, err)
	atomic.StoreInt32(&db.fail, 1)

	hub := p2p.NewDummyHub()
	defer hub.Close()
	local, remote := hub.Join(), hub.Join()
	cfg := testConfig()
	cfg.TimeoutPropose = 10 * time.Second
	node := newTestNodeOn(t, env, c, bus, local, env.Validators[0], cfg)

	fatal := make(chan error, 1)
	bus.Subscribe(eventbus.TopicNodeFatal, func(err error) {
		fatal <- err
	})
	node.run(t)
	defer node.stop()

	head := c.HeadBlock()
	block := proposal(t, env, c, 0, head.Header.TimeStamp+1)
	local.Deliver(p2p.ProposalMsg, mustMarshal(t, block), remote.ID())
	for _, k := range env.Validators[1:3] {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, k.Vote(1, 0, block.Hash())), remote.ID())
	}
	select {
	case err := <-fatal:
		ensure.True(t, core.IsStorage(err))
	case <-time.After(3 * time.Second):
		t.Fatal("storage failure not published")
	}
	waitUntil(t, time.Second, func() bool { return node.engine.Status().Halted })
	ensure.DeepEqual(t, node.height(), uint64(0))
}

func TestProposesPastRoundLimit(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local := hub.Join()

	cfg := testConfig()
	cfg.TimeoutPropose = 20 * time.Millisecond
	cfg.TimeoutDelta = time.Nanosecond
	node := newTestNode(t, env, local, env.Validators[0], cfg)
	node.run(t)
	defer node.stop()

	waitUntil(t, 20*time.Second, func() bool {
		for _, b := range proposalsOf(t, local) {
			if b.Header.Round >= maxRounds {
				return true
			}
		}
		return false
	})
	ensure.DeepEqual(t, node.height(), uint64(0))
	ensure.True(t, node.engine.Status().Round >= maxRounds)
}

func TestRoundEviction(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	e := &Engine{
		vs:     testutil.ValidatorSet(0, env.Validators),
		height: 1,
		rounds: make(map[uint32]*roundState),
	}
	certified := crypto.DoubleHashH([]byte("certified"))
	rs, ok := e.lookupRound(0, true)
	ensure.True(t, ok)
	for _, k := range env.Validators[:3] {
		rs.votes.add(k.Vote(1, 0, certified), e.vs)
	}

	last := uint32(3 * maxRounds)
	for r := uint32(1); r <= last; r++ {
		e.round = r
		rs, ok := e.lookupRound(r, true)
		ensure.True(t, ok)
		ensure.NotNil(t, rs)
		ensure.True(t, len(e.rounds) <= maxRounds)
	}
	_, ok = e.lookupRound(0, false)
	ensure.True(t, ok)
	_, ok = e.lookupRound(1, false)
	ensure.False(t, ok)
	_, ok = e.lookupRound(last-1, false)
	ensure.True(t, ok)

	// a far away round does not push out the ones around the current round
	_, ok = e.lookupRound(last+1000, true)
	ensure.False(t, ok)
	_, ok = e.lookupRound(last+1, true)
	ensure.True(t, ok)
}

func TestHaltsOnFatalOfOtherComponent(t *testing.T) {
	env := chaintest.NewEnv(t, 4, 0)
	hub := p2p.NewDummyHub()
	defer hub.Close()
	local, remote := hub.Join(), hub.Join()
	node := newTestNode(t, env, local, nil, testConfig())
	node.run(t)
	defer node.stop()

	node.bus.Publish(eventbus.TopicNodeFatal, error(core.NewStorageError(errors.New("disk failure"), "sync commit")))
	ensure.True(t, node.engine.Status().Halted)

	head := node.chain.HeadBlock()
	block := proposal(t, env, node.chain, 0, head.Header.TimeStamp+1)
	local.Deliver(p2p.ProposalMsg, mustMarshal(t, block), remote.ID())
	for _, k := range env.Validators[:3] {
		local.Deliver(p2p.VoteMsg, mustMarshal(t, k.Vote(1, 0, block.Hash())), remote.ID())
	}
	time.Sleep(100 * time.Millisecond)
	ensure.DeepEqual(t, node.height(), uint64(0))
	ensure.True(t, node.engine.Status().Halted)
}
