// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bft

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BOXFoundation/ledgerd/consensus"
	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/core/validator"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/jbenet/goprocess"
	goprocessctx "github.com/jbenet/goprocess/context"
	peer "github.com/libp2p/go-libp2p-peer"
)

var logger = log.NewLogger("bft") // logger

// Define const
const (
	msgChBufferSize = 1024
	maxRounds       = 64
	maxFutureMsgs   = 512
)

// State is the phase of the current round.
type State int32

// Round phases. A height starts Idle and goes back to Idle after commit.
const (
	Idle State = iota
	Proposing
	Voting
	Committing
)

var stateNames = [...]string{"Idle", "Proposing", "Voting", "Committing"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Status is a snapshot of the engine position.
type Status struct {
	State  State
	Height uint64
	Round  uint32
	Halted bool
}

type buildResult struct {
	height uint64
	round  uint32
	block  *types.Block
	err    error
}

type validationResult struct {
	height uint64
	round  uint32
	hash   crypto.HashType
	err    error
}

// Engine runs rounds of propose, vote and commit over the validator set of
// the chain head. All round state is owned by the loop goroutine; proposal
// building and validation run off the loop and come back tagged with their
// height and round.
type Engine struct {
	cfg       Config
	chain     *chain.BlockChain
	pool      *txpool.TransactionPool
	validator *validator.Validator
	net       p2p.Net
	bus       eventbus.Bus
	signer    core.Account
	schedule  consensus.ProposerSchedule
	proc      goprocess.Process
	ctx       context.Context

	proposalCh       chan p2p.Message
	voteCh           chan p2p.Message
	proposalNotifiee *p2p.Notifiee
	voteNotifiee     *p2p.Notifiee
	builtCh          chan *buildResult
	resultCh         chan *validationResult
	headCh           chan struct{}
	resumeCh         chan struct{}

	disableMint int32
	halted      int32

	mtx      sync.Mutex
	status   Status
	evidence []*Equivocation

	// loop state
	head   *types.Block
	vs     *types.ValidatorSet
	height uint64
	round  uint32
	state  State
	rounds map[uint32]*roundState
	rivals map[crypto.HashType]bool
	prev   *committedHeight
	future []p2p.Message
	timer  *time.Timer
}

var _ consensus.Consensus = (*Engine)(nil)

// NewEngine creates an engine. A nil signer makes the node an observer that
// follows certificates without proposing or voting.
func NewEngine(parent goprocess.Process, cfg *Config, c *chain.BlockChain, pool *txpool.TransactionPool,
	v *validator.Validator, net p2p.Net, bus eventbus.Bus, signer core.Account) (*Engine, error) {

	conf := *cfg
	conf.Fill()
	schedule, err := consensus.NewSchedule(conf.Schedule)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        conf,
		chain:      c,
		pool:       pool,
		validator:  v,
		net:        net,
		bus:        bus,
		signer:     signer,
		schedule:   schedule,
		proc:       goprocess.WithParent(parent),
		proposalCh: make(chan p2p.Message, msgChBufferSize),
		voteCh:     make(chan p2p.Message, msgChBufferSize),
		builtCh:    make(chan *buildResult, 1),
		resultCh:   make(chan *validationResult, 1),
		headCh:     make(chan struct{}, 1),
		resumeCh:   make(chan struct{}, 1),
	}
	e.proposalNotifiee = p2p.NewNotifiee(p2p.ProposalMsg, e.proposalCh)
	e.voteNotifiee = p2p.NewNotifiee(p2p.VoteMsg, e.voteCh)
	return e, nil
}

// Run subscribes to proposals, votes and commits and starts the loop.
func (e *Engine) Run() error {
	if e.signer == nil {
		logger.Info("No validator key, following certificates only")
	}
	if err := e.bus.Subscribe(eventbus.TopicChainUpdate, e.onChainUpdate); err != nil {
		return err
	}
	if err := e.bus.Subscribe(eventbus.TopicNodeFatal, e.onNodeFatal); err != nil {
		return err
	}
	e.net.Subscribe(e.proposalNotifiee)
	e.net.Subscribe(e.voteNotifiee)
	e.proc.Go(e.loop)
	return nil
}

// Proc returns the goprocess running the service
func (e *Engine) Proc() goprocess.Process {
	return e.proc
}

// Stop bft engine
func (e *Engine) Stop() {
	e.proc.Close()
}

// StopMint suspends proposing and voting.
func (e *Engine) StopMint() {
	if atomic.SwapInt32(&e.disableMint, 1) == 0 {
		logger.Info("Stop minting")
	}
}

// RecoverMint resumes proposing and voting from the current head.
func (e *Engine) RecoverMint() {
	if atomic.SwapInt32(&e.disableMint, 0) == 1 {
		logger.Info("Recover minting")
		select {
		case e.resumeCh <- struct{}{}:
		default:
		}
	}
}

// Status returns the current position of the engine.
func (e *Engine) Status() Status {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.status
}

// Evidence returns the equivocations seen so far.
func (e *Engine) Evidence() []*Equivocation {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return append([]*Equivocation(nil), e.evidence...)
}

// onChainUpdate runs inside the commit gate; it only signals the loop.
func (e *Engine) onChainUpdate(msg *chain.UpdateMsg) {
	select {
	case e.headCh <- struct{}{}:
	default:
	}
}

// onNodeFatal halts the engine when another component lost the store.
func (e *Engine) onNodeFatal(err error) {
	if !atomic.CompareAndSwapInt32(&e.halted, 0, 1) {
		return
	}
	logger.Errorf("Consensus halted by node failure: %v", err)
	e.mtx.Lock()
	e.status.Halted = true
	e.mtx.Unlock()
}

func (e *Engine) loop(p goprocess.Process) {
	logger.Info("Start bft loop")
	e.ctx = goprocessctx.OnClosingContext(p)
	e.advance(e.chain.HeadBlock())
	for {
		select {
		case msg := <-e.proposalCh:
			if e.active() {
				e.handleProposal(msg)
			}
		case msg := <-e.voteCh:
			if e.active() {
				e.handleVote(msg)
			}
		case res := <-e.builtCh:
			if e.active() {
				e.handleBuilt(res)
			}
		case res := <-e.resultCh:
			if e.active() {
				e.handleValidation(res)
			}
		case <-e.headCh:
			if e.active() {
				e.followHead()
			}
		case <-e.resumeCh:
			if e.active() {
				e.resume()
			}
		case <-e.timeoutC():
			if e.active() {
				e.handleTimeout()
			}
		case <-p.Closing():
			e.stopTimer()
			e.net.UnSubscribe(e.proposalNotifiee)
			e.net.UnSubscribe(e.voteNotifiee)
			e.bus.Unsubscribe(eventbus.TopicChainUpdate, e.onChainUpdate)
			e.bus.Unsubscribe(eventbus.TopicNodeFatal, e.onNodeFatal)
			logger.Info("Quit bft loop.")
			return
		}
	}
}

func (e *Engine) active() bool {
	return atomic.LoadInt32(&e.halted) == 0
}

// minting reports whether this node proposes and votes in the current
// height.
func (e *Engine) minting() bool {
	return e.signer != nil && atomic.LoadInt32(&e.disableMint) == 0 &&
		e.active() && e.vs.Contains(e.signer.Address())
}

func (e *Engine) isProposer(round uint32) bool {
	return e.signer != nil && e.schedule.Proposer(e.vs, e.height, round) == e.signer.Address()
}

func (e *Engine) setStatus() {
	e.mtx.Lock()
	e.status = Status{
		State:  e.state,
		Height: e.height,
		Round:  e.round,
		Halted: !e.active(),
	}
	e.mtx.Unlock()
}

func (e *Engine) timeoutC() <-chan time.Time {
	if e.timer == nil {
		return nil
	}
	return e.timer.C
}

func (e *Engine) resetTimer(d time.Duration) {
	e.stopTimer()
	e.timer = time.NewTimer(d)
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// advance moves to round 0 of the height above head. The votes of the
// height just left are kept when head is the block they were for.
func (e *Engine) advance(head *types.Block) {
	e.prev = nil
	if e.rounds != nil && head.Height() == e.height {
		e.prev = &committedHeight{
			height: e.height,
			hash:   head.Hash(),
			cert:   head.Certificate,
			rounds: make(map[uint32]*voteSet, len(e.rounds)),
		}
		for r, rs := range e.rounds {
			e.prev.rounds[r] = rs.votes
		}
	}
	e.head = head
	e.vs = e.chain.ValidatorSet()
	e.height = head.Height() + 1
	e.rounds = make(map[uint32]*roundState)
	e.rivals = make(map[crypto.HashType]bool)
	logger.Debugf("Enter height %d on head %v", e.height, head.Hash())

	if e.prev != nil {
		for r := range e.prev.rounds {
			e.checkCommitted(r)
		}
	}

	future := e.future
	e.future = nil
	e.enterRound(0)
	for _, msg := range future {
		e.dispatch(msg)
	}
}

// followHead catches up with commits made by others.
func (e *Engine) followHead() {
	if head := e.chain.HeadBlock(); head.Height() >= e.height {
		e.advance(head)
	}
}

func (e *Engine) resume() {
	if head := e.chain.HeadBlock(); head.Height() >= e.height {
		e.advance(head)
		return
	}
	e.enterRound(e.round)
}

func (e *Engine) enterRound(round uint32) {
	e.round = round
	e.state = Idle
	defer e.setStatus()
	if !e.minting() {
		e.stopTimer()
		return
	}
	metricsRoundGauge.Update(int64(round))
	e.resetTimer(e.cfg.roundTimeout(round))

	rs, _ := e.lookupRound(round, true)
	if rs == nil {
		return
	}
	if rs.proposal == nil && e.isProposer(round) {
		e.state = Proposing
		e.propose(round)
		return
	}
	e.state = Voting
	if rs.proposal != nil {
		e.validate(rs, round)
	}
}

// lookupRound returns the state of round. With create set a missing round
// is added; once maxRounds are tracked a round farther from the current
// one makes room, so the current round always gets a slot.
func (e *Engine) lookupRound(round uint32, create bool) (*roundState, bool) {
	if rs, ok := e.rounds[round]; ok {
		return rs, true
	}
	if !create {
		return nil, false
	}
	if len(e.rounds) >= maxRounds && !e.evictRound(round) {
		return nil, false
	}
	rs := newRoundState(e.height, round)
	e.rounds[round] = rs
	return rs, true
}

// evictRound drops the round farthest from the current one if it is farther
// than incoming. The current round and rounds holding a quorum stay.
func (e *Engine) evictRound(incoming uint32) bool {
	victim, farthest := uint32(0), roundDistance(incoming, e.round)
	found := false
	for r, rs := range e.rounds {
		if r == e.round {
			continue
		}
		if _, ok := rs.votes.quorum(e.vs); ok {
			continue
		}
		if d := roundDistance(r, e.round); d > farthest || (d == farthest && found && r < victim) {
			victim, farthest, found = r, d, true
		}
	}
	if !found {
		return false
	}
	delete(e.rounds, victim)
	metricsRoundEvictCounter.Inc(1)
	return true
}

func roundDistance(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// propose builds a block off the loop. Round 0 waits for the block
// interval after the parent.
func (e *Engine) propose(round uint32) {
	height, head, vs, signer := e.height, e.head, e.vs, e.signer
	var delay time.Duration
	if round == 0 {
		delay = e.cfg.BlockInterval
	}
	e.proc.Go(func(p goprocess.Process) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-p.Closing():
				return
			}
		}
		res := &buildResult{height: height, round: round}
		if e.chain.HeadBlock().Hash() != head.Hash() {
			res.err = ErrStaleHead
		} else {
			candidates := e.pool.TakeCandidates(e.cfg.MaxBlockTxs, e.cfg.MaxBlockBytes)
			res.block, res.err = e.validator.BuildBlock(e.ctx, head, e.chain.StateView(),
				candidates, signer, round, vs, time.Now().Unix())
		}
		select {
		case e.builtCh <- res:
		case <-p.Closing():
		}
	})
}

func (e *Engine) handleBuilt(res *buildResult) {
	if res.height != e.height || res.round != e.round {
		metricsStaleResultCounter.Inc(1)
		return
	}
	e.state = Voting
	defer e.setStatus()
	if res.err != nil {
		logger.Warnf("Failed to build block at height %d round %d: %v", res.height, res.round, res.err)
		return
	}
	rs, _ := e.lookupRound(res.round, true)
	if rs == nil || rs.proposal != nil {
		return
	}
	rs.setProposal(res.block, e.net.ID())
	metricsProposeCounter.Inc(1)
	logger.WithFields(log.Fields{
		"height": res.height,
		"round":  res.round,
		"hash":   rs.hash.String(),
		"txs":    len(res.block.Txs),
	}).Info("Propose block")
	if err := e.net.Broadcast(p2p.ProposalMsg, res.block, nil); err != nil {
		logger.Warnf("Failed to broadcast proposal: %v", err)
	}
	e.validate(rs, res.round)
	e.tryCommit(res.round)
}

func (e *Engine) dispatch(msg p2p.Message) {
	switch msg.Code() {
	case p2p.ProposalMsg:
		e.handleProposal(msg)
	case p2p.VoteMsg:
		e.handleVote(msg)
	}
}

// stash keeps messages one height ahead until this node commits.
func (e *Engine) stash(msg p2p.Message) {
	if len(e.future) < maxFutureMsgs {
		e.future = append(e.future, msg)
	}
}

func (e *Engine) handleProposal(msg p2p.Message) {
	block := new(types.Block)
	if err := block.Unmarshal(msg.Body()); err != nil || block.Header == nil {
		logger.Warnf("Drop malformed proposal from %s: %v", msg.From().Pretty(), err)
		e.punish(msg.From(), eventbus.ProtocolViolationEvent)
		return
	}
	height, round := block.Height(), block.Header.Round
	if height == e.height+1 {
		e.stash(msg)
		return
	}
	if height != e.height {
		return
	}
	if block.Header.Proposer != e.schedule.Proposer(e.vs, height, round) {
		logger.Warnf("Drop proposal from %s at height %d round %d: %v",
			msg.From().Pretty(), height, round, ErrNotProposer)
		e.punish(msg.From(), eventbus.BadBlockEvent)
		return
	}
	if !block.VerifySignature() {
		logger.Warnf("Drop proposal from %s: %v", msg.From().Pretty(), ErrBadProposal)
		e.punish(msg.From(), eventbus.BadBlockEvent)
		return
	}
	rs, ok := e.lookupRound(round, true)
	if !ok {
		return
	}
	hash := block.Hash()
	if rs.proposal != nil {
		if rs.hash != hash {
			metricsEquivocationCounter.Inc(1)
			logger.WithFields(log.Fields{
				"height": height,
				"round":  round,
				"first":  rs.hash.String(),
				"second": hash.String(),
				"peer":   msg.From().Pretty(),
			}).Warn("Ignore second proposal of round")
			e.punish(msg.From(), eventbus.EquivocationEvent)
		}
		return
	}
	rs.setProposal(block, msg.From())
	if err := e.net.Broadcast(p2p.ProposalMsg, block, p2p.Exclude(msg.From())); err != nil {
		logger.Debugf("Failed to relay proposal: %v", err)
	}
	if round == e.round {
		e.validate(rs, round)
	}
	e.tryCommit(round)
}

// validate applies the proposal of the round on the head state off the
// loop.
func (e *Engine) validate(rs *roundState, round uint32) {
	if !e.minting() || rs.voted || rs.validating {
		return
	}
	rs.validating = true
	e.state = Voting
	height, block, parent, vs := e.height, rs.proposal, e.head, e.vs
	e.proc.Go(func(p goprocess.Process) {
		_, err := e.validator.ApplyBlock(e.ctx, block, parent, e.chain.StateView(), vs)
		res := &validationResult{height: height, round: round, hash: block.Hash(), err: err}
		select {
		case e.resultCh <- res:
		case <-p.Closing():
		}
	})
}

func (e *Engine) handleValidation(res *validationResult) {
	if res.height != e.height || res.round != e.round {
		logger.Debugf("Discard validation of %v for abandoned round %d", res.hash, res.round)
		metricsStaleResultCounter.Inc(1)
		return
	}
	rs, ok := e.lookupRound(res.round, false)
	if !ok || rs.hash != res.hash {
		return
	}
	rs.validating = false
	if res.err != nil {
		if core.IsStorage(res.err) {
			e.halt(res.err)
			return
		}
		logger.WithFields(log.Fields{
			"height": res.height,
			"round":  res.round,
			"hash":   res.hash.String(),
			"peer":   rs.from.Pretty(),
		}).Warnf("Reject proposal: %v", res.err)
		e.punish(rs.from, eventbus.BadBlockEvent)
		return
	}
	e.vote(rs, res.round)
}

// vote signs and broadcasts the only vote of this node for round.
func (e *Engine) vote(rs *roundState, round uint32) {
	if rs.voted || !e.minting() {
		return
	}
	v := &types.Vote{Height: e.height, Round: round, BlockHash: rs.hash, Voter: e.signer.Address()}
	hash := v.SigningHash()
	sig, err := e.signer.Sign(hash[:])
	if err != nil {
		logger.Errorf("Failed to sign vote: %v", err)
		return
	}
	v.Signature = sig
	rs.voted = true
	metricsVoteCounter.Inc(1)
	logger.Debugf("Vote for %v at height %d round %d", rs.hash, e.height, round)
	if err := e.net.Broadcast(p2p.VoteMsg, v, nil); err != nil {
		logger.Warnf("Failed to broadcast vote: %v", err)
	}
	e.addVote(v, "")
}

func (e *Engine) handleVote(msg p2p.Message) {
	v := new(types.Vote)
	if err := v.Unmarshal(msg.Body()); err != nil {
		logger.Warnf("Drop malformed vote from %s: %v", msg.From().Pretty(), err)
		e.punish(msg.From(), eventbus.ProtocolViolationEvent)
		return
	}
	switch {
	case v.Height == e.height:
	case v.Height == e.height+1:
		e.stash(msg)
		return
	case e.prev != nil && v.Height == e.prev.height:
	default:
		return
	}
	if !e.vs.Contains(v.Voter) {
		logger.Debugf("Drop vote from %s: %v %v", msg.From().Pretty(), ErrUnknownVote, v.Voter)
		e.punish(msg.From(), eventbus.ProtocolViolationEvent)
		return
	}
	if !v.VerifySignature() {
		logger.Warnf("Drop vote from %s: %v", msg.From().Pretty(), ErrBadVote)
		e.punish(msg.From(), eventbus.ProtocolViolationEvent)
		return
	}
	if v.Height != e.height {
		e.addCommittedVote(v)
		return
	}
	e.addVote(v, msg.From())
}

func (e *Engine) addVote(v *types.Vote, from peer.ID) {
	rs, ok := e.lookupRound(v.Round, true)
	if !ok {
		return
	}
	added, prev := rs.votes.add(v, e.vs)
	if prev != nil {
		e.recordEquivocation(prev, v)
		return
	}
	if !added {
		return
	}
	if from != "" {
		if err := e.net.Broadcast(p2p.VoteMsg, v, p2p.Exclude(from)); err != nil {
			logger.Debugf("Failed to relay vote: %v", err)
		}
	}
	e.tryCommit(v.Round)
}

func (e *Engine) recordEquivocation(first, second *types.Vote) {
	metricsEquivocationCounter.Inc(1)
	logger.WithFields(log.Fields{
		"voter":  second.Voter.String(),
		"height": second.Height,
		"round":  second.Round,
		"first":  first.BlockHash.String(),
		"second": second.BlockHash.String(),
	}).Warn("Validator voted twice in one round")
	e.mtx.Lock()
	e.evidence = append(e.evidence, &Equivocation{First: first, Second: second})
	e.mtx.Unlock()
}

// tryCommit commits the block certified in round, if any. Other rounds
// holding a certificate for another block are resolved first.
func (e *Engine) tryCommit(round uint32) {
	rs, ok := e.lookupRound(round, false)
	if !ok {
		return
	}
	hash, ok := rs.votes.quorum(e.vs)
	if !ok {
		return
	}
	cert := rs.votes.certificate(hash)
	chosen, block := cert, rs.proposal
	for r, other := range e.rounds {
		if r == round {
			continue
		}
		h, ok := other.votes.quorum(e.vs)
		if !ok || h == hash {
			continue
		}
		rival := other.votes.certificate(h)
		preferred := preferCertificate(chosen, rival, e.vs)
		rejected := rival
		if preferred == rival {
			rejected = chosen
			block = other.proposal
		}
		chosen = preferred
		if !e.rivals[rejected.BlockHash] {
			e.rivals[rejected.BlockHash] = true
			e.publishConflict(&ConflictEvidence{Height: e.height, Chosen: chosen, Rejected: rejected})
		}
	}
	if block == nil || block.Hash() != chosen.BlockHash {
		logger.Debugf("Quorum for %v at height %d round %d, waiting for the block",
			chosen.BlockHash, e.height, chosen.Round)
		return
	}
	e.commit(block, chosen)
}

func (e *Engine) commit(block *types.Block, cert *types.Certificate) {
	if !e.active() {
		return
	}
	e.state = Committing
	e.setStatus()
	e.stopTimer()

	certified := block.Copy()
	certified.Certificate = cert
	start := time.Now()
	err := e.chain.ApplyAndCommit(e.ctx, certified)
	switch {
	case err == nil:
		metricsCommitTimer.UpdateSince(start)
		logger.WithFields(log.Fields{
			"height": certified.Height(),
			"round":  cert.Round,
			"hash":   cert.BlockHash.String(),
			"votes":  len(cert.Votes),
		}).Info("Commit certified block")
		e.advance(e.chain.HeadBlock())
	case core.IsConflict(err):
		logger.Infof("Height %d was committed by sync meanwhile: %v", certified.Height(), err)
		e.followHead()
	case core.IsStorage(err):
		e.halt(err)
	default:
		logger.Warnf("Certified block %v failed to commit: %v", cert.BlockHash, err)
		e.state = Voting
		if e.minting() {
			e.resetTimer(e.cfg.roundTimeout(e.round))
		}
		e.setStatus()
	}
}

// addCommittedVote tracks late votes of the last committed height.
func (e *Engine) addCommittedVote(v *types.Vote) {
	set, ok := e.prev.rounds[v.Round]
	if !ok {
		if len(e.prev.rounds) >= maxRounds {
			return
		}
		set = newVoteSet(e.prev.height, v.Round)
		e.prev.rounds[v.Round] = set
	}
	if _, prev := set.add(v, e.vs); prev != nil {
		e.recordEquivocation(prev, v)
		return
	}
	e.checkCommitted(v.Round)
}

// checkCommitted flags a certificate of the committed height for another
// block. Committed blocks are never reverted.
func (e *Engine) checkCommitted(round uint32) {
	if e.prev.flagged {
		return
	}
	set := e.prev.rounds[round]
	hash, ok := set.quorum(e.vs)
	if !ok || hash == e.prev.hash {
		return
	}
	e.prev.flagged = true
	e.publishConflict(&ConflictEvidence{
		Height:    e.prev.height,
		Chosen:    e.prev.cert,
		Rejected:  set.certificate(hash),
		Committed: true,
	})
}

func (e *Engine) publishConflict(ev *ConflictEvidence) {
	metricsConflictCounter.Inc(1)
	fields := log.Fields{
		"height":    ev.Height,
		"rejected":  ev.Rejected.BlockHash.String(),
		"committed": ev.Committed,
	}
	if ev.Chosen != nil {
		fields["chosen"] = ev.Chosen.BlockHash.String()
	}
	logger.WithFields(fields).Warn("Conflicting certificates, operator attention required")
	e.bus.Publish(eventbus.TopicConsensusConflict, ev)
}

func (e *Engine) handleTimeout() {
	e.timer = nil
	metricsTimeoutCounter.Inc(1)
	logger.WithFields(log.Fields{
		"height": e.height,
		"round":  e.round,
		"state":  e.state.String(),
	}).Warn("Round timed out")
	e.enterRound(e.round + 1)
}

// halt stops participation after a storage failure.
func (e *Engine) halt(err error) {
	atomic.StoreInt32(&e.halted, 1)
	e.stopTimer()
	e.state = Idle
	e.setStatus()
	logger.Errorf("Consensus halted: %v", err)
	e.bus.Publish(eventbus.TopicNodeFatal, err)
}

func (e *Engine) punish(pid peer.ID, event eventbus.BusEvent) {
	if pid == "" || pid == e.net.ID() {
		return
	}
	e.bus.Publish(eventbus.TopicConnEvent, pid, event)
}
