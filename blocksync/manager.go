// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/gogo/protobuf/proto"
	"github.com/jbenet/goprocess"
	goprocessctx "github.com/jbenet/goprocess/context"
	peer "github.com/libp2p/go-libp2p-peer"
	"github.com/pkg/errors"
)

var logger = log.NewLogger("sync") // logger

const (
	messageChBufferSize  = 512
	responseChBufferSize = 16
)

// Minter is the part of consensus suspended while catching up.
type Minter interface {
	StopMint()
	RecoverMint()
}

// SyncManager keeps the node within reach of the network head. It serves
// block ranges and height announcements to peers, and when peers are
// ahead by more than the gap threshold it suspends minting and commits
// the missing blocks fetched from peers or from the bulk source.
type SyncManager struct {
	cfg    Config
	chain  *chain.BlockChain
	net    p2p.Net
	bus    eventbus.Bus
	minter Minter
	bulk   core.BulkSource
	proc   goprocess.Process

	messageCh  chan p2p.Message
	responseCh chan p2p.Message
	notifiees  []*p2p.Notifiee
	triggerCh  chan struct{}
	commitCh   chan struct{}

	halted int32

	statMtx sync.RWMutex
	status  SyncStatus
	target  uint64

	// catch-up state, owned by the sync loop
	offset   int
	failures int
	stalls   int
}

var _ service.Server = (*SyncManager)(nil)

// NewSyncManager creates a sync manager. minter and bulk may be nil.
func NewSyncManager(parent goprocess.Process, cfg *Config, c *chain.BlockChain, net p2p.Net,
	bus eventbus.Bus, minter Minter, bulk core.BulkSource) *SyncManager {

	conf := *cfg
	conf.Fill()
	sm := &SyncManager{
		cfg:        conf,
		chain:      c,
		net:        net,
		bus:        bus,
		minter:     minter,
		bulk:       bulk,
		proc:       goprocess.WithParent(parent),
		messageCh:  make(chan p2p.Message, messageChBufferSize),
		responseCh: make(chan p2p.Message, responseChBufferSize),
		triggerCh:  make(chan struct{}, 1),
		commitCh:   make(chan struct{}, 1),
	}
	for _, code := range []uint32{p2p.HeightAnnouncement, p2p.BlockRequest, p2p.BlockResponse} {
		sm.notifiees = append(sm.notifiees, p2p.NewNotifiee(code, sm.messageCh))
	}
	return sm
}

// Run starts serving peers and watching their heights.
func (sm *SyncManager) Run() error {
	if err := sm.bus.Subscribe(eventbus.TopicChainUpdate, sm.onChainUpdate); err != nil {
		return err
	}
	if err := sm.bus.Subscribe(eventbus.TopicNodeFatal, sm.onNodeFatal); err != nil {
		return err
	}
	for _, n := range sm.notifiees {
		sm.net.Subscribe(n)
	}
	sm.proc.Go(sm.serve)
	sm.proc.Go(sm.loop)
	return nil
}

// Proc returns the goprocess running the service
func (sm *SyncManager) Proc() goprocess.Process {
	return sm.proc
}

// Stop sync manager
func (sm *SyncManager) Stop() {
	sm.proc.Close()
}

// Status returns the sync state.
func (sm *SyncManager) Status() SyncStatus {
	sm.statMtx.RLock()
	defer sm.statMtx.RUnlock()
	return sm.status
}

// Target returns the height the last catch-up aimed at.
func (sm *SyncManager) Target() uint64 {
	sm.statMtx.RLock()
	defer sm.statMtx.RUnlock()
	return sm.target
}

func (sm *SyncManager) setStatus(status SyncStatus, target uint64) {
	sm.statMtx.Lock()
	prev := sm.status
	sm.status, sm.target = status, target
	sm.statMtx.Unlock()
	metricsTargetGauge.Update(int64(target))
	if prev != status {
		logger.Infof("sync status %s -> %s, target %d", prev, status, target)
	}
}

// onChainUpdate runs inside the commit gate.
func (sm *SyncManager) onChainUpdate(msg *chain.UpdateMsg) {
	signal(sm.commitCh)
}

// onNodeFatal stops commits after any component lost the store.
func (sm *SyncManager) onNodeFatal(err error) {
	if atomic.CompareAndSwapInt32(&sm.halted, 0, 1) {
		logger.Errorf("Sync halted by node failure: %v", err)
	}
}

// trigger asks the loop for a lag check.
func (sm *SyncManager) trigger() {
	signal(sm.triggerCh)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (sm *SyncManager) loop(p goprocess.Process) {
	logger.Info("Sync loop started")
	ctx := goprocessctx.OnClosingContext(p)
	ticker := time.NewTicker(sm.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.triggerCh:
			sm.check(ctx)
		case <-ticker.C:
			sm.check(ctx)
		case <-p.Closing():
			logger.Info("Quit sync loop")
			return
		}
	}
}

// check starts a catch-up when some peer is ahead by more than the gap
// threshold.
func (sm *SyncManager) check(ctx context.Context) {
	if atomic.LoadInt32(&sm.halted) == 1 {
		return
	}
	local, _ := sm.chain.Head()
	target := sm.maxPeerHeight()
	if target <= local+sm.cfg.GapThreshold {
		return
	}
	logger.Infof("Behind the network: local height %d, peers at %d", local, target)
	sm.setStatus(Behind, target)
	if sm.minter != nil {
		sm.minter.StopMint()
	}
	sm.catchUp(ctx, target)
}

func (sm *SyncManager) catchUp(ctx context.Context, target uint64) {
	sm.setStatus(CatchingUp, target)
	sm.stalls, sm.failures = 0, 0
	for {
		if ctx.Err() != nil || atomic.LoadInt32(&sm.halted) == 1 {
			return
		}
		local, _ := sm.chain.Head()
		if local >= target {
			sm.announce()
			if highest := sm.maxPeerHeight(); highest > local {
				logger.Infof("Sync target moves from %d to %d", target, highest)
				target = highest
				sm.setStatus(CatchingUp, target)
				continue
			}
			sm.setStatus(Synced, local)
			logger.Infof("Synced at height %d", local)
			if sm.minter != nil {
				sm.minter.RecoverMint()
			}
			return
		}

		end := local + sm.cfg.ChunkSize
		if end > target {
			end = target
		}
		progressed, err := sm.fetchChunk(ctx, local+1, end)
		if err != nil && core.IsStorage(err) {
			sm.halt(err)
			return
		}
		if progressed {
			sm.stalls = 0
			continue
		}
		sm.stall(ctx, err)
		if sm.caughtUp() {
			return
		}
	}
}

// caughtUp ends a catch-up whose target went away: when no connected peer
// is ahead by more than the gap threshold, minting resumes.
func (sm *SyncManager) caughtUp() bool {
	if atomic.LoadInt32(&sm.halted) == 1 {
		return false
	}
	local, _ := sm.chain.Head()
	if sm.maxPeerHeight() > local+sm.cfg.GapThreshold {
		return false
	}
	logger.Infof("No peer ahead of height %d any more, back to consensus", local)
	sm.setStatus(Synced, local)
	if sm.minter != nil {
		sm.minter.RecoverMint()
	}
	return true
}

// fetchChunk fetches and commits [start, end] from one source. It reports
// whether the head moved.
func (sm *SyncManager) fetchChunk(ctx context.Context, start, end uint64) (bool, error) {
	pid := sm.pickPeer(start)
	useBulk := sm.bulk != nil && (pid == "" || sm.failures >= sm.cfg.BulkAfter)
	if pid == "" && !useBulk {
		return false, ErrNoSource
	}

	var blocks []*types.Block
	var err error
	t := time.Now()
	if useBulk {
		pid = ""
		metricsBulkCounter.Inc(1)
		fctx, cancel := context.WithTimeout(ctx, sm.cfg.StallTimeout)
		blocks, err = sm.bulk.FetchRange(fctx, start, end)
		cancel()
		err = errors.Wrapf(err, "bulk fetch [%d, %d]", start, end)
	} else {
		blocks, err = sm.fetchFromPeer(ctx, pid, start, end)
	}
	if err == nil && len(blocks) == 0 {
		err = ErrEmptyResponse
	}
	if err == nil && blocks[0].Height() != start {
		err = ErrUnexpectedStart
		sm.report(pid, eventbus.ProtocolViolationEvent)
	}
	if err != nil {
		logger.Warnf("Failed to fetch blocks [%d, %d] from %s: %v", start, end, sourceName(pid), err)
		sm.failed(pid)
		return false, err
	}
	metricsChunkFetchTimer.UpdateSince(t)

	before, _ := sm.chain.Head()
	applied, err := sm.apply(ctx, blocks)
	if applied > 0 {
		metricsSyncedMeter.Mark(int64(applied))
		if pid != "" {
			sm.failures = 0
			sm.report(pid, eventbus.SyncMsgEvent)
		}
	}
	after, _ := sm.chain.Head()
	if err != nil {
		switch {
		case core.IsStorage(err):
		case core.IsValidation(err):
			logger.Warnf("Invalid block from %s: %v", sourceName(pid), err)
			if pid != "" {
				metricsBadPeerCounter.Inc(1)
				sm.report(pid, eventbus.BadBlockEvent)
			}
			sm.failed(pid)
		default:
			logger.Warnf("Failed to commit blocks from %s: %v", sourceName(pid), err)
			sm.failed(pid)
		}
	}
	return after > before, err
}

// apply commits blocks in order. A conflict below the next height means
// the head moved under us, so the block is skipped. A block at the next
// height that does not extend the head is invalid.
func (sm *SyncManager) apply(ctx context.Context, blocks []*types.Block) (int, error) {
	applied := 0
	for _, b := range blocks {
		err := sm.chain.ApplyAndCommit(ctx, b)
		switch {
		case err == nil:
			applied++
		case extendsOther(err, b):
			return applied, core.NewValidationError(core.StateConflict,
				"block %d does not extend head: %v", b.Height(), err)
		case core.IsConflict(err):
			logger.Debugf("Skip block %d: %v", b.Height(), err)
		default:
			return applied, err
		}
	}
	return applied, nil
}

// extendsOther reports whether err rejected b at the height right above
// the committed head, that is b has another parent.
func extendsOther(err error, b *types.Block) bool {
	conflict, ok := errors.Cause(err).(*core.ConflictError)
	return ok && b.Height() == conflict.Height+1
}

func (sm *SyncManager) fetchFromPeer(ctx context.Context, pid peer.ID, start, end uint64) ([]*types.Block, error) {
	req := &corepb.BlockRequest{Start: start, End: end}
	if err := sm.net.Send(pid, p2p.BlockRequest, p2p.ProtoBody(req)); err != nil {
		return nil, err
	}
	timer := time.NewTimer(sm.cfg.StallTimeout)
	defer cleanStopTimer(timer)
	for {
		select {
		case msg := <-sm.responseCh:
			if msg.From() != pid {
				continue
			}
			resp := new(corepb.BlockResponse)
			if err := proto.Unmarshal(msg.Body(), resp); err != nil {
				sm.report(pid, eventbus.ProtocolViolationEvent)
				return nil, err
			}
			if resp.Start != start {
				continue
			}
			return blocksOf(resp)
		case <-timer.C:
			return nil, errSyncTimeout
		case <-ctx.Done():
			return nil, errClosing
		}
	}
}

// failed counts a failure of pid. A failure of the bulk source sends the
// next attempts back to peers.
func (sm *SyncManager) failed(pid peer.ID) {
	if pid == "" {
		sm.failures = 0
		return
	}
	sm.failures++
}

// stall re-polls the peers and rotates their order. Consecutive stalls
// wait for a poll interval or a new announcement before retrying.
func (sm *SyncManager) stall(ctx context.Context, err error) {
	sm.stalls++
	sm.offset++
	metricsStallCounter.Inc(1)
	sm.announce()
	if sm.stalls%sm.cfg.MaxRetries == 0 {
		local, _ := sm.chain.Head()
		logger.Warnf("Sync made no progress %d times in a row at height %d, target %d: %v",
			sm.stalls, local, sm.Target(), err)
		sm.bus.Publish(eventbus.TopicSyncStall, sm.stalls)
	}
	if sm.stalls == 1 && err != ErrNoSource {
		return
	}
	timer := time.NewTimer(sm.cfg.PollInterval)
	defer cleanStopTimer(timer)
	select {
	case <-timer.C:
	case <-sm.triggerCh:
	case <-ctx.Done():
	}
}

// pickPeer returns a connected peer at or above height, from the peers
// ordered by height and rotated by the failures so far.
func (sm *SyncManager) pickPeer(height uint64) peer.ID {
	var candidates []p2p.PeerRecord
	for _, r := range sm.net.Peers() {
		if r.Connected() && r.Height >= height {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if (candidates[i].State == p2p.Active) != (candidates[j].State == p2p.Active) {
			return candidates[i].State == p2p.Active
		}
		if candidates[i].Height != candidates[j].Height {
			return candidates[i].Height > candidates[j].Height
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[sm.offset%len(candidates)].ID
}

func (sm *SyncManager) maxPeerHeight() uint64 {
	var highest uint64
	for _, r := range sm.net.Peers() {
		if r.Connected() && r.Height > highest {
			highest = r.Height
		}
	}
	return highest
}

func (sm *SyncManager) halt(err error) {
	atomic.StoreInt32(&sm.halted, 1)
	logger.Errorf("Sync halted: %v", err)
	sm.bus.Publish(eventbus.TopicNodeFatal, err)
}

func (sm *SyncManager) report(pid peer.ID, event eventbus.BusEvent) {
	if pid == "" || pid == sm.net.ID() {
		return
	}
	sm.bus.Publish(eventbus.TopicConnEvent, pid, event)
}

func sourceName(pid peer.ID) string {
	if pid == "" {
		return "bulk source"
	}
	return pid.Pretty()
}

func drainTimer(ch <-chan time.Time) {
	select {
	case <-ch:
	default:
	}
}

func cleanStopTimer(t *time.Timer) {
	t.Stop()
	drainTimer(t.C)
}
