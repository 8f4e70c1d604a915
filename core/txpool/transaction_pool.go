// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package txpool

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/chain"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/core/validator"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/BOXFoundation/ledgerd/util"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jbenet/goprocess"
	goprocessctx "github.com/jbenet/goprocess/context"
)

// const defines constants
const (
	TxMsgBufferChSize          = 65536
	ChainUpdateMsgBufferChSize = 65536

	metricsLoopInterval = time.Second
)

var logger = log.NewLogger("txpool") // logger

// TransactionPool holds validated transactions waiting for a block.
type TransactionPool struct {
	cfg       Config
	net       p2p.Net
	chain     *chain.BlockChain
	validator *validator.Validator
	bus       eventbus.Bus
	proc      goprocess.Process

	newTxMsgCh          chan p2p.Message
	newChainUpdateMsgCh chan *chain.UpdateMsg
	txNotifee           *p2p.Notifiee

	// guards hashToTx and senderToTxs
	txMutex     sync.RWMutex
	hashToTx    map[crypto.HashType]*types.TxWrap
	senderToTxs map[types.Address]map[uint64]*types.TxWrap

	// hashes of recently committed transactions
	recent *lru.Cache
}

var _ service.Server = (*TransactionPool)(nil)

// NewTransactionPool new a transaction pool.
func NewTransactionPool(parent goprocess.Process, cfg *Config, net p2p.Net, c *chain.BlockChain,
	v *validator.Validator, bus eventbus.Bus) *TransactionPool {

	conf := *cfg
	conf.Fill()
	recent, _ := lru.New(conf.RecentCacheSize)
	return &TransactionPool{
		cfg:                 conf,
		net:                 net,
		chain:               c,
		validator:           v,
		bus:                 bus,
		proc:                goprocess.WithParent(parent),
		newTxMsgCh:          make(chan p2p.Message, TxMsgBufferChSize),
		newChainUpdateMsgCh: make(chan *chain.UpdateMsg, ChainUpdateMsgBufferChSize),
		hashToTx:            make(map[crypto.HashType]*types.TxWrap),
		senderToTxs:         make(map[types.Address]map[uint64]*types.TxWrap),
		recent:              recent,
	}
}

// Run launch transaction pool.
func (pool *TransactionPool) Run() error {
	pool.txNotifee = p2p.NewNotifiee(p2p.TransactionMsg, pool.newTxMsgCh)
	pool.net.Subscribe(pool.txNotifee)
	if err := pool.bus.Subscribe(eventbus.TopicChainUpdate, pool.receiveChainUpdateMsg); err != nil {
		return err
	}
	pool.proc.Go(pool.loop)
	pool.proc.Go(pool.cleanExpiredTxsLoop)
	return nil
}

// Proc returns the goprocess of the TransactionPool
func (pool *TransactionPool) Proc() goprocess.Process {
	return pool.proc
}

// Stop the server
func (pool *TransactionPool) Stop() {
	pool.proc.Close()
}

// receiveChainUpdateMsg runs inside the commit gate, so it only queues.
func (pool *TransactionPool) receiveChainUpdateMsg(msg *chain.UpdateMsg) {
	select {
	case pool.newChainUpdateMsgCh <- msg:
	case <-pool.proc.Closing():
	}
}

func (pool *TransactionPool) loop(p goprocess.Process) {
	logger.Info("Waitting for new tx message...")
	metricsTicker := time.NewTicker(metricsLoopInterval)
	defer metricsTicker.Stop()
	ctx := goprocessctx.OnClosingContext(p)
	for {
		select {
		case msg := <-pool.newTxMsgCh:
			if err := pool.processTxMsg(ctx, msg); err != nil {
				logger.Debugf("Failed to process tx message from %s: %v", msg.From().Pretty(), err)
			}
		case msg := <-pool.newChainUpdateMsgCh:
			if n := pool.EvictCommitted(msg.Block); n > 0 {
				logger.Debugf("Evicted %d txs committed at height %d", n, msg.Block.Height())
			}
		case <-metricsTicker.C:
			metricsTxPoolSizeGauge.Update(int64(pool.Size()))
		case <-p.Closing():
			logger.Info("Quit transaction pool loop.")
			pool.net.UnSubscribe(pool.txNotifee)
			pool.bus.Unsubscribe(eventbus.TopicChainUpdate, pool.receiveChainUpdateMsg)
			return
		}
	}
}

func (pool *TransactionPool) cleanExpiredTxsLoop(p goprocess.Process) {
	ticker := time.NewTicker(pool.cfg.CleanInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if n := pool.EvictExpired(now); n > 0 {
				logger.Infof("Evicted %d expired txs", n)
			}
		case <-p.Closing():
			logger.Info("Quit cleanExpiredTxs loop.")
			return
		}
	}
}

// processTxMsg admits a relayed transaction and relays it on to every
// other peer. Senders of malformed or unprovable transactions are reported.
func (pool *TransactionPool) processTxMsg(ctx context.Context, msg p2p.Message) error {
	tx := new(types.Transaction)
	if err := tx.Unmarshal(msg.Body()); err != nil {
		pool.bus.Publish(eventbus.TopicConnEvent, msg.From(), eventbus.BadTxEvent)
		return err
	}
	added, err := pool.admit(ctx, tx)
	if err != nil {
		if reason, ok := core.RejectReasonOf(err); ok && (reason == core.Malformed || reason == core.ProofInvalid) {
			pool.bus.Publish(eventbus.TopicConnEvent, msg.From(), eventbus.BadTxEvent)
		}
		return err
	}
	if !added {
		return nil
	}
	return pool.net.Broadcast(p2p.TransactionMsg, tx, p2p.Exclude(msg.From()))
}

// Submit admits a locally created transaction and broadcasts it.
func (pool *TransactionPool) Submit(ctx context.Context, tx *types.Transaction) error {
	added, err := pool.admit(ctx, tx)
	if err != nil || !added {
		return err
	}
	return pool.net.Broadcast(p2p.TransactionMsg, tx, nil)
}

// Admit runs tx through the admission pipeline: structure, duplicate and
// expiry, proof and then account state. It returns nil when tx is pending
// afterwards and a *core.RejectError otherwise.
func (pool *TransactionPool) Admit(ctx context.Context, tx *types.Transaction) error {
	_, err := pool.admit(ctx, tx)
	return err
}

func (pool *TransactionPool) admit(ctx context.Context, tx *types.Transaction) (bool, error) {
	added, err := pool.doAdmit(ctx, tx)
	if err != nil {
		metricsRejectedMeter.Mark(1)
		logger.Debugf("Rejected tx: %v", err)
	} else if added {
		metricsAdmittedMeter.Mark(1)
	}
	return added, err
}

func (pool *TransactionPool) doAdmit(ctx context.Context, tx *types.Transaction) (bool, error) {
	if err := pool.validator.CheckStructure(tx); err != nil {
		return false, err
	}
	hash := tx.Hash()
	now := time.Now()
	if tx.Expired(now.Unix()) {
		return false, core.NewValidationError(core.DuplicateOrExpired, "tx %v expired at %d", hash, tx.Expiry)
	}
	if pool.recent.Contains(hash) || pool.chain.IsCommitted(hash) {
		return false, core.NewValidationError(core.DuplicateOrExpired, "tx %v already committed", hash)
	}
	if pool.Has(hash) {
		return false, nil
	}

	// the proof is the expensive part and runs without the lock
	if err := pool.validator.VerifyProof(ctx, tx); err != nil {
		return false, err
	}

	pool.txMutex.Lock()
	defer pool.txMutex.Unlock()
	if _, exists := pool.hashToTx[hash]; exists {
		return false, nil
	}
	if pool.recent.Contains(hash) {
		return false, core.NewValidationError(core.DuplicateOrExpired, "tx %v already committed", hash)
	}
	if other, exists := pool.senderToTxs[tx.Sender][tx.Nonce]; exists {
		return false, core.NewValidationError(core.StateConflict,
			"nonce %d of %v already used by pending tx %v", tx.Nonce, tx.Sender, other.Hash)
	}
	if err := pool.validator.CheckState(tx, pool.chain.StateView(), false); err != nil {
		return false, err
	}

	wrap := types.NewTxWrap(tx, now.UnixNano())
	wrap.Validated = true
	pool.addTx(wrap)
	logger.Debugf("Accepted new tx. Hash: %v", hash)
	return true, nil
}

func (pool *TransactionPool) addTx(wrap *types.TxWrap) {
	pool.hashToTx[wrap.Hash] = wrap
	txs, ok := pool.senderToTxs[wrap.Tx.Sender]
	if !ok {
		txs = make(map[uint64]*types.TxWrap)
		pool.senderToTxs[wrap.Tx.Sender] = txs
	}
	txs[wrap.Tx.Nonce] = wrap
}

// removeTx must be called with txMutex held.
func (pool *TransactionPool) removeTx(wrap *types.TxWrap) {
	delete(pool.hashToTx, wrap.Hash)
	sender := wrap.Tx.Sender
	if txs, ok := pool.senderToTxs[sender]; ok {
		delete(txs, wrap.Tx.Nonce)
		if len(txs) == 0 {
			delete(pool.senderToTxs, sender)
		}
	}
	metricsEvictedCounter.Inc(1)
}

// Has reports whether hash is pending.
func (pool *TransactionPool) Has(hash crypto.HashType) bool {
	pool.txMutex.RLock()
	defer pool.txMutex.RUnlock()
	_, exists := pool.hashToTx[hash]
	return exists
}

// Get returns the pending entry of hash, or nil.
func (pool *TransactionPool) Get(hash crypto.HashType) *types.TxWrap {
	pool.txMutex.RLock()
	defer pool.txMutex.RUnlock()
	return pool.hashToTx[hash]
}

// Size returns the number of pending transactions.
func (pool *TransactionPool) Size() int {
	pool.txMutex.RLock()
	defer pool.txMutex.RUnlock()
	return len(pool.hashToTx)
}

// GetAllTxs returns every pending entry, sorted by hash.
func (pool *TransactionPool) GetAllTxs() []*types.TxWrap {
	pool.txMutex.RLock()
	txs := make([]*types.TxWrap, 0, len(pool.hashToTx))
	for _, w := range pool.hashToTx {
		txs = append(txs, w)
	}
	pool.txMutex.RUnlock()
	sort.Slice(txs, func(i, j int) bool { return txs[i].Hash.Less(txs[j].Hash) })
	return txs
}

// higherPriority orders entries by fee, then admission time, then hash.
func higherPriority(a, b *types.TxWrap) bool {
	if a.Fee != b.Fee {
		return a.Fee > b.Fee
	}
	if a.AddedTimestamp != b.AddedTimestamp {
		return a.AddedTimestamp < b.AddedTimestamp
	}
	return a.Hash.Less(b.Hash)
}

// senderQueue is the nonce ordered backlog of one sender.
type senderQueue struct {
	txs []*types.TxWrap
}

func (q *senderQueue) head() *types.TxWrap {
	return q.txs[0]
}

// TakeCandidates returns up to maxCount entries totalling at most maxBytes,
// best first, without removing them. A sender's transactions always come
// in nonce order. Zero limits mean no limit.
func (pool *TransactionPool) TakeCandidates(maxCount, maxBytes int) []*types.TxWrap {
	pool.txMutex.RLock()
	pq := util.NewPriorityQueue(func(a, b interface{}) bool {
		return higherPriority(a.(*senderQueue).head(), b.(*senderQueue).head())
	})
	for _, txs := range pool.senderToTxs {
		q := &senderQueue{txs: make([]*types.TxWrap, 0, len(txs))}
		for _, w := range txs {
			q.txs = append(q.txs, w)
		}
		sort.Slice(q.txs, func(i, j int) bool { return q.txs[i].Tx.Nonce < q.txs[j].Tx.Nonce })
		pq.PushItem(q)
	}
	pool.txMutex.RUnlock()

	var candidates []*types.TxWrap
	size := 0
	for pq.Len() > 0 {
		if maxCount > 0 && len(candidates) >= maxCount {
			break
		}
		q := pq.PopItem().(*senderQueue)
		w := q.head()
		if maxBytes > 0 && size+w.Size > maxBytes {
			// the sender's later nonces cannot go without this one
			continue
		}
		candidates = append(candidates, w)
		size += w.Size
		if q.txs = q.txs[1:]; len(q.txs) > 0 {
			pq.PushItem(q)
		}
	}
	return candidates
}

// EvictCommitted removes the transactions of block and every pending entry
// whose nonce the block made stale. It returns the number removed.
func (pool *TransactionPool) EvictCommitted(block *types.Block) int {
	if block == nil {
		return 0
	}
	pool.txMutex.Lock()
	defer pool.txMutex.Unlock()

	removed := 0
	committedNonce := make(map[types.Address]uint64)
	for _, tx := range block.Txs {
		hash := tx.Hash()
		pool.recent.Add(hash, struct{}{})
		if w, exists := pool.hashToTx[hash]; exists {
			pool.removeTx(w)
			removed++
		}
		if tx.Nonce > committedNonce[tx.Sender] {
			committedNonce[tx.Sender] = tx.Nonce
		}
	}
	for sender, nonce := range committedNonce {
		for n, w := range pool.senderToTxs[sender] {
			if n <= nonce {
				pool.removeTx(w)
				removed++
			}
		}
	}
	return removed
}

// EvictExpired removes entries past their expiry or older than the TTL at
// now. It returns the number removed.
func (pool *TransactionPool) EvictExpired(now time.Time) int {
	pool.txMutex.Lock()
	defer pool.txMutex.Unlock()

	removed := 0
	deadline := now.Add(-pool.cfg.TTL).UnixNano()
	for _, w := range pool.hashToTx {
		if w.Tx.Expired(now.Unix()) || w.AddedTimestamp < deadline {
			pool.removeTx(w)
			removed++
		}
	}
	return removed
}
