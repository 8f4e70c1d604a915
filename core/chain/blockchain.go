// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"sync"
	"time"

	"github.com/BOXFoundation/ledgerd/core"
	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/core/state"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/core/validator"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/ledgerd/service"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/storage"
	"github.com/gogo/protobuf/proto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jbenet/goprocess"
	"github.com/pkg/errors"
)

const metricsLoopInterval = 2 * time.Second

var logger = log.NewLogger("chain") // logger

// TxState is the lifecycle state of a transaction as seen by the node.
type TxState int

// TxState values
const (
	TxUnknown TxState = iota
	TxPending
	TxCommitted
)

func (s TxState) String() string {
	switch s {
	case TxPending:
		return "Pending"
	case TxCommitted:
		return "Committed"
	default:
		return "Unknown"
	}
}

// TxStatus locates a transaction. Height and Index are set when committed.
type TxStatus struct {
	State  TxState
	Height uint64
	Index  uint32
}

// UpdateMsg is published on eventbus.TopicChainUpdate after every commit.
type UpdateMsg struct {
	Block *types.Block
}

// BlockChain is the ledger store: committed blocks, their indices and the
// versioned account state. ApplyAndCommit is the only writer.
type BlockChain struct {
	cfg       Config
	db        storage.Table
	validator *validator.Validator
	bus       eventbus.Bus
	proc      goprocess.Process

	// commit gate, held for the whole of ApplyAndCommit
	gate sync.Mutex
	// first storage failure of a commit; the store refuses writes after it
	failed error

	// guards head, vs and statecache
	mtx     sync.RWMutex
	genesis *types.Block
	head    *types.Block
	vs      *types.ValidatorSet

	blockcache    *lru.Cache
	heightToBlock *lru.Cache
	statecache    *lru.Cache
}

var _ service.Server = (*BlockChain)(nil)

// NewBlockChain opens the ledger in db. On first start it commits the
// genesis block built from genesis; afterwards it checks the stored genesis
// against it and recovers from an interrupted commit.
func NewBlockChain(parent goprocess.Process, db storage.Storage, v *validator.Validator,
	bus eventbus.Bus, cfg *Config, genesis *GenesisConfig) (*BlockChain, error) {

	c := *cfg
	c.Fill()
	chain := &BlockChain{
		cfg:       c,
		validator: v,
		bus:       bus,
		proc:      goprocess.WithParent(parent),
	}
	var err error
	if chain.db, err = db.Table(BlockTableName); err != nil {
		return nil, err
	}
	chain.blockcache, _ = lru.New(c.BlockCacheSize)
	chain.heightToBlock, _ = lru.New(c.BlockCacheSize)
	chain.statecache, _ = lru.New(c.StateCacheSize)

	if err := chain.loadGenesis(genesis); err != nil {
		logger.Error("Failed to load genesis block ", err)
		return nil, err
	}
	logger.Infof("load genesis block: %v", chain.genesis.Hash())

	if err := chain.loadHead(); err != nil {
		logger.Error("Failed to load head block ", err)
		return nil, err
	}
	logger.Infof("load head block: %v, height: %d", chain.head.Hash(), chain.head.Height())
	metricsHeightGauge.Update(int64(chain.head.Height()))
	return chain, nil
}

// Run launches the metrics loop.
func (chain *BlockChain) Run() error {
	chain.proc.Go(chain.loop)
	return nil
}

// Proc returns the goprocess of the BlockChain
func (chain *BlockChain) Proc() goprocess.Process {
	return chain.proc
}

// Stop the blockchain service
func (chain *BlockChain) Stop() {
	chain.proc.Close()
}

func (chain *BlockChain) loop(p goprocess.Process) {
	ticker := time.NewTicker(metricsLoopInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metricsBlockCacheGauge.Update(int64(chain.blockcache.Len()))
		case <-p.Closing():
			logger.Info("Quit blockchain loop.")
			return
		}
	}
}

// Head returns the committed head height and hash.
func (chain *BlockChain) Head() (uint64, crypto.HashType) {
	head := chain.HeadBlock()
	return head.Height(), head.Hash()
}

// HeadBlock returns the committed head block.
func (chain *BlockChain) HeadBlock() *types.Block {
	chain.mtx.RLock()
	defer chain.mtx.RUnlock()
	return chain.head
}

// Genesis returns block 0.
func (chain *BlockChain) Genesis() *types.Block {
	return chain.genesis
}

// ValidatorSet returns the current validator set snapshot.
func (chain *BlockChain) ValidatorSet() *types.ValidatorSet {
	chain.mtx.RLock()
	defer chain.mtx.RUnlock()
	return chain.vs
}

// StateView returns a read-only view of the account state at the current
// head. The view keeps reading that height after later commits.
func (chain *BlockChain) StateView() state.View {
	return &heightView{chain: chain, height: chain.HeadBlock().Height()}
}

// GetAccount returns the head state of addr.
func (chain *BlockChain) GetAccount(addr types.Address) (*types.Account, error) {
	return chain.StateView().GetAccount(addr)
}

// GetBlockByHash returns the committed block with hash.
func (chain *BlockChain) GetBlockByHash(hash crypto.HashType) (*types.Block, error) {
	if block, ok := chain.blockcache.Get(hash); ok {
		return block.(*types.Block), nil
	}
	block, err := chain.loadBlock(hash)
	if err != nil {
		return nil, err
	}
	if block.Height() > chain.HeadBlock().Height() {
		return nil, ErrBlockNotFound
	}
	chain.blockcache.Add(hash, block)
	return block, nil
}

// GetBlockByHeight returns the committed block at height.
func (chain *BlockChain) GetBlockByHeight(height uint64) (*types.Block, error) {
	if height > chain.HeadBlock().Height() {
		return nil, ErrBlockNotFound
	}
	if block, ok := chain.heightToBlock.Get(height); ok {
		return block.(*types.Block), nil
	}
	data, err := chain.db.Get(BlockHashKey(height))
	if err != nil {
		return nil, core.NewStorageError(err, "read height index")
	}
	if data == nil {
		return nil, ErrBlockNotFound
	}
	var hash crypto.HashType
	if err := hash.SetBytes(data); err != nil {
		return nil, err
	}
	block, err := chain.GetBlockByHash(hash)
	if err != nil {
		return nil, err
	}
	chain.heightToBlock.Add(height, block)
	return block, nil
}

// GetBlocks returns the committed blocks in [start, end], truncated at the
// head and at the configured maximum range.
func (chain *BlockChain) GetBlocks(start, end uint64) ([]*types.Block, error) {
	if end < start {
		return nil, ErrInvalidRange
	}
	head := chain.HeadBlock().Height()
	if end > head {
		end = head
	}
	if max := uint64(chain.cfg.MaxBlocksRange); end >= start && end-start >= max {
		end = start + max - 1
	}
	blocks := make([]*types.Block, 0)
	for h := start; h <= end; h++ {
		block, err := chain.GetBlockByHeight(h)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// GetTransactionStatus reports whether hash is committed. The node resolves
// Pending against the mempool.
func (chain *BlockChain) GetTransactionStatus(hash crypto.HashType) (*TxStatus, error) {
	idx, err := chain.loadTxIndex(hash)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return &TxStatus{State: TxUnknown}, nil
	}
	return &TxStatus{State: TxCommitted, Height: idx.Height, Index: idx.Index}, nil
}

// GetTransaction returns a committed transaction and where it is.
func (chain *BlockChain) GetTransaction(hash crypto.HashType) (*types.Transaction, *TxStatus, error) {
	status, err := chain.GetTransactionStatus(hash)
	if err != nil {
		return nil, nil, err
	}
	if status.State != TxCommitted {
		return nil, nil, ErrTxNotFound
	}
	block, err := chain.GetBlockByHeight(status.Height)
	if err != nil {
		return nil, nil, err
	}
	if int(status.Index) >= len(block.Txs) {
		return nil, nil, ErrTxNotFound
	}
	return block.Txs[status.Index], status, nil
}

// IsCommitted reports whether hash is in a committed block.
func (chain *BlockChain) IsCommitted(hash crypto.HashType) bool {
	idx, err := chain.loadTxIndex(hash)
	return err == nil && idx != nil
}

// ApplyAndCommit validates block against the head and commits it. It
// returns nil when block is the head already, a *core.ConflictError when
// block does not extend the head, a *core.ValidationError when it is invalid
// and a *core.StorageError when it could not be written.
//
// After the first *core.StorageError every later call returns that error.
//
// UpdateMsg subscribers run inside the commit gate and must not commit.
func (chain *BlockChain) ApplyAndCommit(ctx context.Context, block *types.Block) error {
	if block == nil || block.Header == nil {
		return core.NewValidationError(core.Malformed, "empty block")
	}

	chain.gate.Lock()
	defer chain.gate.Unlock()
	if chain.failed != nil {
		return chain.failed
	}

	start := time.Now()
	head := chain.HeadBlock()
	hash := block.Hash()
	if hash == head.Hash() {
		return nil
	}
	if block.Height() != head.Height()+1 || block.Header.PrevBlockHash != head.Hash() {
		metricsConflictCounter.Inc(1)
		return &core.ConflictError{Height: head.Height(), Head: head.Hash()}
	}

	vs := chain.ValidatorSet()
	if err := chain.validator.VerifyCertificate(block, vs); err != nil {
		metricsInvalidMeter.Mark(1)
		return err
	}
	base := &heightView{chain: chain, height: head.Height()}
	overlay, err := chain.validator.ApplyBlock(ctx, block, head, base, vs)
	if err != nil {
		if core.IsStorage(err) {
			return chain.fail(err)
		}
		metricsInvalidMeter.Mark(1)
		return err
	}

	if err := chain.writeBlock(block, overlay); err != nil {
		if core.IsStorage(err) {
			return chain.fail(err)
		}
		return err
	}
	if err := chain.db.Put(HeadKey, hash[:]); err != nil {
		return chain.fail(core.NewStorageError(err, "write head marker"))
	}
	chain.setHead(block, overlay)

	metricsCommitTimer.UpdateSince(start)
	metricsHeightGauge.Update(int64(block.Height()))
	logger.WithFields(log.Fields{
		"height": block.Height(),
		"hash":   hash.String(),
		"txs":    len(block.Txs),
		"round":  block.Header.Round,
	}).Info("Committed block")

	if chain.bus != nil {
		chain.bus.Publish(eventbus.TopicChainUpdate, &UpdateMsg{Block: block})
	}
	return nil
}

// fail latches err. Called with the gate held.
func (chain *BlockChain) fail(err error) error {
	logger.Errorf("Ledger store refuses further commits: %v", err)
	chain.failed = err
	return err
}

// Failed returns the storage error that stopped commits, if any.
func (chain *BlockChain) Failed() error {
	chain.gate.Lock()
	defer chain.gate.Unlock()
	return chain.failed
}

// writeBlock is the first commit phase: one batch with the block, its
// indices and the new account versions.
func (chain *BlockChain) writeBlock(block *types.Block, overlay *state.Overlay) error {
	batch := chain.db.NewBatch()
	defer batch.Close()
	if err := putBlock(batch, block, overlay); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return core.NewStorageError(err, "write block batch")
	}
	return nil
}

func putBlock(batch storage.Batch, block *types.Block, overlay *state.Overlay) error {
	hash := block.Hash()
	height := block.Height()
	data, err := block.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal block")
	}
	batch.Put(BlockKey(hash), data)
	batch.Put(BlockHashKey(height), hash[:])

	for i, tx := range block.Txs {
		idx, err := proto.Marshal(&corepb.TxIndex{Height: height, Index: uint32(i)})
		if err != nil {
			return errors.Wrap(err, "marshal tx index")
		}
		batch.Put(TxIndexKey(tx.Hash()), idx)
	}
	for _, addr := range overlay.Addresses() {
		acc, _ := overlay.Dirty(addr)
		data, err := acc.Marshal()
		if err != nil {
			return errors.Wrap(err, "marshal account")
		}
		batch.Put(AccountKey(addr, height), data)
	}
	return nil
}

func (chain *BlockChain) setHead(block *types.Block, overlay *state.Overlay) {
	chain.mtx.Lock()
	defer chain.mtx.Unlock()
	chain.head = block
	for _, addr := range overlay.Addresses() {
		acc, _ := overlay.Dirty(addr)
		chain.statecache.Add(addr, acc)
	}
	chain.blockcache.Add(block.Hash(), block)
	chain.heightToBlock.Add(block.Height(), block)
}

func (chain *BlockChain) loadBlock(hash crypto.HashType) (*types.Block, error) {
	data, err := chain.db.Get(BlockKey(hash))
	if err != nil {
		return nil, core.NewStorageError(err, "read block")
	}
	if data == nil {
		return nil, ErrBlockNotFound
	}
	block := new(types.Block)
	if err := block.Unmarshal(data); err != nil {
		return nil, err
	}
	return block, nil
}

// loadTxIndex returns nil if hash is not committed at or below the head.
func (chain *BlockChain) loadTxIndex(hash crypto.HashType) (*corepb.TxIndex, error) {
	data, err := chain.db.Get(TxIndexKey(hash))
	if err != nil {
		return nil, core.NewStorageError(err, "read tx index")
	}
	if data == nil {
		return nil, nil
	}
	idx := new(corepb.TxIndex)
	if err := proto.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	if idx.Height > chain.HeadBlock().Height() {
		return nil, nil
	}
	return idx, nil
}

func (chain *BlockChain) loadGenesis(cfg *GenesisConfig) error {
	genesis, overlay, vs, err := NewGenesis(cfg)
	if err != nil {
		return err
	}
	hash := genesis.Hash()

	stored, err := chain.db.Get(GenesisKey)
	if err != nil {
		return core.NewStorageError(err, "read genesis")
	}
	if stored != nil {
		var storedHash crypto.HashType
		if err := storedHash.SetBytes(stored); err != nil {
			return err
		}
		if storedHash != hash {
			return errors.Wrapf(ErrGenesisMismatch, "stored %v, configured %v", storedHash, hash)
		}
	}

	// the head marker is written last, so a genesis without it is rewritten
	head, err := chain.db.Get(HeadKey)
	if err != nil {
		return core.NewStorageError(err, "read head marker")
	}
	if head == nil {
		batch := chain.db.NewBatch()
		defer batch.Close()
		if err := putBlock(batch, genesis, overlay); err != nil {
			return err
		}
		vsData, err := proto.Marshal(mustProto(vs))
		if err != nil {
			return err
		}
		batch.Put([]byte(ValidatorSetKey), vsData)
		batch.Put(GenesisKey, hash[:])
		if err := batch.Write(); err != nil {
			return core.NewStorageError(err, "write genesis")
		}
		if err := chain.db.Put(HeadKey, hash[:]); err != nil {
			return core.NewStorageError(err, "write head marker")
		}
		logger.Infof("Committed genesis block %v with %d validators", hash, vs.Size())
	}

	chain.genesis = genesis
	return chain.loadValidatorSet()
}

func mustProto(vs *types.ValidatorSet) proto.Message {
	msg, _ := vs.ToProtoMessage()
	return msg
}

func (chain *BlockChain) loadValidatorSet() error {
	data, err := chain.db.Get([]byte(ValidatorSetKey))
	if err != nil {
		return core.NewStorageError(err, "read validator set")
	}
	msg := new(corepb.ValidatorSet)
	if err := proto.Unmarshal(data, msg); err != nil {
		return err
	}
	vs := new(types.ValidatorSet)
	if err := vs.FromProtoMessage(msg); err != nil {
		return err
	}
	chain.vs = vs
	return nil
}

// loadHead reads the head marker and drops whatever an interrupted commit
// wrote above it.
func (chain *BlockChain) loadHead() error {
	data, err := chain.db.Get(HeadKey)
	if err != nil {
		return core.NewStorageError(err, "read head marker")
	}
	var hash crypto.HashType
	if err := hash.SetBytes(data); err != nil {
		return err
	}
	head, err := chain.loadBlock(hash)
	if err != nil {
		return errors.Wrapf(ErrCorruptedHead, "%v: %v", hash, err)
	}
	chain.head = head
	return chain.recover(head.Height())
}

func (chain *BlockChain) recover(height uint64) error {
	batch := chain.db.NewBatch()
	defer batch.Close()

	for _, k := range chain.db.KeysWithPrefix(blkHashBase.Prefix()) {
		h, err := heightOfVersionKey(k)
		if err != nil || h <= height {
			continue
		}
		batch.Del(k)
		data, err := chain.db.Get(k)
		if err != nil || data == nil {
			continue
		}
		var hash crypto.HashType
		if hash.SetBytes(data) != nil {
			continue
		}
		if block, err := chain.loadBlock(hash); err == nil {
			for _, tx := range block.Txs {
				batch.Del(TxIndexKey(tx.Hash()))
			}
		}
		batch.Del(BlockKey(hash))
		logger.Warnf("Drop uncommitted block %v at height %d", hash, h)
	}
	for _, k := range chain.db.KeysWithPrefix(accountBase.Prefix()) {
		h, err := heightOfVersionKey(k)
		if err != nil || h <= height {
			continue
		}
		batch.Del(k)
	}

	if batch.Count() == 0 {
		return nil
	}
	logger.Warnf("Recovering from interrupted commit above height %d, %d keys dropped", height, batch.Count())
	if err := batch.Write(); err != nil {
		return core.NewStorageError(err, "recover")
	}
	return nil
}
