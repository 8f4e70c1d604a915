// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validator

import (
	"context"
	"time"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/prover"
	"github.com/BOXFoundation/ledgerd/core/state"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/BOXFoundation/ledgerd/log"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var logger = log.NewLogger("validator")

// Validator runs the stateless and stateful checks shared by the mempool,
// the consensus engine and the ledger store. Proof verification is bounded
// by a worker pool and memoized by transaction hash.
type Validator struct {
	cfg      Config
	prover   core.Prover
	workers  *semaphore.Weighted
	verified *lru.Cache
}

// New creates a validator.
func New(cfg *Config, p core.Prover) (*Validator, error) {
	c := *cfg
	c.Fill()
	cache, err := lru.New(c.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Validator{
		cfg:      c,
		prover:   p,
		workers:  semaphore.NewWeighted(int64(c.Workers)),
		verified: cache,
	}, nil
}

// CheckStructure performs checks that need neither state nor proofs.
func (v *Validator) CheckStructure(tx *types.Transaction) error {
	if tx == nil {
		return core.NewValidationError(core.Malformed, "nil transaction")
	}
	if tx.Sender == types.ZeroAddress {
		return core.NewValidationError(core.Malformed, "empty sender")
	}
	if tx.Program == "" {
		return core.NewValidationError(core.Malformed, "empty program")
	}
	if len(tx.Proof) == 0 {
		return core.NewValidationError(core.Malformed, "missing proof")
	}
	if tx.Nonce == 0 {
		return core.NewValidationError(core.Malformed, "nonce must start at 1")
	}
	if size := tx.Size(); size > v.cfg.MaxTxSize {
		return core.NewValidationError(core.Malformed, "tx size %d exceeds %d", size, v.cfg.MaxTxSize)
	}
	return nil
}

// VerifyProof checks the transaction proof on the worker pool. It blocks
// until a worker is free or ctx is done.
func (v *Validator) VerifyProof(ctx context.Context, tx *types.Transaction) error {
	hash := tx.Hash()
	if v.verified.Contains(hash) {
		metricsProofCacheHit.Inc(1)
		return nil
	}

	if err := v.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	start := time.Now()
	ok, err := v.prover.Verify(tx.Proof, prover.PublicInputs(tx))
	v.workers.Release(1)
	metricsProofTimer.UpdateSince(start)

	if err != nil {
		metricsProofFailMeter.Mark(1)
		return core.NewValidationError(core.ProofInvalid, "tx %v: %v", hash, err)
	}
	if !ok {
		metricsProofFailMeter.Mark(1)
		return core.NewValidationError(core.ProofInvalid, "tx %v: proof rejected", hash)
	}
	v.verified.Add(hash, struct{}{})
	return nil
}

// VerifyProofs verifies all proofs concurrently and returns the first
// failure.
func (v *Validator) VerifyProofs(ctx context.Context, txs []*types.Transaction) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			return v.VerifyProof(ctx, tx)
		})
	}
	return g.Wait()
}

// Transfers runs the transaction program and returns the value it moves.
func (v *Validator) Transfers(tx *types.Transaction) ([]types.Transfer, uint64, error) {
	out, err := v.prover.Execute(tx.Program, tx.Inputs)
	if err != nil {
		return nil, 0, core.NewValidationError(core.Malformed, "program %s: %v", tx.Program, err)
	}
	if len(out) == 0 {
		return nil, 0, nil
	}
	transfers, err := types.DecodeTransfers(out)
	if err != nil {
		return nil, 0, core.NewValidationError(core.Malformed, "program %s output: %v", tx.Program, err)
	}
	total, ok := types.TotalAmount(transfers)
	if !ok {
		return nil, 0, core.NewValidationError(core.Malformed, "transfer amount overflows")
	}
	return transfers, total, nil
}

// CheckState checks tx against the account state in view. In strict mode
// (block application) the nonce must be the next one; otherwise (admission)
// any future nonce is accepted.
func (v *Validator) CheckState(tx *types.Transaction, view state.View, strict bool) error {
	_, amount, err := v.Transfers(tx)
	if err != nil {
		return err
	}
	return v.checkAccount(tx, view, amount, strict)
}

func (v *Validator) checkAccount(tx *types.Transaction, view state.View, amount uint64, strict bool) error {
	acc, err := view.GetAccount(tx.Sender)
	if err != nil {
		return core.NewStorageError(err, "read sender account")
	}
	if strict && tx.Nonce != acc.Nonce+1 {
		return core.NewValidationError(core.StateConflict,
			"nonce %d, expect %d", tx.Nonce, acc.Nonce+1)
	}
	if !strict && tx.Nonce <= acc.Nonce {
		return core.NewValidationError(core.DuplicateOrExpired,
			"nonce %d already used, account nonce %d", tx.Nonce, acc.Nonce)
	}
	cost := tx.Fee + amount
	if cost < amount {
		return core.NewValidationError(core.Malformed, "cost overflows")
	}
	if acc.Balance < cost {
		return core.NewValidationError(core.StateConflict,
			"balance %d less than cost %d", acc.Balance, cost)
	}
	return nil
}

// ApplyTx applies tx onto overlay in strict mode. The fee is credited to
// proposer. overlay is left untouched on error.
func (v *Validator) ApplyTx(tx *types.Transaction, overlay *state.Overlay, proposer types.Address) error {
	transfers, amount, err := v.Transfers(tx)
	if err != nil {
		return err
	}
	if err := v.checkAccount(tx, overlay, amount, true); err != nil {
		return err
	}

	child := overlay.Child()
	sender, _ := child.GetAccount(tx.Sender)
	sender.Balance -= tx.Fee + amount
	sender.Nonce = tx.Nonce
	child.SetAccount(tx.Sender, sender)

	for _, t := range transfers {
		if err := credit(child, t.To, t.Amount); err != nil {
			return err
		}
	}
	if tx.Fee > 0 {
		if err := credit(child, proposer, tx.Fee); err != nil {
			return err
		}
	}
	overlay.Merge(child)
	return nil
}

func credit(o *state.Overlay, addr types.Address, amount uint64) error {
	acc, err := o.GetAccount(addr)
	if err != nil {
		return core.NewStorageError(err, "read account")
	}
	if acc.Balance+amount < acc.Balance {
		return core.NewValidationError(core.StateConflict, "balance of %v overflows", addr)
	}
	acc.Balance += amount
	o.SetAccount(addr, acc)
	return nil
}

// CheckBlockStructure checks a block against its parent without state.
func (v *Validator) CheckBlockStructure(block *types.Block, parent *types.Block) error {
	if block == nil || block.Header == nil {
		return core.NewValidationError(core.Malformed, "empty block")
	}
	header := block.Header
	if header.Height != parent.Header.Height+1 {
		return core.NewValidationError(core.Malformed,
			"height %d, parent height %d", header.Height, parent.Header.Height)
	}
	if header.PrevBlockHash != parent.Hash() {
		return core.NewValidationError(core.Malformed, "parent hash mismatch")
	}
	if header.TimeStamp < parent.Header.TimeStamp {
		return core.NewValidationError(core.Malformed, "timestamp before parent")
	}
	if len(block.Txs) > v.cfg.MaxBlockTxs {
		return core.NewValidationError(core.Malformed, "%d txs exceed %d", len(block.Txs), v.cfg.MaxBlockTxs)
	}
	if size := block.Size(); size > v.cfg.MaxBlockSize {
		return core.NewValidationError(core.Malformed, "block size %d exceeds %d", size, v.cfg.MaxBlockSize)
	}
	if block.CalcTxsRoot() != header.TxsRoot {
		return core.NewValidationError(core.Malformed, "txs root mismatch")
	}
	seen := make(map[crypto.HashType]struct{}, len(block.Txs))
	for _, tx := range block.Txs {
		if err := v.CheckStructure(tx); err != nil {
			return err
		}
		hash := tx.Hash()
		if _, ok := seen[hash]; ok {
			return core.NewValidationError(core.Malformed, "duplicate tx %v", hash)
		}
		seen[hash] = struct{}{}
	}
	if !block.VerifySignature() {
		return core.NewValidationError(core.ProofInvalid, "bad proposer signature")
	}
	return nil
}

// VerifyCertificate checks the commit certificate of block against vs.
func (v *Validator) VerifyCertificate(block *types.Block, vs *types.ValidatorSet) error {
	cert := block.Certificate
	if cert == nil {
		return core.NewValidationError(core.Malformed, "missing certificate")
	}
	if cert.Height != block.Height() || cert.BlockHash != block.Hash() {
		return core.NewValidationError(core.Malformed, "certificate is for another block")
	}
	if err := cert.Verify(vs); err != nil {
		return core.NewValidationError(core.ProofInvalid, "certificate: %v", err)
	}
	return nil
}

// ApplyBlock speculatively applies block on top of parent and base. It
// returns the overlay holding the state changes; base is never modified.
func (v *Validator) ApplyBlock(ctx context.Context, block, parent *types.Block,
	base state.View, vs *types.ValidatorSet) (*state.Overlay, error) {

	start := time.Now()
	defer metricsBlockTimer.UpdateSince(start)

	if err := v.CheckBlockStructure(block, parent); err != nil {
		return nil, err
	}
	header := block.Header
	if header.ValidatorSetVersion != vs.Version() {
		return nil, core.NewValidationError(core.StateConflict,
			"validator set version %d, expect %d", header.ValidatorSetVersion, vs.Version())
	}
	if !vs.Contains(header.Proposer) {
		return nil, core.NewValidationError(core.Malformed, "proposer %v is not a validator", header.Proposer)
	}
	if err := v.VerifyProofs(ctx, block.Txs); err != nil {
		return nil, err
	}

	overlay := state.NewOverlay(base)
	for i, tx := range block.Txs {
		if err := v.ApplyTx(tx, overlay, header.Proposer); err != nil {
			logger.Debugf("Tx %d of block %v does not apply: %v", i, block.Hash(), err)
			return nil, err
		}
	}
	if root := overlay.Root(parent.Header.StateRoot); root != header.StateRoot {
		return nil, core.NewValidationError(core.StateConflict, "state root %v, expect %v", header.StateRoot, root)
	}
	return overlay, nil
}

// PackBlock selects, in order, the candidates that apply on base. It
// returns the transactions to include and the resulting overlay.
func (v *Validator) PackBlock(ctx context.Context, candidates []*types.TxWrap,
	base state.View, proposer types.Address) ([]*types.Transaction, *state.Overlay) {

	overlay := state.NewOverlay(base)
	txs := make([]*types.Transaction, 0, len(candidates))
	size := 0
	for _, w := range candidates {
		if ctx.Err() != nil {
			break
		}
		if len(txs) >= v.cfg.MaxBlockTxs || size+w.Size > v.cfg.MaxBlockSize {
			break
		}
		if !w.Validated {
			if err := v.VerifyProof(ctx, w.Tx); err != nil {
				continue
			}
		}
		if err := v.ApplyTx(w.Tx, overlay, proposer); err != nil {
			logger.Debugf("Skip tx %v while packing: %v", w.Hash, err)
			continue
		}
		txs = append(txs, w.Tx)
		size += w.Size
	}
	return txs, overlay
}

// BuildBlock packs candidates on top of parent and returns a block signed
// by proposer, without certificate.
func (v *Validator) BuildBlock(ctx context.Context, parent *types.Block, base state.View,
	candidates []*types.TxWrap, proposer core.Account, round uint32,
	vs *types.ValidatorSet, timestamp int64) (*types.Block, error) {

	txs, overlay := v.PackBlock(ctx, candidates, base, proposer.Address())
	if timestamp < parent.Header.TimeStamp {
		timestamp = parent.Header.TimeStamp
	}
	block := types.NewBlock(parent)
	block.Txs = txs
	block.Header.TimeStamp = timestamp
	block.Header.Proposer = proposer.Address()
	block.Header.Round = round
	block.Header.ValidatorSetVersion = vs.Version()
	block.Header.TxsRoot = block.CalcTxsRoot()
	block.Header.StateRoot = overlay.Root(parent.Header.StateRoot)

	hash := block.Hash()
	sig, err := proposer.Sign(hash[:])
	if err != nil {
		return nil, err
	}
	block.Signature = sig
	return block, nil
}
