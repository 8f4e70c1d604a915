// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"testing"

	"github.com/BOXFoundation/ledgerd/core/chain/chaintest"
	"github.com/BOXFoundation/ledgerd/core/txpool"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/BOXFoundation/ledgerd/rpc/rpcpb"
	"github.com/facebookgo/ensure"
	"github.com/jbenet/goprocess"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeReporter struct{}

func (fakeReporter) SyncStatus() string { return "Synced" }

func (fakeReporter) ConsensusStatus() (string, uint32, bool) { return "Voting", 2, false }

func newTestServer(t *testing.T) (*Server, *chaintest.Env) {
	env := chaintest.NewEnv(t, 4, 2)
	bus := eventbus.New()
	c := env.Open(t, bus)
	net := p2p.NewDummyNet()
	pool := txpool.NewTransactionPool(goprocess.Background(), &txpool.Config{}, net, c, env.Validator, bus)
	s := NewServer(goprocess.Background(), &Config{Address: "127.0.0.1"}, c, pool, net, fakeReporter{})
	return s, env
}

func codeOf(err error) codes.Code {
	return status.Code(err)
}

func TestQueryBlocks(t *testing.T) {
	s, env := newTestServer(t)
	env.Extend(t, s.GetChain(), 3, nil)
	q := &queryServer{server: s}
	ctx := context.Background()

	head, err := q.Head(ctx, &rpcpb.HeadRequest{})
	ensure.Nil(t, err)
	_, hash := s.GetChain().Head()
	ensure.DeepEqual(t, head.Height, uint64(3))
	ensure.DeepEqual(t, head.Hash, hash.String())

	resp, err := q.GetBlock(ctx, &rpcpb.GetBlockRequest{Height: 2})
	ensure.Nil(t, err)
	block := new(types.Block)
	ensure.Nil(t, block.Unmarshal(resp.Block))
	ensure.DeepEqual(t, block.Height(), uint64(2))

	byHash, err := q.GetBlock(ctx, &rpcpb.GetBlockRequest{Hash: block.Hash().String()})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, byHash.Block, resp.Block)

	_, err = q.GetBlock(ctx, &rpcpb.GetBlockRequest{Height: 9})
	ensure.DeepEqual(t, codeOf(err), codes.NotFound)
	_, err = q.GetBlock(ctx, &rpcpb.GetBlockRequest{Hash: "zz"})
	ensure.DeepEqual(t, codeOf(err), codes.InvalidArgument)

	blocks, err := q.GetBlocks(ctx, &rpcpb.GetBlocksRequest{Start: 2, End: 10})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(blocks.Blocks), 2)
	_, err = q.GetBlocks(ctx, &rpcpb.GetBlocksRequest{Start: 3, End: 1})
	ensure.DeepEqual(t, codeOf(err), codes.InvalidArgument)
}

func TestQuerySubmitAndStatus(t *testing.T) {
	s, env := newTestServer(t)
	q := &queryServer{server: s}
	ctx := context.Background()
	alice, bob := env.Funded[0], env.Funded[1]

	tx := alice.Transfer(bob.Addr, 10, 1, 1)
	data, err := tx.Marshal()
	ensure.Nil(t, err)
	submitted, err := q.SubmitTransaction(ctx, &rpcpb.SubmitTransactionRequest{Tx: data})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, submitted.Code, int32(0))
	ensure.DeepEqual(t, submitted.Hash, tx.Hash().String())

	size, err := q.MempoolSize(ctx, &rpcpb.MempoolSizeRequest{})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, size.Size, uint32(1))

	st, err := q.GetTransactionStatus(ctx, &rpcpb.GetTransactionStatusRequest{Hash: tx.Hash().String()})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, st.State, "Pending")

	forged := alice.Transfer(bob.Addr, 10, 1, 2)
	forged.Fee = 3
	data, err = forged.Marshal()
	ensure.Nil(t, err)
	rejected, err := q.SubmitTransaction(ctx, &rpcpb.SubmitTransactionRequest{Tx: data})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, rejected.Code, int32(1))
	ensure.DeepEqual(t, rejected.Reason, "ProofInvalid")

	_, err = q.SubmitTransaction(ctx, &rpcpb.SubmitTransactionRequest{Tx: []byte{0x0a, 0xff}})
	ensure.DeepEqual(t, codeOf(err), codes.InvalidArgument)

	block := env.NextBlock(t, s.GetChain(), tx)
	ensure.Nil(t, s.GetChain().ApplyAndCommit(ctx, block))
	st, err = q.GetTransactionStatus(ctx, &rpcpb.GetTransactionStatusRequest{Hash: tx.Hash().String()})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, st.State, "Committed")
	ensure.DeepEqual(t, st.Height, uint64(1))
	ensure.DeepEqual(t, st.Index, uint32(0))

	unknown := bob.Noop(1, 1)
	st, err = q.GetTransactionStatus(ctx, &rpcpb.GetTransactionStatusRequest{Hash: unknown.Hash().String()})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, st.State, "Unknown")
}

func TestNodeInfo(t *testing.T) {
	s, _ := newTestServer(t)
	c := &ctlserver{server: s}
	info, err := c.GetNodeInfo(context.Background(), &rpcpb.NodeInfoRequest{})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, info.Id, s.GetNet().ID().Pretty())
	ensure.DeepEqual(t, info.SyncStatus, "Synced")
	ensure.DeepEqual(t, info.ConsensusState, "Voting")
	ensure.DeepEqual(t, info.Round, uint32(2))
	ensure.DeepEqual(t, len(info.Peers), 0)
}
