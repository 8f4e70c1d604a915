// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eventbus

const (
	// TopicConnEvent carries (peer.ID, BusEvent) for peer scoring.
	TopicConnEvent = "p2p:connevent"

	// TopicChainUpdate carries *chain.UpdateMsg after every commit, by
	// consensus or sync.
	TopicChainUpdate = "chain:update"

	// TopicConsensusConflict carries *bft.ConflictEvidence when two
	// certificates exist for one height.
	TopicConsensusConflict = "consensus:conflict"

	// TopicSyncStall carries the stall count when sync made no progress
	// after max retries.
	TopicSyncStall = "sync:stall"

	// TopicNodeFatal carries the error that stopped a component.
	TopicNodeFatal = "node:fatal"
)
