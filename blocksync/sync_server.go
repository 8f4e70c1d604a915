// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blocksync

import (
	"time"

	corepb "github.com/BOXFoundation/ledgerd/core/pb"
	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p"
	"github.com/gogo/protobuf/proto"
	"github.com/jbenet/goprocess"
	peer "github.com/libp2p/go-libp2p-peer"
)

// serve answers peers and announces the local height. It keeps running
// after a halt so the node still serves reads.
func (sm *SyncManager) serve(p goprocess.Process) {
	logger.Info("Sync server started")
	ticker := time.NewTicker(sm.cfg.AnnounceInterval)
	defer ticker.Stop()
	sm.announce()
	for {
		select {
		case msg := <-sm.messageCh:
			if err := sm.handleSyncMessage(msg); err != nil {
				logger.Warnf("Failed to handle sync message[0x%X] from %s: %v",
					msg.Code(), msg.From().Pretty(), err)
			}
		case <-sm.commitCh:
			sm.announce()
		case <-ticker.C:
			sm.announce()
		case <-p.Closing():
			for _, n := range sm.notifiees {
				sm.net.UnSubscribe(n)
			}
			logger.Info("Quit sync server")
			return
		}
	}
}

func (sm *SyncManager) handleSyncMessage(msg p2p.Message) error {
	switch msg.Code() {
	case p2p.HeightAnnouncement:
		return sm.onHeightAnnouncement(msg)
	case p2p.BlockRequest:
		return sm.onBlockRequest(msg)
	case p2p.BlockResponse:
		// only the pending fetch wants it; drop the rest
		select {
		case sm.responseCh <- msg:
		default:
		}
	}
	return nil
}

func (sm *SyncManager) onHeightAnnouncement(msg p2p.Message) error {
	ann := new(corepb.HeightAnnouncement)
	if err := proto.Unmarshal(msg.Body(), ann); err != nil {
		sm.report(msg.From(), eventbus.ProtocolViolationEvent)
		return err
	}
	local, _ := sm.chain.Head()
	switch {
	case ann.Height > local+sm.cfg.GapThreshold:
		sm.trigger()
	case ann.Height < local:
		return sm.announceTo(msg.From())
	}
	return nil
}

func (sm *SyncManager) onBlockRequest(msg p2p.Message) error {
	req := new(corepb.BlockRequest)
	if err := proto.Unmarshal(msg.Body(), req); err != nil || req.Start == 0 || req.End < req.Start {
		sm.report(msg.From(), eventbus.ProtocolViolationEvent)
		if err != nil {
			return err
		}
		return ErrRangeUnavailable
	}
	blocks, err := sm.chain.GetBlocks(req.Start, req.End)
	if err != nil {
		return err
	}
	resp, err := newBlockResponse(req.Start, blocks)
	if err != nil {
		return err
	}
	metricsServedCounter.Inc(int64(len(blocks)))
	logger.Debugf("send %d blocks from %d to peer %s", len(blocks), req.Start, msg.From().Pretty())
	return sm.net.Send(msg.From(), p2p.BlockResponse, p2p.ProtoBody(resp))
}

func (sm *SyncManager) announcement() *corepb.HeightAnnouncement {
	height, hash := sm.chain.Head()
	return &corepb.HeightAnnouncement{Height: height, Hash: hash[:]}
}

// announce broadcasts the local height. Peers below it answer with theirs,
// so it doubles as a poll.
func (sm *SyncManager) announce() {
	if err := sm.net.Broadcast(p2p.HeightAnnouncement, p2p.ProtoBody(sm.announcement()), nil); err != nil {
		logger.Debugf("Failed to announce height: %v", err)
	}
}

func (sm *SyncManager) announceTo(pid peer.ID) error {
	return sm.net.Send(pid, p2p.HeightAnnouncement, p2p.ProtoBody(sm.announcement()))
}
