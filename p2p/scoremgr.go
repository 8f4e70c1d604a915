// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"sync"
	"time"

	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/BOXFoundation/ledgerd/p2p/pscore"
	"github.com/jbenet/goprocess"
	peer "github.com/libp2p/go-libp2p-peer"
)

// ScoreCleanupInterval is how often decayed scores are re-applied.
const ScoreCleanupInterval = 30 * time.Second

// ScoreManager keeps a decaying score per peer from the events published
// on TopicConnEvent, and moves peers between Active, Penalized and Banned.
type ScoreManager struct {
	scores *sync.Map
	bus    eventbus.Bus
	router *Router
	proc   goprocess.Process
}

// NewScoreManager returns new ScoreManager.
func NewScoreManager(parent goprocess.Process, bus eventbus.Bus, router *Router) *ScoreManager {
	sm := &ScoreManager{
		scores: new(sync.Map),
		bus:    bus,
		router: router,
	}
	sm.bus.Subscribe(eventbus.TopicConnEvent, sm.record)
	sm.run(parent)
	return sm
}

func (sm *ScoreManager) run(parent goprocess.Process) {
	sm.proc = parent.Go(func(p goprocess.Process) {
		ticker := time.NewTicker(ScoreCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sm.refresh(time.Now())
			case <-p.Closing():
				sm.bus.Unsubscribe(eventbus.TopicConnEvent, sm.record)
				logger.Info("Quit score manager loop.")
				return
			}
		}
	})
}

func (sm *ScoreManager) scoreOf(pid peer.ID) *pscore.DynamicPeerScore {
	s, _ := sm.scores.LoadOrStore(pid, pscore.NewDynamicPeerScore(pid))
	return s.(*pscore.DynamicPeerScore)
}

// Score returns the current score of pid.
func (sm *ScoreManager) Score(pid peer.ID) int64 {
	return sm.scoreOf(pid).Score(time.Now())
}

func (sm *ScoreManager) record(pid peer.ID, event eventbus.BusEvent) {
	score := sm.scoreOf(pid).Record(event, time.Now())
	sm.apply(pid, score)
}

// refresh lets penalized peers recover as their punishment decays.
func (sm *ScoreManager) refresh(t time.Time) {
	sm.scores.Range(func(k, v interface{}) bool {
		sm.apply(k.(peer.ID), v.(*pscore.DynamicPeerScore).Score(t))
		return true
	})
}

func (sm *ScoreManager) apply(pid peer.ID, score int64) {
	sm.router.SetScore(pid, score)
	switch {
	case score < pscore.BanThreshold:
		logger.Warnf("Peer %s score %d below ban threshold", pid.Pretty(), score)
		sm.router.Ban(pid)
		sm.scores.Delete(pid)
	case score < pscore.PenalizeThreshold:
		sm.router.Penalize(pid)
	default:
		sm.router.Restore(pid)
	}
}
