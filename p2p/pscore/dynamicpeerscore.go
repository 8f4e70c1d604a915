// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pscore

import (
	"container/list"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	peer "github.com/libp2p/go-libp2p-peer"
)

const (
	// BaseScore indicates the default score of the peer.
	BaseScore = 100

	// PenalizeThreshold is the score under which a peer is Penalized.
	PenalizeThreshold = 60

	// BanThreshold is the score under which a peer is Banned.
	BanThreshold = 0

	// punishLimit indicates the upper limit of publishment.
	punishLimit = 1000

	// awardLimit indicates the upper limit of achievement.
	awardLimit = 200

	// disconnTimesPeriod indicates the period of the peer's disconn queue.
	disconnTimesPeriod = 30 * time.Second

	// disconnMinTime indicates the threshold of disconn time through disconnTimesPeriod.
	disconnMinTime = 5
)

// ScoreEvent is the weight of a scored behaviour.
type ScoreEvent int64

// punishments and awards
const (
	PunishConnTimeOut       ScoreEvent = 40
	PunishBadBlock          ScoreEvent = 60
	PunishBadTx             ScoreEvent = 30
	PunishProtocolViolation ScoreEvent = 50
	PunishRateLimit         ScoreEvent = 10
	PunishEquivocation      ScoreEvent = 100
	PunishNoHeartBeat       ScoreEvent = 90
	PunishConnUnsteadiness  ScoreEvent = 100
	AwardHeartBeat          ScoreEvent = 5
	AwardSyncMsg            ScoreEvent = 20
)

var (
	// PunishFactors contains factors of punishment.
	PunishFactors = newFactors(60, 1800, 64)
	// AchieveFactors contains factors of achievement.
	AchieveFactors = newFactors(600, 18000, 512)
)

type factors struct {
	// halflife is the time, in seconds, in which a part halves.
	halflife int
	// lambda is the decaying constant.
	lambda float64
	// lifetime is the age, in seconds, past which a part is dropped.
	lifetime int
	// precomputedFactor holds the decay factors of the first seconds.
	precomputedFactor []float64
}

func newFactors(halflife, lifetime, precomputedLen int) *factors {
	f := &factors{
		halflife:          halflife,
		lambda:            math.Ln2 / float64(halflife),
		lifetime:          lifetime,
		precomputedFactor: make([]float64, precomputedLen),
	}
	for i := range f.precomputedFactor {
		f.precomputedFactor[i] = math.Exp(-1.0 * float64(i) * f.lambda)
	}
	return f
}

// decayRate returns the decay rate after dt.
func (f *factors) decayRate(dt time.Duration) float64 {
	t := int64(dt / time.Second)
	if t < 0 {
		t = 0
	}
	if t < int64(len(f.precomputedFactor)) {
		return f.precomputedFactor[t]
	}
	return math.Exp(-1.0 * float64(t) * f.lambda)
}

func (f *factors) expired(dt time.Duration) bool {
	return int(dt/time.Second) > f.lifetime
}

// DynamicPeerScore is a peer score made of an award and a punishment part,
// both decaying exponentially towards zero.
type DynamicPeerScore struct {
	pid         peer.ID
	last        time.Time
	punishment  float64
	achievement float64
	disconns    *list.List
	mtx         sync.Mutex
}

// NewDynamicPeerScore returns new DynamicPeerScore.
func NewDynamicPeerScore(pid peer.ID) *DynamicPeerScore {
	return &DynamicPeerScore{pid: pid, disconns: list.New()}
}

// String returns the peer score as a human-readable string.
func (s *DynamicPeerScore) String() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return fmt.Sprintf("achievement %v + punishment %v at %v = %v as of now",
		s.achievement, s.punishment, s.last, s.score(time.Now()))
}

// Score returns the score at t.
func (s *DynamicPeerScore) Score(t time.Time) int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.score(t)
}

// Record applies the score change of event at t and returns the new score.
func (s *DynamicPeerScore) Record(event eventbus.BusEvent, t time.Time) int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	switch event {
	case eventbus.ConnTimeOutEvent:
		return s.update(0, PunishConnTimeOut, t)
	case eventbus.BadBlockEvent:
		return s.update(0, PunishBadBlock, t)
	case eventbus.BadTxEvent:
		return s.update(0, PunishBadTx, t)
	case eventbus.ProtocolViolationEvent:
		return s.update(0, PunishProtocolViolation, t)
	case eventbus.RateLimitEvent:
		return s.update(0, PunishRateLimit, t)
	case eventbus.EquivocationEvent:
		return s.update(0, PunishEquivocation, t)
	case eventbus.NoHeartBeatEvent:
		return s.update(0, PunishNoHeartBeat, t)
	case eventbus.HeartBeatEvent:
		return s.update(AwardHeartBeat, 0, t)
	case eventbus.SyncMsgEvent:
		return s.update(AwardSyncMsg, 0, t)
	case eventbus.PeerDisconnEvent:
		return s.disconnect(t)
	}
	return s.score(t)
}

// disconnect drops the achievement and punishes peers that keep dropping.
func (s *DynamicPeerScore) disconnect(t time.Time) int64 {
	s.disconns.PushBack(t)
	for e := s.disconns.Front(); e != nil; {
		next := e.Next()
		if t.Sub(e.Value.(time.Time)) > disconnTimesPeriod {
			s.disconns.Remove(e)
		}
		e = next
	}
	s.decay(t)
	s.achievement = 0
	if s.disconns.Len() >= disconnMinTime {
		s.punishment += float64(PunishConnUnsteadiness)
		s.clamp()
	}
	return s.score(t)
}

func (s *DynamicPeerScore) score(t time.Time) int64 {
	if s.last.IsZero() {
		return BaseScore
	}
	dt := t.Sub(s.last)
	a, p := s.achievement, s.punishment
	if AchieveFactors.expired(dt) {
		a = 0
	}
	if PunishFactors.expired(dt) {
		p = 0
	}
	return BaseScore + int64(a*AchieveFactors.decayRate(dt)) - int64(p*PunishFactors.decayRate(dt))
}

// decay folds the elapsed decay into both parts.
func (s *DynamicPeerScore) decay(t time.Time) {
	if !s.last.IsZero() {
		dt := t.Sub(s.last)
		if AchieveFactors.expired(dt) {
			s.achievement = 0
		}
		if PunishFactors.expired(dt) {
			s.punishment = 0
		}
		if dt > 0 {
			s.achievement *= AchieveFactors.decayRate(dt)
			s.punishment *= PunishFactors.decayRate(dt)
		}
	}
	if t.After(s.last) {
		s.last = t
	}
}

func (s *DynamicPeerScore) update(award, punish ScoreEvent, t time.Time) int64 {
	s.decay(t)
	s.achievement += float64(award)
	s.punishment += float64(punish)
	s.clamp()
	return s.score(t)
}

func (s *DynamicPeerScore) clamp() {
	if s.achievement > awardLimit {
		s.achievement = awardLimit
	}
	if s.punishment > punishLimit {
		s.punishment = punishLimit
	}
}
