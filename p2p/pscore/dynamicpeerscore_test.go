// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pscore

import (
	"testing"
	"time"

	"github.com/BOXFoundation/ledgerd/ledgerd/eventbus"
	"github.com/facebookgo/ensure"
)

func TestScorePunishAndDecay(t *testing.T) {
	s := NewDynamicPeerScore("peer")
	now := time.Now()
	ensure.DeepEqual(t, s.Score(now), int64(BaseScore))

	ensure.DeepEqual(t, s.Record(eventbus.BadBlockEvent, now), int64(BaseScore-PunishBadBlock))
	ensure.True(t, s.Score(now) < PenalizeThreshold)

	// one half life later the punishment is about halved
	later := s.Score(now.Add(time.Minute))
	ensure.True(t, later > PenalizeThreshold && later < 80)

	// past its lifetime the punishment is gone
	ensure.DeepEqual(t, s.Score(now.Add(time.Hour)), int64(BaseScore))
}

func TestScoreSameInstantEventsAccumulate(t *testing.T) {
	s := NewDynamicPeerScore("peer")
	now := time.Now()
	s.Record(eventbus.BadBlockEvent, now)
	ensure.True(t, s.Record(eventbus.BadBlockEvent, now) < BanThreshold)
}

func TestScoreAward(t *testing.T) {
	s := NewDynamicPeerScore("peer")
	now := time.Now()
	ensure.DeepEqual(t, s.Record(eventbus.HeartBeatEvent, now), int64(BaseScore+AwardHeartBeat))
	ensure.DeepEqual(t, s.Record(eventbus.SyncMsgEvent, now), int64(BaseScore+AwardHeartBeat+AwardSyncMsg))
	ensure.DeepEqual(t, s.Record(eventbus.PeerConnEvent, now), int64(BaseScore+AwardHeartBeat+AwardSyncMsg))

	for i := 0; i < 100; i++ {
		s.Record(eventbus.SyncMsgEvent, now)
	}
	ensure.DeepEqual(t, s.Score(now), int64(BaseScore+awardLimit))
}

func TestScoreUnsteadyConnection(t *testing.T) {
	s := NewDynamicPeerScore("peer")
	now := time.Now()
	s.Record(eventbus.HeartBeatEvent, now)
	ensure.DeepEqual(t, s.Record(eventbus.PeerDisconnEvent, now), int64(BaseScore))
	for i := 1; i < disconnMinTime; i++ {
		s.Record(eventbus.PeerDisconnEvent, now.Add(time.Duration(i)*time.Second))
	}
	ensure.True(t, s.Score(now.Add(disconnMinTime*time.Second)) <= BanThreshold+10)
}
