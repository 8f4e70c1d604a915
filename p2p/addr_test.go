// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package p2p

import (
	"testing"
	"time"

	"github.com/facebookgo/ensure"
	peer "github.com/libp2p/go-libp2p-peer"
)

func TestAddrBookBackoff(t *testing.T) {
	ab := newAddrBook(time.Second, 10*time.Second)
	ab.add("a", "")
	now := time.Now()
	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, ab.failed("a", now))
	}
	ensure.DeepEqual(t, got, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		10 * time.Second, 10 * time.Second,
	})
	ensure.DeepEqual(t, ab.failures("a"), 6)

	ab.succeeded("a", "pid")
	ensure.DeepEqual(t, ab.failures("a"), 0)
}

func TestAddrBookCandidates(t *testing.T) {
	ab := newAddrBook(time.Second, time.Minute)
	for _, addr := range []string{"c", "a", "b"} {
		ab.add(addr, "")
	}
	now := time.Now()
	ensure.DeepEqual(t, ab.candidates(now, nil), []string{"a", "b", "c"})

	// a failing address waits out its backoff and then dials last
	ab.failed("a", now)
	ensure.DeepEqual(t, ab.candidates(now, nil), []string{"b", "c"})
	ensure.DeepEqual(t, ab.candidates(now.Add(2*time.Second), nil), []string{"b", "c", "a"})

	skip := func(addr string, pid peer.ID) bool { return addr == "b" }
	ensure.DeepEqual(t, ab.candidates(now.Add(2*time.Second), skip), []string{"c", "a"})
}

func TestAddrBookKeepsFailingAddrs(t *testing.T) {
	ab := newAddrBook(time.Millisecond, time.Millisecond)
	ab.add("x", "")
	now := time.Now()
	for i := 0; i < 100; i++ {
		ab.failed("x", now)
	}
	ensure.DeepEqual(t, ab.candidates(now.Add(time.Second), nil), []string{"x"})
	ensure.DeepEqual(t, ab.failed("missing", now), time.Duration(0))
}
