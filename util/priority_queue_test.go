// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"math/rand"
	"testing"

	"github.com/facebookgo/ensure"
)

const n = 1000

func TestNewPriorityQueue(t *testing.T) {
	pq := NewPriorityQueue(func(a, b interface{}) bool {
		return a.(int) < b.(int)
	})
	r := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		pq.PushItem(r.Intn(n))
	}
	ensure.DeepEqual(t, pq.Len(), n)

	previous := -1
	count := 0
	for pq.Len() > 0 {
		top := pq.Peek().(int)
		item := pq.PopItem().(int)
		ensure.DeepEqual(t, item, top)
		ensure.True(t, previous <= item)
		previous = item
		count++
	}
	ensure.DeepEqual(t, count, n)
	ensure.True(t, pq.Peek() == nil)
}
