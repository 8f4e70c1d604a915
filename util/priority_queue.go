// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"container/heap"
)

// LessFunc reports whether a should be popped before b.
type LessFunc func(a, b interface{}) bool

// PriorityQueue is a binary heap ordered by a LessFunc. It implements
// heap.Interface and is not safe for concurrent use.
type PriorityQueue struct {
	lessFunc LessFunc
	items    []interface{}
}

// NewPriorityQueue create a new PriorityQueue
func NewPriorityQueue(lessFunc LessFunc) *PriorityQueue {
	pq := &PriorityQueue{lessFunc: lessFunc}
	heap.Init(pq)
	return pq
}

// Len returns the length of items.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// Less implements heap.Interface.
func (pq *PriorityQueue) Less(i, j int) bool {
	return pq.lessFunc(pq.items[i], pq.items[j])
}

// Swap implements heap.Interface.
func (pq *PriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

// Push implements heap.Interface. Use PushItem to keep the heap ordered.
func (pq *PriorityQueue) Push(x interface{}) {
	pq.items = append(pq.items, x)
}

// Pop implements heap.Interface. Use PopItem to keep the heap ordered.
func (pq *PriorityQueue) Pop() interface{} {
	n := len(pq.items)
	item := pq.items[n-1]
	pq.items[n-1] = nil
	pq.items = pq.items[:n-1]
	return item
}

// PushItem adds x keeping heap order.
func (pq *PriorityQueue) PushItem(x interface{}) {
	heap.Push(pq, x)
}

// PopItem removes and returns the highest priority item.
func (pq *PriorityQueue) PopItem() interface{} {
	return heap.Pop(pq)
}

// Peek returns the highest priority item without removing it.
func (pq *PriorityQueue) Peek() interface{} {
	if len(pq.items) == 0 {
		return nil
	}
	return pq.items[0]
}
