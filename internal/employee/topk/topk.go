// Package topk selects the k largest items of a sequence with a bounded
// min-heap: O(n log k) time, O(k) extra space.
package topk

import (
	"container/heap"
	"slices"
)

// Select returns the k items with the largest key, ordered by key
// descending. Fewer than k items are all returned. Items with equal keys at
// the k-th boundary are kept or evicted in heap order: deterministic for a
// given input, but not tied to input position.
func Select[T any](items []T, k int, key func(T) int) []T {
	if k <= 0 || len(items) == 0 {
		return []T{}
	}

	h := &minHeap[T]{key: key, items: make([]T, 0, min(k, len(items))+1)}
	for _, item := range items {
		heap.Push(h, item)
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	out := make([]T, 0, h.Len())
	for h.Len() > 0 {
		out = append(out, heap.Pop(h).(T))
	}
	slices.Reverse(out)
	return out
}

type minHeap[T any] struct {
	items []T
	key   func(T) int
}

func (h *minHeap[T]) Len() int           { return len(h.items) }
func (h *minHeap[T]) Less(i, j int) bool { return h.key(h.items[i]) < h.key(h.items[j]) }
func (h *minHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *minHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *minHeap[T]) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	return item
}
