package tree

import (
	"container/heap"
	"sort"
)

// HeapItem is a scored entry. Seq is the insertion position and breaks score
// ties: among equal scores the earlier item ranks higher.
type HeapItem struct {
	Score float64
	Seq   int
	Value interface{}
	Index int
}

func ranksBelow(a, b *HeapItem) bool {
	if a.Score == b.Score {
		return a.Seq > b.Seq
	}
	return a.Score < b.Score
}

// MinHeap keeps the lowest-ranked item at the top.
type MinHeap []*HeapItem

func (mh MinHeap) Len() int {
	return len(mh)
}

func (mh MinHeap) Less(i, j int) bool {
	return ranksBelow(mh[i], mh[j])
}

func (mh MinHeap) Swap(i, j int) {
	mh[i], mh[j] = mh[j], mh[i]
	mh[i].Index = i
	mh[j].Index = j
}

func (mh *MinHeap) Push(x interface{}) {
	n := len(*mh)
	item := x.(*HeapItem)
	item.Index = n
	*mh = append(*mh, item)
}

func (mh *MinHeap) Pop() interface{} {
	old := *mh
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.Index = -1
	*mh = old[0 : n-1]
	return item
}

func (mh *MinHeap) Top() *HeapItem {
	return (*mh)[0]
}

func NewMinHeap(initSize int) *MinHeap {
	mh := make(MinHeap, 0, initSize)
	heap.Init(&mh)
	return &mh
}

// TopN retains the n highest-ranked items offered to it.
type TopN struct {
	limit int
	seq   int
	items *MinHeap
}

func NewTopN(n int) *TopN {
	return &TopN{limit: n, items: NewMinHeap(n + 1)}
}

func (top *TopN) Offer(score float64, value interface{}) {
	item := &HeapItem{Score: score, Seq: top.seq, Value: value}
	top.seq++
	if top.items.Len() < top.limit {
		heap.Push(top.items, item)
		return
	}
	if top.limit == 0 || !ranksBelow(top.items.Top(), item) {
		return
	}
	(*top.items)[0] = item
	item.Index = 0
	heap.Fix(top.items, 0)
}

func (top *TopN) Len() int {
	return top.items.Len()
}

// Sorted returns the retained items from highest to lowest rank.
func (top *TopN) Sorted() []*HeapItem {
	out := make([]*HeapItem, top.items.Len())
	copy(out, *top.items)
	sort.Slice(out, func(i, j int) bool {
		return ranksBelow(out[j], out[i])
	})
	return out
}
