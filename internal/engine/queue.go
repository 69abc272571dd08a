package engine

import (
	"container/heap"

	"github.com/san-kum/spikesim/internal/neuro"
)

// eventQueue orders pending spike deliveries by scheduled time, with
// an insertion sequence number breaking ties so that equal-time events
// deliver in the order they were produced.
type eventQueue struct {
	h     eventHeap
	seq   uint64
	limit int
}

// newEventQueue builds a queue bounded to limit pending events; zero
// means unbounded.
func newEventQueue(limit int) *eventQueue {
	return &eventQueue{limit: limit}
}

func (q *eventQueue) push(target neuro.NeuronID, at, magnitude float64) error {
	if q.limit > 0 && len(q.h) >= q.limit {
		return neuro.ErrQueueCapacity
	}
	heap.Push(&q.h, neuro.SpikeEvent{
		Target:    target,
		Time:      at,
		Magnitude: magnitude,
		Seq:       q.seq,
	})
	q.seq++
	return nil
}

// popDue appends every event scheduled at or before now to out and
// returns it. The epsilon keeps deliveries scheduled at an exact tick
// boundary from slipping a tick on float drift.
func (q *eventQueue) popDue(now float64, out []neuro.SpikeEvent) []neuro.SpikeEvent {
	for len(q.h) > 0 && q.h[0].Time <= now+timeEpsilon {
		out = append(out, heap.Pop(&q.h).(neuro.SpikeEvent))
	}
	return out
}

func (q *eventQueue) len() int { return len(q.h) }

type eventHeap []neuro.SpikeEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(neuro.SpikeEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}
