// Implements the EventQueue, the scheduler's time-ordered pending set.

package sim

import (
	"container/heap"
	"fmt"
	"strings"
)

// eventHeap implements heap.Interface over Event.Less.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is a priority queue with deterministic ordering.
// Ordering: timestamp → process ID. Equal keys never depend on arrival order.
type EventQueue struct {
	events eventHeap
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// Schedule adds an event to the queue.
func (q *EventQueue) Schedule(e Event) {
	heap.Push(&q.events, e)
}

// PopNext removes and returns the earliest event.
func (q *EventQueue) PopNext() (Event, error) {
	if q.Len() == 0 {
		return Event{}, ErrEmptyQueuePop
	}
	return heap.Pop(&q.events).(Event), nil
}

// Peek returns the earliest event without removing it.
// The boolean is false when the queue is empty.
func (q *EventQueue) Peek() (Event, bool) {
	if q.Len() == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

func (q *EventQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range q.events {
		sb.WriteString(fmt.Sprintf("(%s)", e))
		if i < len(q.events)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
