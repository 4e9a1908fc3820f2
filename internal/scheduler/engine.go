package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrInvalidKind        = errors.New("scheduler: invalid event kind")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type EventKind string

const (
	// EventCheck runs a full detection cycle.
	EventCheck   EventKind = "check"
	EventMorning EventKind = "morning"
	EventEvening EventKind = "evening"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventCheck, EventMorning, EventEvening:
		return true
	default:
		return false
	}
}

type Event struct {
	ID        string
	Kind      EventKind
	TriggerAt time.Time
}

// queueItem orders events by trigger time, then by booking order.
type queueItem struct {
	event Event
	seq   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i].event.TriggerAt, pq[j].event.TriggerAt
	if a.Equal(b) {
		return pq[i].seq < pq[j].seq
	}
	return a.Before(b)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine delivers scheduled check and reminder events on C at their trigger
// time. Delivery never blocks; events the consumer cannot take are counted
// as dropped.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if !ev.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, ev.Kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.seq++
	item := queueItem{event: ev, seq: e.seq}
	if i := e.indexLocked(ev.ID); i >= 0 {
		e.queue[i] = item
		heap.Fix(&e.queue, i)
	} else {
		heap.Push(&e.queue, item)
	}
	e.signalWakeup()
	return nil
}

// indexLocked finds a pending event by ID. Empty IDs never match.
func (e *Engine) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range e.queue {
		if item.event.ID == id {
			return i
		}
	}
	return -1
}

// CancelKind removes every pending event of kind and reports how many were
// removed.
func (e *Engine) CancelKind(kind EventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.queue[:0]
	removed := 0
	for _, item := range e.queue {
		if item.event.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	e.queue = kept
	heap.Init(&e.queue)
	if removed > 0 {
		e.signalWakeup()
	}
	return removed
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Event{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Event, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
