// Package eventbus implements the per-execution hot multicast with
// bounded replay described in spec §4.5: one producer (the executor)
// fans ExecutionEvents out to many consumers (HTTP streamers), with a
// bounded replay window for late subscribers and a bounded live
// buffer per subscriber.
package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/architect-platform/architect-engine/internal/domain"
)

// Bus holds one stream per execution id.
type Bus struct {
	mu      sync.Mutex
	streams map[string]*stream

	replaySize     int
	subscriberSize int
	logger         hclog.Logger
}

// New creates a Bus bounded by the given replay and subscriber buffer
// sizes (spec §4.5 "Bounds", default 64/64).
func New(replaySize, subscriberSize int, logger hclog.Logger) *Bus {
	if replaySize <= 0 {
		replaySize = 64
	}
	if subscriberSize <= 0 {
		subscriberSize = 64
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Bus{
		streams:        make(map[string]*stream),
		replaySize:     replaySize,
		subscriberSize: subscriberSize,
		logger:         logger,
	}
}

type subscriber struct {
	id      uint64
	ch      chan domain.ExecutionEvent
	overrun int32
}

type stream struct {
	mu          sync.Mutex
	buffer      []domain.ExecutionEvent
	subscribers map[uint64]*subscriber
	nextSubID   uint64
	seq         uint64
	closed      bool
}

// isOverallTerminal reports whether evt is the single terminal event
// for the whole execution, as opposed to a per-task terminal. Overall
// events carry no TaskID (spec §3 Execution vs ExecutionEvent).
func isOverallTerminal(evt domain.ExecutionEvent) bool {
	if evt.TaskID != "" {
		return false
	}
	switch evt.Kind {
	case domain.EventCompleted, domain.EventFailed, domain.EventSkipped:
		return true
	default:
		return false
	}
}

func (b *Bus) streamFor(executionID string) *stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.streams[executionID]
	if !ok {
		s = &stream{subscribers: make(map[uint64]*subscriber)}
		b.streams[executionID] = s
	}
	return s
}

// Emit queues event for every current subscriber and buffers it for
// late subscribers, up to the replay window. Non-blocking: a
// subscriber whose buffer is full is disconnected rather than stalling
// the producer.
func (b *Bus) Emit(executionID string, evt domain.ExecutionEvent) {
	s := b.streamFor(executionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	evt.Sequence = s.seq
	evt.ExecutionID = executionID

	s.buffer = append(s.buffer, evt)
	if len(s.buffer) > b.replaySize {
		s.buffer = s.buffer[len(s.buffer)-b.replaySize:]
	}

	for id, sub := range s.subscribers {
		select {
		case sub.ch <- evt:
		default:
			atomic.StoreInt32(&sub.overrun, 1)
			close(sub.ch)
			delete(s.subscribers, id)
			b.logger.Warn("subscriber overrun", "execution_id", executionID, "subscriber_id", id)
		}
	}

	if isOverallTerminal(evt) {
		s.closed = true
		for id, sub := range s.subscribers {
			close(sub.ch)
			delete(s.subscribers, id)
		}
	}
}

// Close marks the execution's stream terminated: every current
// subscriber's channel is closed (they have already received the
// terminal event via Emit, called just before Close by convention),
// and every subsequent Subscribe receives the buffered replay only.
func (b *Bus) Close(executionID string) {
	s := b.streamFor(executionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, sub := range s.subscribers {
		close(sub.ch)
		delete(s.subscribers, id)
	}
}

// Subscription is a live handle to one subscriber's event channel.
type Subscription struct {
	bus         *Bus
	executionID string
	id          uint64
	ch          chan domain.ExecutionEvent
	overrun     *int32
}

// Events returns the channel to range over. It yields the buffered
// replay first, then live events, and closes when the execution's
// terminal event has been observed (or the subscriber overran its
// buffer — check Overrun() once the channel closes).
func (s *Subscription) Events() <-chan domain.ExecutionEvent { return s.ch }

// Overrun reports whether this subscription was disconnected for
// falling behind, rather than closing normally at the terminal event.
func (s *Subscription) Overrun() bool { return atomic.LoadInt32(s.overrun) == 1 }

// Cancel unregisters the subscription early (the consumer gave up).
// Safe to call after the channel has already closed.
func (s *Subscription) Cancel() {
	st := s.bus.streamFor(s.executionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if sub, ok := st.subscribers[s.id]; ok {
		delete(st.subscribers, s.id)
		close(sub.ch)
	}
}

// Subscribe replays the buffered history for executionID in emission
// order, then streams live events until the overall terminal event is
// observed (spec §4.5 "subscribe").
func (b *Bus) Subscribe(executionID string) *Subscription {
	s := b.streamFor(executionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.ExecutionEvent, b.replaySize+b.subscriberSize)
	for _, evt := range s.buffer {
		ch <- evt
	}

	sub := &subscriber{ch: ch}
	if s.closed {
		close(ch)
	} else {
		s.nextSubID++
		sub.id = s.nextSubID
		s.subscribers[sub.id] = sub
	}

	return &Subscription{bus: b, executionID: executionID, id: sub.id, ch: ch, overrun: &sub.overrun}
}

// Forget drops a finished execution's stream entirely, releasing its
// buffer. Call once the HTTP surface no longer needs to serve late
// subscribers for it (e.g. after a TTL, or never — bounded by the
// number of concurrently tracked executions in practice).
func (b *Bus) Forget(executionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.streams, executionID)
}
