// Package notifier fans file events out to live connections grouped in
// rooms. A room is a project ID; a connection may sit in several rooms.
//
// Every subscriber owns a bounded queue drained by its own goroutine, so a
// slow connection only ever delays itself. When its queue is full the event
// is dropped for that subscriber and the drop is logged.
package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// DefaultQueueSize is the per-subscriber buffer used when none is configured.
const DefaultQueueSize = 64

var ErrUnregistered = errors.New("subscriber is unregistered")

// Conn is the outbound side of a live connection.
type Conn interface {
	Send(ev models.Event) error
}

type Subscriber struct {
	id    int64
	conn  Conn
	queue chan models.Event
	done  chan struct{}

	// guarded by Hub.mu
	rooms  map[string]struct{}
	closed bool
}

// ID is a process-unique identifier, useful in logs.
func (s *Subscriber) ID() int64 { return s.id }

// Done is closed once the drain goroutine has exited.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[*Subscriber]struct{}
	queueSize int
	seq       atomic.Int64
	log       logging.Logger
}

func NewHub(queueSize int, log logging.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		rooms:     make(map[string]map[*Subscriber]struct{}),
		queueSize: queueSize,
		log:       log.With("module", "notifier"),
	}
}

// Register starts delivery to conn. The caller must Unregister it when the
// connection ends.
func (h *Hub) Register(conn Conn) *Subscriber {
	s := &Subscriber{
		id:    h.seq.Add(1),
		conn:  conn,
		queue: make(chan models.Event, h.queueSize),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
	go h.drain(s)
	return s
}

func (h *Hub) drain(s *Subscriber) {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.conn.Send(ev); err != nil {
			h.log.Warn(context.Background(), "event delivery failed",
				"subscriber", s.id, "event", ev.Type, "path", ev.Path, "error", err)
		}
	}
}

func (h *Hub) Join(s *Subscriber, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return ErrUnregistered
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Subscriber]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.rooms[room] = struct{}{}
	return nil
}

// Leave is a no-op for rooms the subscriber is not in.
func (h *Hub) Leave(s *Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, room)
}

func (h *Hub) leaveLocked(s *Subscriber, room string) {
	delete(s.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Unregister removes the subscriber from every room and stops its drain
// goroutine after the queued events are flushed. Safe to call twice.
func (h *Hub) Unregister(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	for room := range s.rooms {
		h.leaveLocked(s, room)
	}
	s.closed = true
	close(s.queue)
}

// Publish hands ev to every subscriber in room without blocking.
func (h *Hub) Publish(room string, ev models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.rooms[room] {
		select {
		case s.queue <- ev:
		default:
			h.log.Warn(context.Background(), "subscriber queue full, event dropped",
				"subscriber", s.id, "room", room, "event", ev.Type, "path", ev.Path)
		}
	}
}

// Members returns the number of subscribers in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
