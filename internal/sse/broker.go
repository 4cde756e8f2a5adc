// Package sse pushes goal changes to connected browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeGoalCreated      = "goal.created"
	TypeGoalUpdated      = "goal.updated"
	TypeGoalDeleted      = "goal.deleted"
	TypeDashboardUpdated = "dashboard.updated"
	TypeGoalsChanged     = "goals.changed"
)

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type goalEvent struct {
	kind string
	id   int64
}

// Broker fans events out to SSE clients.
//
// One goroutine owns the client set and the dashboard throttle timestamp;
// every public method talks to it over channels.
type Broker struct {
	dashboardMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	goalCh        chan goalEvent
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits dashboard.updated at most once per
// throttle. A non-positive throttle defaults to two seconds.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		dashboardMin:  throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		goalCh:        make(chan goalEvent, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.loop()
	return b
}

func encode(e Event) ([]byte, bool) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), true
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastDashboard time.Time

	send := func(e Event) {
		msg, ok := encode(e)
		if !ok {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// slow client, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case e := <-b.publishCh:
			send(e)

		case ge := <-b.goalCh:
			typ, ok := goalEventType(ge.kind)
			if !ok {
				continue
			}
			send(Event{Type: typ, Data: map[string]int64{"id": ge.id}})

			if now := time.Now(); now.Sub(lastDashboard) >= b.dashboardMin {
				lastDashboard = now
				send(Event{Type: TypeDashboardUpdated, Data: struct{}{}})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

func goalEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeGoalCreated, true
	case "updated":
		return TypeGoalUpdated, true
	case "deleted":
		return TypeGoalDeleted, true
	}
	return "", false
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts e as is.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- e:
	case <-b.stopped:
	}
}

// PublishGoalEvent broadcasts goal.<kind> for the goal with id, followed by
// a throttled dashboard.updated. Unknown kinds are ignored.
func (b *Broker) PublishGoalEvent(kind string, id int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.goalCh <- goalEvent{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// PublishExternalChange tells clients the stored collection was rewritten
// by another writer and should be fetched again.
func (b *Broker) PublishExternalChange(checksum string) {
	b.Publish(Event{Type: TypeGoalsChanged, Data: map[string]string{"checksum": checksum}})
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
