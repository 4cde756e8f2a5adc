package sse

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// drain collects whatever is buffered on ch after a short settle delay.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsubscribe")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishExternalChange("abc")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: goals.changed\n") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"checksum":"abc"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishGoalEventThrottlesDashboard(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGoalEvent("created", 1)
	b.PublishGoalEvent("updated", 1)
	b.PublishGoalEvent("bogus", 1)

	var goal, dashboard int
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "event: "+TypeDashboardUpdated):
			dashboard++
		case strings.Contains(s, "event: goal."):
			goal++
			if !strings.Contains(s, `"id":1`) {
				t.Errorf("missing id in %q", s)
			}
		default:
			t.Errorf("unexpected message %q", s)
		}
	}
	if goal != 2 {
		t.Errorf("goal events = %d, want 2", goal)
	}
	if dashboard != 1 {
		t.Errorf("dashboard events = %d, want 1", dashboard)
	}
}

func TestDashboardFiresAgainAfterThrottle(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGoalEvent("created", 1)
	time.Sleep(60 * time.Millisecond)
	b.PublishGoalEvent("deleted", 1)

	dashboard := 0
	for _, s := range drain(ch) {
		if strings.Contains(s, TypeDashboardUpdated) {
			dashboard++
		}
	}
	if dashboard != 2 {
		t.Errorf("dashboard events = %d, want 2", dashboard)
	}
}

// syncRecorder guards the body so the test can read it while ServeHTTP
// is still writing.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishGoalEvent("updated", 7)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.body(); !strings.Contains(body, "event: goal.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered = %d, want %d", n, cap(ch))
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Close()
	b.Publish(Event{Type: TypeGoalsChanged})
	b.PublishGoalEvent("updated", 1)
	if late := b.Subscribe(); !isClosed(late) {
		t.Error("subscribe after close returned an open channel")
	}
}

func isClosed(ch chan []byte) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}

func TestEncode(t *testing.T) {
	msg, ok := encode(Event{Type: "x", Data: map[string]int{"a": 1}})
	if !ok || !bytes.Equal(msg, []byte("event: x\ndata: {\"a\":1}\n\n")) {
		t.Errorf("encode = %q, %v", msg, ok)
	}
	if _, ok := encode(Event{Type: "x", Data: make(chan int)}); ok {
		t.Error("unencodable data accepted")
	}
}
