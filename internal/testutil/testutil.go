// Package testutil provides shared test helpers for building goal stores
// and fake collaborators.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/starford/metas/internal/goalstore"
	"github.com/starford/metas/internal/ident"
	"github.com/starford/metas/internal/storage"
)

// Epoch is the start of the clock used by test stores.
var Epoch = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

// Quiet is a logger that discards everything.
func Quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock returns a clock starting at Epoch that advances one millisecond
// per call.
func Clock() func() time.Time {
	var mu sync.Mutex
	cur := Epoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Millisecond)
		return cur
	}
}

// MemoryStore returns a goal store over a fresh in-memory provider.
func MemoryStore(t *testing.T) (*goalstore.Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return goalstore.New(mem, goalstore.WithIDs(ident.New(Clock())), goalstore.WithLogger(Quiet())), mem
}

// FSStore returns a goal store writing under a temporary directory, and the
// path of the file holding the collection.
func FSStore(t *testing.T) (*goalstore.Store, string) {
	t.Helper()
	fsys, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := goalstore.New(fsys, goalstore.WithLogger(Quiet()))
	file, err := fsys.Location(store.Key())
	if err != nil {
		t.Fatal(err)
	}
	return store, file
}

// Suggester is a canned suggest.Provider.
type Suggester struct {
	Steps []string
	Err   error

	mu    sync.Mutex
	calls int
}

func (s *Suggester) Suggest(context.Context, string, string) ([]string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Steps, s.Err
}

// Calls returns how many times Suggest ran.
func (s *Suggester) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
