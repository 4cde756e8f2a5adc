// Package goalstore persists the whole goal collection as one JSON array
// under a single storage key. Every mutation rewrites the full array.
package goalstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/ident"
	"github.com/starford/metas/internal/metrics"
	"github.com/starford/metas/internal/models"
	"github.com/starford/metas/internal/storage"
)

// DefaultKey is the storage key the collection lives under.
const DefaultKey = "gestorMetasApp"

// Store is the persistence adapter for goals.
//
// The mutex serializes read-modify-write cycles within this process only.
// Two processes sharing the same backend still race and the last write
// wins.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	key      string
	ids      *ident.Generator
	logger   *slog.Logger

	sumMu   sync.RWMutex
	lastSum string
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDs sets the generator used for goal ids and creation times.
func WithIDs(ids *ident.Generator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store over provider.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		key:      DefaultKey,
		ids:      ident.New(nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key in use.
func (s *Store) Key() string { return s.key }

// IDs returns the generator shared with callers that mint checklist ids.
func (s *Store) IDs() *ident.Generator { return s.ids }

// GetAll returns the stored collection in stored order. Missing or
// unreadable data yields an empty collection; the failure is logged and
// never returned.
func (s *Store) GetAll() []models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetByID returns the goal with id.
func (s *Store) GetByID(id int64) (models.Goal, bool) {
	for _, g := range s.GetAll() {
		if g.ID == id {
			return g, true
		}
	}
	return models.Goal{}, false
}

// Create assigns an id and creation time to f, prepends the new goal and
// writes the collection back.
func (s *Store) Create(f models.Fields) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	g := models.Goal{
		ID:        s.ids.Next(),
		CreatedAt: s.ids.Now().UTC().Truncate(time.Millisecond),
	}
	g.Apply(f)

	all = append([]models.Goal{g}, all...)
	if err := s.save(all); err != nil {
		return models.Goal{}, err
	}
	return all[0], nil
}

// Update replaces the stored goal with the same id. An unknown id is
// logged and reported as apperr.ErrNotFound without writing anything.
func (s *Store) Update(g models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	for i := range all {
		if all[i].ID == g.ID {
			all[i] = g
			return s.save(all)
		}
	}
	s.logger.Warn("goal not found for update", slog.Int64("id", g.ID))
	return fmt.Errorf("goalstore: update %d: %w", g.ID, apperr.ErrNotFound)
}

// Modify applies fn to a copy of the goal with id and writes the result
// back, all under the store lock. An unknown id returns apperr.ErrNotFound
// and an error from fn aborts the write; neither touches storage.
func (s *Store) Modify(id int64, fn func(*models.Goal) error) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		g := all[i].Clone()
		if err := fn(&g); err != nil {
			return models.Goal{}, err
		}
		g.ID = id
		if g.Checklist == nil {
			g.Checklist = []models.ChecklistItem{}
		}
		all[i] = g
		if err := s.save(all); err != nil {
			return models.Goal{}, err
		}
		return g, nil
	}
	s.logger.Warn("goal not found for update", slog.Int64("id", id))
	return models.Goal{}, fmt.Errorf("goalstore: modify %d: %w", id, apperr.ErrNotFound)
}

// DeleteByID removes the goal with id. Deleting an unknown id is a no-op.
func (s *Store) DeleteByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load()
	kept := make([]models.Goal, 0, len(all))
	for _, g := range all {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return s.save(kept)
}

// Checksum returns the SHA-256 of the bytes most recently written by this
// Store, or "" before the first write.
func (s *Store) Checksum() string {
	s.sumMu.RLock()
	defer s.sumMu.RUnlock()
	return s.lastSum
}

// Checksum returns the hex SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Decode parses a stored collection.
func Decode(data []byte) ([]models.Goal, error) {
	var all []models.Goal
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Store) load() []models.Goal {
	data, err := s.provider.Read(s.key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no stored goals yet", slog.String("key", s.key))
			return []models.Goal{}
		}
		metrics.RecordStorageReadFailure()
		s.logger.Error("failed to read goals", slog.String("key", s.key), slog.String("error", err.Error()))
		return []models.Goal{}
	}
	all, err := Decode(data)
	if err != nil {
		metrics.RecordStorageReadFailure()
		s.logger.Error("failed to decode goals", slog.String("key", s.key), slog.String("error", err.Error()))
		return []models.Goal{}
	}
	if all == nil {
		all = []models.Goal{}
	}
	return all
}

func (s *Store) save(all []models.Goal) error {
	for i := range all {
		if all[i].Checklist == nil {
			all[i].Checklist = []models.ChecklistItem{}
		}
	}
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("goalstore: encode: %w", err)
	}
	if err := s.provider.Write(s.key, data); err != nil {
		return fmt.Errorf("goalstore: write: %w", err)
	}
	s.sumMu.Lock()
	s.lastSum = Checksum(data)
	s.sumMu.Unlock()
	return nil
}
