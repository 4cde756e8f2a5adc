// Package ident hands out timestamp-derived identifiers.
package ident

import (
	"sync"
	"time"
)

// Generator returns millisecond timestamps as ids, bumped by one when the
// clock has not advanced so two calls never return the same value.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// New returns a Generator reading from now. A nil now uses time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns a fresh id.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Now exposes the generator's clock so ids and timestamps agree.
func (g *Generator) Now() time.Time {
	return g.now()
}
