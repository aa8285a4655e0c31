package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/uidump/internal/hierarchy"
)

// Dump is one loaded hierarchy. The tree is read-only once stored.
type Dump struct {
	ID          string    `json:"dump_id"`
	Filename    string    `json:"filename,omitempty"`
	Source      string    `json:"source"` // "upload" or "device"
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`

	Tree *hierarchy.Tree `json:"-"`
}

// Summary is a JSON-safe description of a dump.
type Summary struct {
	ID          string    `json:"dump_id"`
	Filename    string    `json:"filename,omitempty"`
	Source      string    `json:"source"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	Nodes       int       `json:"nodes"`
	Warnings    []string  `json:"warnings"`
}

// Summary returns the dump's metadata.
func (d *Dump) Summary() Summary {
	warnings := []string{}
	nodes := 0
	if d.Tree != nil {
		nodes = d.Tree.Len()
		warnings = append(warnings, d.Tree.Warnings...)
	}
	return Summary{
		ID:          d.ID,
		Filename:    d.Filename,
		Source:      d.Source,
		ContentHash: d.ContentHash,
		CreatedAt:   d.CreatedAt,
		Nodes:       nodes,
		Warnings:    warnings,
	}
}

// Store is a thread-safe in-memory dump registry with TTL eviction.
type Store struct {
	mu    sync.Mutex
	dumps map[string]*Dump
	ttl   time.Duration
}

func New(ttl time.Duration) *Store {
	return &Store{
		dumps: make(map[string]*Dump),
		ttl:   ttl,
	}
}

func (s *Store) Put(d *Dump) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dumps[d.ID] = d
}

func (s *Store) Get(id string) *Dump {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dumps[id]
}

// Delete removes a dump and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dumps[id]
	delete(s.dumps, id)
	return ok
}

// PutIfAbsentHash stores d unless a dump with the same content hash is
// already present. It returns the dump that ends up stored for that hash and
// whether it is d.
func (s *Store) PutIfAbsentHash(d *Dump) (*Dump, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.dumps {
		if existing.ContentHash == d.ContentHash {
			return existing, false
		}
	}
	s.dumps[d.ID] = d
	return d, true
}

// FindByHash returns a stored dump with the given content hash, or nil.
func (s *Store) FindByHash(hash string) *Dump {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dumps {
		if d.ContentHash == hash {
			return d
		}
	}
	return nil
}

// List returns all dumps, oldest first.
func (s *Store) List() []*Dump {
	s.mu.Lock()
	out := make([]*Dump, 0, len(s.dumps))
	for _, d := range s.dumps {
		out = append(out, d)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b *Dump) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Cleanup removes expired dumps and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, d := range s.dumps {
		if now.Sub(d.CreatedAt) > s.ttl {
			delete(s.dumps, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
