// Package eventstore keeps the ordered inbox of action events waiting for the
// agent. Events get increasing sequence numbers so a consumer can poll for
// everything after the last sequence it saw.
package eventstore

import (
	"sort"
	"sync"
	"time"

	"github.com/cexll/ideas-portal/internal/surface"
)

// Status is the delivery state of an event.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDelivered  Status = "delivered"
	StatusSuperseded Status = "superseded"
)

// Entry is one stored event.
type Entry struct {
	Seq       int64                `json:"seq"`
	Status    Status               `json:"status"`
	Event     *surface.ActionEvent `json:"event"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Store holds events in sequence order. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []*Entry // ascending Seq
	next    int64
	now     func() time.Time
}

// NewStore creates an empty store whose first event gets sequence 1.
func NewStore() *Store {
	return &Store{next: 1, now: time.Now}
}

// Append stores ev as pending and returns a copy of its entry.
func (s *Store) Append(ev *surface.ActionEvent) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Entry{Seq: s.next, Status: StatusPending, Event: ev, UpdatedAt: s.now()}
	s.next++
	s.entries = append(s.entries, e)
	return *e
}

// Get returns a copy of the entry with sequence seq.
func (s *Store) Get(seq int64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.find(seq); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// After returns the entries with Seq > seq in order, at most limit of them
// (all when limit <= 0).
func (s *Store) After(seq int64, limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Seq > seq })
	out := make([]Entry, 0, len(s.entries)-i)
	for _, e := range s.entries[i:] {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *e)
	}
	return out
}

// List returns every entry, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, *s.entries[i])
	}
	return out
}

// Ack marks a pending entry delivered. It reports whether the entry exists.
func (s *Store) Ack(seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.find(seq)
	if e == nil {
		return false
	}
	if e.Status == StatusPending {
		e.Status = StatusDelivered
		e.UpdatedAt = s.now()
	}
	return true
}

// Supersede marks the pending events of a surface as superseded, for example
// after the surface was deleted. Returns the number of affected entries.
func (s *Store) Supersede(surfaceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	affected := 0
	for _, e := range s.entries {
		if e.Status != StatusPending || e.Event.SurfaceID != surfaceID {
			continue
		}
		e.Status = StatusSuperseded
		e.UpdatedAt = s.now()
		affected++
	}
	return affected
}

// LastSeq returns the sequence of the newest entry, or 0.
func (s *Store) LastSeq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next - 1
}

func (s *Store) find(seq int64) *Entry {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Seq >= seq })
	if i < len(s.entries) && s.entries[i].Seq == seq {
		return s.entries[i]
	}
	return nil
}
