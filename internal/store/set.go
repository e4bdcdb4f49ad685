package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/pkg/logger"
)

// Edge links A to B. Two edges are the same edge when their pair matches;
// CreatedAt is informational.
type Edge[A, B ~string] struct {
	A         A         `json:"idA"`
	B         B         `json:"idB"`
	CreatedAt time.Time `json:"createdAt"`
}

type pair[A, B ~string] struct {
	a A
	b B
}

func (e Edge[A, B]) key() pair[A, B] { return pair[A, B]{e.A, e.B} }

// Set is one relation, stored as a single document under key.
type Set[A, B ~string] struct {
	kind events.Type
	key  string
	kv   KV
	bus  *events.Bus // nil for quiet views
	mu   *sync.Mutex
	now  func() time.Time
}

func newSet[A, B ~string](kind events.Type, key string, kv KV, bus *events.Bus, now func() time.Time) *Set[A, B] {
	return &Set[A, B]{kind: kind, key: key, kv: kv, bus: bus, mu: &sync.Mutex{}, now: now}
}

// Kind returns the event type fired for this relation.
func (s *Set[A, B]) Kind() events.Type { return s.kind }

// Quiet returns a view over the same data and lock that never notifies.
func (s *Set[A, B]) Quiet() *Set[A, B] {
	q := *s
	q.bus = nil
	return &q
}

// All returns every edge. Missing, unreadable or malformed data reads as empty.
func (s *Set[A, B]) All(ctx context.Context) []Edge[A, B] {
	edges, err := s.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("relation", string(s.kind)).Msg("relation read failed, treating as empty")
		return []Edge[A, B]{}
	}
	return edges
}

// Load is All with storage errors surfaced. A malformed document still reads
// as empty; the next write replaces it. Writers must not proceed on error.
func (s *Set[A, B]) Load(ctx context.Context) ([]Edge[A, B], error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.kind, err)
	}
	if !ok || len(raw) == 0 {
		return []Edge[A, B]{}, nil
	}

	var edges []Edge[A, B]
	if err := json.Unmarshal(raw, &edges); err != nil {
		logger.Warn().Err(err).Str("relation", string(s.kind)).Msg("malformed relation document, treating as empty")
		return []Edge[A, B]{}, nil
	}
	return dedupe(edges), nil
}

// Save replaces the whole set with edges (first occurrence of a pair wins)
// and notifies once. On failure the previous set stays in effect.
func (s *Set[A, B]) Save(ctx context.Context, edges []Edge[A, B]) error {
	edges = dedupe(edges)

	s.mu.Lock()
	err := s.write(ctx, edges)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(events.Change{Action: "save", Count: len(edges)})
	return nil
}

// Add inserts (a, b) if absent. It reports whether an edge was written.
func (s *Set[A, B]) Add(ctx context.Context, a A, b B) (bool, error) {
	s.mu.Lock()
	edges, err := s.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		logger.Error().Err(err).Str("relation", string(s.kind)).Msg("relation read failed, add aborted")
		return false, err
	}
	for _, e := range edges {
		if e.A == a && e.B == b {
			s.mu.Unlock()
			return false, nil
		}
	}
	edges = append(edges, Edge[A, B]{A: a, B: b, CreatedAt: s.now()})
	err = s.write(ctx, edges)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.notify(events.Change{Action: "add", IDA: string(a), IDB: string(b), Count: 1})
	return true, nil
}

// Remove deletes (a, b). Removing an absent edge is a no-op.
func (s *Set[A, B]) Remove(ctx context.Context, a A, b B) (bool, error) {
	n, err := s.removeWhere(ctx, func(e Edge[A, B]) bool { return e.A == a && e.B == b })
	if err != nil || n == 0 {
		return false, err
	}
	s.notify(events.Change{Action: "remove", IDA: string(a), IDB: string(b), Count: n})
	return true, nil
}

// RemoveMatching deletes every edge for which match returns true, in one write.
func (s *Set[A, B]) RemoveMatching(ctx context.Context, match func(Edge[A, B]) bool) (int, error) {
	n, err := s.removeWhere(ctx, match)
	if err != nil || n == 0 {
		return 0, err
	}
	s.notify(events.Change{Action: "cleanup", Count: n})
	return n, nil
}

func (s *Set[A, B]) removeWhere(ctx context.Context, match func(Edge[A, B]) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges, err := s.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Str("relation", string(s.kind)).Msg("relation read failed, removal aborted")
		return 0, err
	}
	kept := edges[:0:0]
	for _, e := range edges {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	removed := len(edges) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Has reports whether (a, b) is present.
func (s *Set[A, B]) Has(ctx context.Context, a A, b B) bool {
	for _, e := range s.All(ctx) {
		if e.A == a && e.B == b {
			return true
		}
	}
	return false
}

// BByA lists every B linked to a, in insertion order.
func (s *Set[A, B]) BByA(ctx context.Context, a A) []B {
	out := []B{}
	for _, e := range s.All(ctx) {
		if e.A == a {
			out = append(out, e.B)
		}
	}
	return out
}

// AByB lists every A linked to b, in insertion order.
func (s *Set[A, B]) AByB(ctx context.Context, b B) []A {
	out := []A{}
	for _, e := range s.All(ctx) {
		if e.B == b {
			out = append(out, e.A)
		}
	}
	return out
}

// AvailableBByA returns the members of allB not yet linked to a, keeping allB's order.
func (s *Set[A, B]) AvailableBByA(ctx context.Context, a A, allB []B) []B {
	linked := make(map[B]bool)
	for _, b := range s.BByA(ctx, a) {
		linked[b] = true
	}
	out := []B{}
	for _, b := range allB {
		if !linked[b] {
			out = append(out, b)
		}
	}
	return out
}

// write must be called with s.mu held.
func (s *Set[A, B]) write(ctx context.Context, edges []Edge[A, B]) error {
	if edges == nil {
		edges = []Edge[A, B]{}
	}
	raw, err := json.Marshal(edges)
	if err != nil {
		logger.Error().Err(err).Str("relation", string(s.kind)).Msg("relation encode failed")
		return fmt.Errorf("encoding %s: %w", s.kind, err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		logger.Error().Err(err).Str("relation", string(s.kind)).Str("key", s.key).Msg("relation write failed, previous state kept")
		return fmt.Errorf("writing %s: %w", s.kind, err)
	}
	return nil
}

func (s *Set[A, B]) notify(change events.Change) {
	if s.bus != nil {
		s.bus.Notify(s.kind, change)
	}
}

func dedupe[A, B ~string](edges []Edge[A, B]) []Edge[A, B] {
	seen := make(map[pair[A, B]]bool, len(edges))
	out := make([]Edge[A, B], 0, len(edges))
	for _, e := range edges {
		if seen[e.key()] {
			continue
		}
		seen[e.key()] = true
		out = append(out, e)
	}
	return out
}
