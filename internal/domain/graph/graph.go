// Package graph holds the patron relationship and household graph: an owned,
// in-process store of relationships, households and household memberships plus
// every operation that mutates or reads them.
//
// Graph is not safe for concurrent use; callers serialize access.
package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Graph struct {
	patrons       map[string]*Patron
	relationships []Relationship
	households    []Household
	members       []HouseholdMember

	seq        int64
	generation uint64

	now   func() time.Time
	newID func() string
}

type Option func(*Graph)

func WithClock(now func() time.Time) Option {
	return func(g *Graph) {
		g.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(g *Graph) {
		g.newID = newID
	}
}

func New(opts ...Option) *Graph {
	g := &Graph{
		patrons: make(map[string]*Patron),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generation changes after every successful mutation and every restore.
func (g *Graph) Generation() uint64 {
	return g.generation
}

// UpsertPatron stores identity fields. HouseholdID is owned by the graph and is
// never taken from the input.
func (g *Graph) UpsertPatron(patron Patron) (Patron, error) {
	patron.ID = strings.TrimSpace(patron.ID)
	if patron.ID == "" {
		return Patron{}, ErrPatronNotFound
	}

	existing, ok := g.patrons[patron.ID]
	if ok {
		patron.HouseholdID = existing.HouseholdID
	} else {
		patron.HouseholdID = nil
	}

	stored := patron
	g.patrons[patron.ID] = &stored
	g.generation++
	return clonePatron(stored), nil
}

func (g *Graph) Patron(id string) (Patron, bool) {
	patron, ok := g.patrons[id]
	if !ok {
		return Patron{}, false
	}
	return clonePatron(*patron), true
}

// RemovePatron drops a patron that is not referenced by any household or
// relationship.
func (g *Graph) RemovePatron(id string) error {
	patron, ok := g.patrons[id]
	if !ok {
		return ErrPatronNotFound
	}
	if patron.HouseholdID != nil {
		return ErrPatronInUse
	}
	for _, rel := range g.relationships {
		if rel.FromPatronID == id || (rel.ToPatronID != nil && *rel.ToPatronID == id) {
			return ErrPatronInUse
		}
	}
	delete(g.patrons, id)
	g.generation++
	return nil
}

func (g *Graph) Patrons() []Patron {
	result := make([]Patron, 0, len(g.patrons))
	for _, patron := range g.patrons {
		result = append(result, clonePatron(*patron))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// atomically runs fn and restores the pre-call state when it fails.
func (g *Graph) atomically(fn func() error) error {
	before := g.Snapshot()
	if err := fn(); err != nil {
		g.restore(before)
		return err
	}
	g.generation++
	return nil
}

func (g *Graph) patron(id string) (*Patron, error) {
	patron, ok := g.patrons[id]
	if !ok {
		return nil, ErrPatronNotFound
	}
	return patron, nil
}

func (g *Graph) nextSeq() int64 {
	g.seq++
	return g.seq
}

func (g *Graph) today() time.Time {
	now := g.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func clonePatron(patron Patron) Patron {
	if patron.HouseholdID != nil {
		householdID := *patron.HouseholdID
		patron.HouseholdID = &householdID
	}
	return patron
}

func stringPtr(value string) *string {
	return &value
}
