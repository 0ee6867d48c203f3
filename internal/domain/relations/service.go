package relations

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/domain/history"
	"patron-crm-go/internal/domain/roles"
	"patron-crm-go/internal/metrics"
	"patron-crm-go/pkg/logger"
)

const defaultLinkTTL = 30 * time.Minute

type Options struct {
	HistoryDepth int
	LinkTTL      time.Duration
	GraphOptions []graph.Option
}

// Service serializes access to a single graph, checkpoints every mutation for
// undo and persists the resulting state.
type Service struct {
	mu       sync.RWMutex
	graph    *graph.Graph
	history  *history.History
	repo     Repository
	links    LinkCache
	linkTTL  time.Duration
	log      logger.Logger
	viewerID string
}

type HouseholdDetails struct {
	Household graph.Household
	Members   []graph.HouseholdMember
	Address   *graph.Address
}

type HistoryStatus struct {
	ViewerID string
	CanUndo  bool
	CanRedo  bool
	Depth    int
}

func NewService(repo Repository, links LinkCache, log logger.Logger, opts Options) *Service {
	if repo == nil {
		repo = noopRepository{}
	}
	if links == nil {
		links = noopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = defaultLinkTTL
	}

	g := graph.New(opts.GraphOptions...)
	return &Service{
		graph:   g,
		history: history.New(g, opts.HistoryDepth),
		repo:    repo,
		links:   links,
		linkTTL: opts.LinkTTL,
		log:     log,
	}
}

// Load replaces the in-process graph with the stored state.
func (s *Service) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load graph state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Load(state.Patrons, state.Snapshot)
	s.history.Clear()
	s.links.Clear()
	s.log.Info("relations.load: graph state loaded",
		"patrons", len(state.Patrons),
		"relationships", len(state.Snapshot.Relationships),
		"households", len(state.Snapshot.Households),
	)
	return nil
}

func (s *Service) UpsertPatron(ctx context.Context, patron graph.Patron) (graph.Patron, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.graph.Patron(strings.TrimSpace(patron.ID))
	saved, err := s.graph.UpsertPatron(patron)
	if err == nil {
		if err = s.persist(ctx); err != nil {
			s.revertPatron(saved.ID, previous, existed)
			saved = graph.Patron{}
		}
	}
	metrics.RecordOperation("upsert_patron", err)
	return saved, err
}

func (s *Service) revertPatron(id string, previous graph.Patron, existed bool) {
	var err error
	if existed {
		_, err = s.graph.UpsertPatron(previous)
	} else {
		err = s.graph.RemovePatron(id)
	}
	if err != nil {
		s.log.InternalError("relations.upsert_patron: revert failed", err, "patron_id", id)
	}
}

func (s *Service) Patron(id string) (graph.Patron, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patron, ok := s.graph.Patron(id)
	if !ok {
		return graph.Patron{}, graph.ErrPatronNotFound
	}
	return patron, nil
}

func (s *Service) Patrons() []graph.Patron {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Patrons()
}

func (s *Service) AddRelationship(ctx context.Context, input graph.NewRelationship) (graph.Relationship, error) {
	var created graph.Relationship
	err := s.mutate(ctx, "add_relationship", func() error {
		var err error
		created, err = s.graph.AddPatronRelationship(input)
		return err
	})
	return created, err
}

func (s *Service) RelateByRole(ctx context.Context, fromID, toID string, relType graph.RelationshipType, roleLabel, notes string) (graph.Relationship, error) {
	var created graph.Relationship
	err := s.mutate(ctx, "relate_by_role", func() error {
		var err error
		created, err = s.graph.RelateByRole(fromID, toID, relType, roleLabel, notes)
		return err
	})
	return created, err
}

func (s *Service) AddExternalContact(ctx context.Context, patronID string, relType graph.RelationshipType, roleLabel string, contact graph.ExternalContact, notes string) (graph.Relationship, error) {
	var created graph.Relationship
	err := s.mutate(ctx, "add_external_contact", func() error {
		var err error
		created, err = s.graph.AddExternalContact(patronID, relType, roleLabel, contact, notes)
		return err
	})
	return created, err
}

func (s *Service) EndRelationship(ctx context.Context, viewerID, otherID string, relType graph.RelationshipType, category roles.Category) error {
	return s.mutate(ctx, "end_relationship", func() error {
		return s.graph.EndPatronRelationship(viewerID, otherID, relType, category)
	})
}

func (s *Service) EndRelationshipByID(ctx context.Context, id, viewerID string) error {
	return s.mutate(ctx, "end_relationship", func() error {
		return s.graph.EndRelationshipByID(id, viewerID)
	})
}

func (s *Service) HasActiveRelationship(p1, p2 string, relType graph.RelationshipType, category roles.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.HasActiveRelationship(p1, p2, relType, category)
}

func (s *Service) ActiveRelationships(p1, p2 string) []graph.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.GetActiveRelationships(p1, p2)
}

func (s *Service) OrgRelationships(patronID string) ([]graph.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.graph.Patron(patronID); !ok {
		return nil, graph.ErrPatronNotFound
	}
	return s.graph.GetOrgRelationships(patronID), nil
}

func (s *Service) Connections(patronID string) ([]graph.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.graph.Patron(patronID); !ok {
		return nil, graph.ErrPatronNotFound
	}
	return s.graph.Connections(patronID), nil
}

// Relationships includes ended records.
func (s *Service) Relationships(patronID string) ([]graph.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.graph.Patron(patronID); !ok {
		return nil, graph.ErrPatronNotFound
	}
	return s.graph.RelationshipsFor(patronID), nil
}

func (s *Service) CreateHousehold(ctx context.Context, headID, otherID, name, otherRole string) (graph.Household, error) {
	var created graph.Household
	err := s.mutate(ctx, "create_household", func() error {
		var err error
		created, err = s.graph.CreateHousehold(headID, otherID, name, otherRole)
		return err
	})
	return created, err
}

func (s *Service) AddPatronToHousehold(ctx context.Context, householdID, patronID, role string) (graph.HouseholdMember, error) {
	var member graph.HouseholdMember
	err := s.mutate(ctx, "add_household_member", func() error {
		var err error
		member, err = s.graph.AddPatronToHousehold(householdID, patronID, role)
		return err
	})
	return member, err
}

func (s *Service) HouseholdConflict(candidateID, viewerHouseholdID string) (*graph.HouseholdConflict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.graph.Patron(candidateID); !ok {
		return nil, graph.ErrPatronNotFound
	}
	return s.graph.GetHouseholdConflict(candidateID, viewerHouseholdID), nil
}

func (s *Service) TransferPatron(ctx context.Context, patronID, targetHouseholdID, newRole, newHeadID string) error {
	return s.mutate(ctx, "transfer_patron", func() error {
		return s.graph.TransferPatronToHousehold(patronID, targetHouseholdID, newRole, newHeadID)
	})
}

// RemovePatronFromHousehold picks the next head automatically unless newHeadID
// is given.
func (s *Service) RemovePatronFromHousehold(ctx context.Context, patronID, newHeadID string) error {
	return s.mutate(ctx, "remove_household_member", func() error {
		if newHeadID == "" {
			return s.graph.RemovePatronFromHousehold(patronID)
		}
		return s.graph.RemovePatronFromHouseholdWithHead(patronID, newHeadID)
	})
}

func (s *Service) UpdateHouseholdName(ctx context.Context, householdID, name string) (graph.Household, error) {
	var updated graph.Household
	err := s.mutate(ctx, "update_household_name", func() error {
		var err error
		updated, err = s.graph.UpdateHouseholdName(householdID, name)
		return err
	})
	return updated, err
}

func (s *Service) ChangeHeadOfHousehold(ctx context.Context, householdID, newHeadID string) error {
	return s.mutate(ctx, "change_head", func() error {
		return s.graph.ChangeHeadOfHousehold(householdID, newHeadID)
	})
}

func (s *Service) Household(householdID, viewerID string) (HouseholdDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.householdDetails(householdID, viewerID)
}

func (s *Service) HouseholdForPatron(patronID string) (HouseholdDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.graph.Patron(patronID); !ok {
		return HouseholdDetails{}, graph.ErrPatronNotFound
	}
	household, ok := s.graph.HouseholdForPatron(patronID)
	if !ok {
		return HouseholdDetails{}, graph.ErrNotInHousehold
	}
	return s.householdDetails(household.ID, patronID)
}

func (s *Service) NeedsHouseholdCreation(viewerID, candidateID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.NeedsHouseholdCreation(viewerID, candidateID)
}

func (s *Service) householdDetails(householdID, viewerID string) (HouseholdDetails, error) {
	household, ok := s.graph.Household(householdID)
	if !ok {
		return HouseholdDetails{}, graph.ErrHouseholdNotFound
	}
	members, err := s.graph.HouseholdMembers(householdID, viewerID)
	if err != nil {
		return HouseholdDetails{}, err
	}
	details := HouseholdDetails{Household: household, Members: members}
	if address, ok := s.graph.HouseholdAddress(householdID); ok {
		details.Address = &address
	}
	return details, nil
}

// mutate runs fn as one undoable step and persists the result. A failed save
// restores the graph and leaves both history stacks untouched. Operations that
// change nothing are neither saved nor recorded.
func (s *Service) mutate(ctx context.Context, operation string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, err := s.history.Begin(fn)
	if err == nil && change.Changed() {
		if err = s.persist(ctx); err != nil {
			change.Rollback()
		}
	}
	if err == nil {
		change.Commit()
	}
	metrics.RecordOperation(operation, err)
	if err != nil {
		s.log.Debug("relations.mutate: operation failed", "operation", operation, "err", err)
	}
	return err
}

func (s *Service) persist(ctx context.Context) error {
	started := time.Now()
	err := s.repo.Save(ctx, State{
		Patrons:  s.graph.Patrons(),
		Snapshot: s.graph.Snapshot(),
	})
	metrics.PersistDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		s.log.InternalError("relations.persist: save failed", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
