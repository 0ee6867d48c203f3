package relations

import (
	"context"
	"errors"

	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/metrics"
)

// BeginHouseholdLink plans a household link and keeps it until it completes,
// is cancelled or expires.
func (s *Service) BeginHouseholdLink(viewerID, candidateID string) (*graph.HouseholdLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, err := s.graph.BeginHouseholdLink(viewerID, candidateID)
	if err != nil {
		return nil, err
	}
	s.storeLink(link)
	return link.Clone(), nil
}

func (s *Service) Link(id string) (*graph.HouseholdLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link(id)
}

// ApproveLink confirms a detected household conflict.
func (s *Service) ApproveLink(id string) (*graph.HouseholdLink, error) {
	return s.transitionLink(id, func(link *graph.HouseholdLink) error {
		return link.Approve()
	})
}

func (s *Service) ChooseLinkHead(id, patronID string) (*graph.HouseholdLink, error) {
	return s.transitionLink(id, func(link *graph.HouseholdLink) error {
		return link.ChooseHead(patronID)
	})
}

func (s *Service) CancelLink(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, err := s.link(id)
	if err != nil {
		return err
	}
	if err := link.Cancel(); err != nil {
		return err
	}
	s.dropLink(id)
	return nil
}

// CompleteLink applies the link as one undoable step. Links that can no longer
// complete are dropped.
func (s *Service) CompleteLink(ctx context.Context, id string, details graph.LinkDetails) (graph.Relationship, error) {
	s.mu.Lock()
	link, err := s.link(id)
	s.mu.Unlock()
	if err != nil {
		return graph.Relationship{}, err
	}

	var created graph.Relationship
	err = s.mutate(ctx, "complete_household_link", func() error {
		var err error
		created, err = s.graph.CompleteHouseholdLink(link, details)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil, errors.Is(err, graph.ErrLinkStale), errors.Is(err, graph.ErrLinkClosed):
		s.dropLink(id)
	case errors.Is(err, ErrPersist):
		// the graph was rolled back, the link can be retried
	default:
		s.storeLink(link)
	}
	return created, err
}

func (s *Service) transitionLink(id string, fn func(*graph.HouseholdLink) error) (*graph.HouseholdLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, err := s.link(id)
	if err != nil {
		return nil, err
	}
	if err := fn(link); err != nil {
		return nil, err
	}
	s.storeLink(link)
	return link.Clone(), nil
}

func (s *Service) link(id string) (*graph.HouseholdLink, error) {
	link, ok := s.links.Get(id)
	if !ok {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *Service) storeLink(link *graph.HouseholdLink) {
	s.links.Set(link, s.linkTTL)
	metrics.PendingLinks.Set(float64(s.links.Len()))
}

func (s *Service) dropLink(id string) {
	s.links.Delete(id)
	metrics.PendingLinks.Set(float64(s.links.Len()))
}
