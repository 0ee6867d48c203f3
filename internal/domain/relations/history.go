package relations

import (
	"context"

	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/metrics"
)

// Undo restores the previous checkpoint. It reports false when there is nothing
// to undo.
func (s *Service) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Undo() {
		metrics.RecordHistory("undo", false)
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		s.history.Redo()
		return false, err
	}
	metrics.RecordHistory("undo", true)
	return true, nil
}

func (s *Service) Redo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Redo() {
		metrics.RecordHistory("redo", false)
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		s.history.Undo()
		return false, err
	}
	metrics.RecordHistory("redo", true)
	return true, nil
}

func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	metrics.RecordHistory("clear", true)
}

// SetViewingContext switches the patron being edited. Undo never crosses
// viewing contexts, so a different patron starts with empty history.
func (s *Service) SetViewingContext(patronID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patronID != "" {
		if _, ok := s.graph.Patron(patronID); !ok {
			return graph.ErrPatronNotFound
		}
	}
	if patronID != s.viewerID {
		s.history.Clear()
		s.viewerID = patronID
		s.log.Debug("relations.context: viewing context changed", "patron_id", patronID)
	}
	return nil
}

func (s *Service) HistoryStatus() HistoryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return HistoryStatus{
		ViewerID: s.viewerID,
		CanUndo:  s.history.CanUndo(),
		CanRedo:  s.history.CanRedo(),
		Depth:    s.history.Depth(),
	}
}
