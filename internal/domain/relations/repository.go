package relations

import (
	"context"

	"patron-crm-go/internal/domain/graph"
)

// State is everything the service persists: the patron registry plus the graph
// snapshot. Saving replaces the stored state wholesale.
type State struct {
	Patrons  []graph.Patron
	Snapshot graph.Snapshot
}

type Repository interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

type noopRepository struct{}

// NewNoopRepository keeps state in process only.
func NewNoopRepository() Repository {
	return noopRepository{}
}

func (noopRepository) Load(context.Context) (State, error) {
	return State{}, nil
}

func (noopRepository) Save(context.Context, State) error {
	return nil
}
