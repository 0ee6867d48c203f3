package relations

import (
	"time"

	"patron-crm-go/internal/domain/graph"
)

// LinkCache holds household links between planning and completion. Entries
// expire after their TTL.
type LinkCache interface {
	Get(id string) (*graph.HouseholdLink, bool)
	Set(link *graph.HouseholdLink, ttl time.Duration)
	Delete(id string)
	Len() int
	Clear()
}

type noopCache struct{}

func (noopCache) Get(string) (*graph.HouseholdLink, bool) {
	return nil, false
}

func (noopCache) Set(*graph.HouseholdLink, time.Duration) {}

func (noopCache) Delete(string) {}

func (noopCache) Len() int {
	return 0
}

func (noopCache) Clear() {}
