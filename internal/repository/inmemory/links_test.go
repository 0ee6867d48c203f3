package inmemory

import (
	"testing"
	"time"

	"patron-crm-go/internal/domain/graph"
)

func newLink(t *testing.T) *graph.HouseholdLink {
	t.Helper()
	g := graph.New()
	for _, id := range []string{"alan", "beth"} {
		if _, err := g.UpsertPatron(graph.Patron{ID: id, FirstName: id}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	link, err := g.BeginHouseholdLink("alan", "beth")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return link
}

func TestLinkCacheSetGet(t *testing.T) {
	cache := NewInMemoryLinkCache()
	link := newLink(t)

	cache.Set(link, time.Minute)
	got, ok := cache.Get(link.ID)
	if !ok {
		t.Fatalf("expected link cached")
	}
	if got.ViewerID != "alan" || got.Stage() != graph.StageCreateHousehold {
		t.Fatalf("unexpected cached link %+v", got)
	}

	got.ViewerRole = "changed"
	again, _ := cache.Get(link.ID)
	if again.ViewerRole == "changed" {
		t.Fatalf("expected cache to hand out copies")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestLinkCacheExpires(t *testing.T) {
	cache := NewInMemoryLinkCache()
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	link := newLink(t)

	cache.Set(link, time.Minute)
	now = now.Add(2 * time.Minute)

	if _, ok := cache.Get(link.ID); ok {
		t.Fatalf("expected expired link to be gone")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected expired entry removed, got %d", cache.Len())
	}
}

func TestLinkCacheDeleteAndClear(t *testing.T) {
	cache := NewInMemoryLinkCache()
	link := newLink(t)

	cache.Set(link, 0)
	if _, ok := cache.Get(link.ID); ok {
		t.Fatalf("expected zero ttl not to cache")
	}

	cache.Set(link, time.Minute)
	cache.Delete(link.ID)
	if _, ok := cache.Get(link.ID); ok {
		t.Fatalf("expected deleted link to be gone")
	}

	cache.Set(link, time.Minute)
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("expected clear to empty the cache")
	}
}
