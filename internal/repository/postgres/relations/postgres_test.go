package relations

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"patron-crm-go/internal/db"
	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/domain/roles"
	relationsdomain "patron-crm-go/internal/domain/relations"
	"patron-crm-go/pkg/logger"
)

func newSQLiteRepo(t *testing.T) *PostgresRepository {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "graph.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := gormDB.Exec("SELECT 1").Error; err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := db.MigrateDir(gormDB, filepath.Join("..", "..", "..", "..", "migrations"), logger.Nop()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return NewPostgres(gormDB)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	g := graph.New()
	for _, patron := range []graph.Patron{
		{ID: "alan", FirstName: "Alan", LastName: "Smith", Gender: roles.GenderMale},
		{ID: "beth", FirstName: "Beth", LastName: "Smith", Gender: roles.GenderFemale, Address: graph.Address{Line1: "1 Elm St"}},
		{ID: "cara", FirstName: "Cara", LastName: "Jones"},
	} {
		if _, err := g.UpsertPatron(patron); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	household, err := g.CreateHousehold("alan", "beth", "Smith Family", "Spouse")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := g.RelateByRole("alan", "cara", graph.TypePersonal, "Friend", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := g.AddExternalContact("beth", graph.TypeProfessional, "Attorney", graph.ExternalContact{Name: "Jo Lee"}, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	state := relationsdomain.State{Patrons: g.Patrons(), Snapshot: g.Snapshot()}
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// saving twice replaces rather than duplicates
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(loaded.Patrons) != 3 {
		t.Fatalf("expected 3 patrons, got %d", len(loaded.Patrons))
	}
	if len(loaded.Snapshot.Relationships) != 2 || len(loaded.Snapshot.HouseholdMembers) != 2 {
		t.Fatalf("unexpected snapshot %+v", loaded.Snapshot)
	}
	if loaded.Snapshot.Seq != state.Snapshot.Seq {
		t.Fatalf("expected seq %d, got %d", state.Snapshot.Seq, loaded.Snapshot.Seq)
	}
	if loaded.Snapshot.PatronHouseholds["beth"] != household.ID {
		t.Fatalf("expected beth in %s, got %v", household.ID, loaded.Snapshot.PatronHouseholds)
	}
	if loaded.Snapshot.Relationships[0].ExternalContact != nil {
		t.Fatalf("expected patron relationship without external contact")
	}
	external := loaded.Snapshot.Relationships[1]
	if external.ToPatronID != nil || external.ExternalContact == nil || external.ExternalContact.Name != "Jo Lee" {
		t.Fatalf("unexpected external relationship %+v", external)
	}

	restored := graph.New()
	restored.Load(loaded.Patrons, loaded.Snapshot)
	members, err := restored.HouseholdMembers(household.ID, "")
	if err != nil || len(members) != 2 || !members[0].IsHead() {
		t.Fatalf("unexpected members %+v (%v)", members, err)
	}
}

func TestSaveRemovesDissolvedHousehold(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	g := graph.New()
	for _, id := range []string{"alan", "beth"} {
		_, _ = g.UpsertPatron(graph.Patron{ID: id, FirstName: id, LastName: "Smith"})
	}
	if _, err := g.CreateHousehold("alan", "beth", "Smith Family", "Spouse"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.Save(ctx, relationsdomain.State{Patrons: g.Patrons(), Snapshot: g.Snapshot()}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := g.RemovePatronFromHousehold("beth"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.Save(ctx, relationsdomain.State{Patrons: g.Patrons(), Snapshot: g.Snapshot()}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(loaded.Snapshot.Households) != 0 || len(loaded.Snapshot.HouseholdMembers) != 0 {
		t.Fatalf("expected dissolved household removed, got %+v", loaded.Snapshot)
	}
	for _, patron := range loaded.Patrons {
		if patron.InHousehold() {
			t.Fatalf("expected %s without household", patron.ID)
		}
	}
}
