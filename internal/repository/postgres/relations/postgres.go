package relations

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patron-crm-go/internal/domain/graph"
	relationsdomain "patron-crm-go/internal/domain/relations"
)

const batchSize = 200

// PostgresRepository mirrors the graph state into SQL tables. It only relies on
// gorm, so the sqlite dialect works as well.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (relationsdomain.State, error) {
	var state relationsdomain.State
	db := r.db.WithContext(ctx)

	if err := db.Order("id asc").Find(&state.Patrons).Error; err != nil {
		return relationsdomain.State{}, err
	}

	snapshot := graph.Snapshot{PatronHouseholds: make(map[string]string)}
	if err := db.Order("seq asc").Find(&snapshot.Relationships).Error; err != nil {
		return relationsdomain.State{}, err
	}
	if err := db.Order("seq asc").Find(&snapshot.Households).Error; err != nil {
		return relationsdomain.State{}, err
	}
	if err := db.Order("seq asc").Find(&snapshot.HouseholdMembers).Error; err != nil {
		return relationsdomain.State{}, err
	}

	for i := range snapshot.Relationships {
		rel := &snapshot.Relationships[i]
		if rel.ToPatronID != nil || (rel.ExternalContact != nil && *rel.ExternalContact == (graph.ExternalContact{})) {
			rel.ExternalContact = nil
		}
		snapshot.Seq = max(snapshot.Seq, rel.Seq)
	}
	for _, household := range snapshot.Households {
		snapshot.Seq = max(snapshot.Seq, household.Seq)
	}
	for _, member := range snapshot.HouseholdMembers {
		snapshot.Seq = max(snapshot.Seq, member.Seq)
		snapshot.PatronHouseholds[member.PatronID] = member.HouseholdID
	}

	state.Snapshot = snapshot
	return state, nil
}

// Save replaces the stored graph inside one transaction. Patrons are upserted,
// never deleted.
func (r *PostgresRepository) Save(ctx context.Context, state relationsdomain.State) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&graph.Relationship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&graph.HouseholdMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&graph.Household{}).Error; err != nil {
			return err
		}

		if len(state.Patrons) > 0 {
			err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				CreateInBatches(state.Patrons, batchSize).Error
			if err != nil {
				return err
			}
		}
		if len(state.Snapshot.Households) > 0 {
			if err := tx.CreateInBatches(state.Snapshot.Households, batchSize).Error; err != nil {
				return err
			}
		}
		if len(state.Snapshot.HouseholdMembers) > 0 {
			if err := tx.CreateInBatches(state.Snapshot.HouseholdMembers, batchSize).Error; err != nil {
				return err
			}
		}
		if len(state.Snapshot.Relationships) > 0 {
			if err := tx.CreateInBatches(state.Snapshot.Relationships, batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
