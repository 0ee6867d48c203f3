package graph

import (
	"strings"
	"time"

	"patron-crm-go/internal/domain/roles"
)

type LinkStage string

const (
	StageCreateHousehold     LinkStage = "create_household"
	StageJoinViewerHousehold LinkStage = "join_viewer_household"
	StageBlocked             LinkStage = "blocked"
	StageConflictDetected    LinkStage = "conflict_detected"
	StageAwaitingHeadChoice  LinkStage = "awaiting_head_choice"
	StageResolved            LinkStage = "resolved"
	StageCancelled           LinkStage = "cancelled"
	StageCompleted           LinkStage = "completed"
)

// HouseholdLink plans adding a household relationship between a viewer and a
// candidate. Its stage only moves through the methods below, and the graph
// refuses to complete a link whose conflict is still open.
type HouseholdLink struct {
	ID          string
	ViewerID    string
	CandidateID string
	Conflict    *HouseholdConflict
	NewHeadID   string
	// Prefilled from an active personal relationship between the pair.
	ViewerRole    string
	CandidateRole string
	CreatedAt     time.Time

	stage      LinkStage
	generation uint64
}

type LinkDetails struct {
	HouseholdName string
	ViewerRole    string
	CandidateRole string
	Notes         string
}

// Clone copies the link including its conflict descriptor.
func (l *HouseholdLink) Clone() *HouseholdLink {
	clone := *l
	if l.Conflict != nil {
		conflict := *l.Conflict
		conflict.RemainingMembers = append([]HouseholdMember(nil), l.Conflict.RemainingMembers...)
		clone.Conflict = &conflict
	}
	return &clone
}

func (l *HouseholdLink) Stage() LinkStage {
	return l.stage
}

func (l *HouseholdLink) Closed() bool {
	return l.stage == StageCancelled || l.stage == StageCompleted
}

// Approve confirms the transfer of a candidate out of their current household.
func (l *HouseholdLink) Approve() error {
	if l.Closed() {
		return ErrLinkClosed
	}
	if l.stage != StageConflictDetected {
		return ErrInvalidLinkTransition
	}
	if l.Conflict != nil && l.Conflict.RequiresHeadChoice() {
		l.stage = StageAwaitingHeadChoice
		return nil
	}
	l.stage = StageResolved
	return nil
}

func (l *HouseholdLink) ChooseHead(patronID string) error {
	if l.Closed() {
		return ErrLinkClosed
	}
	if l.stage != StageAwaitingHeadChoice {
		return ErrInvalidLinkTransition
	}
	if l.Conflict == nil || !containsPatron(l.Conflict.RemainingMembers, patronID) {
		return ErrInvalidHeadChoice
	}
	l.NewHeadID = patronID
	l.stage = StageResolved
	return nil
}

func (l *HouseholdLink) Cancel() error {
	if l.Closed() {
		return ErrLinkClosed
	}
	l.stage = StageCancelled
	return nil
}

// BeginHouseholdLink inspects both patrons' households and plans the link.
func (g *Graph) BeginHouseholdLink(viewerID, candidateID string) (*HouseholdLink, error) {
	if viewerID == candidateID {
		return nil, ErrSamePatron
	}
	viewer, err := g.patron(viewerID)
	if err != nil {
		return nil, err
	}
	candidate, err := g.patron(candidateID)
	if err != nil {
		return nil, err
	}

	link := &HouseholdLink{
		ID:          g.newID(),
		ViewerID:    viewerID,
		CandidateID: candidateID,
		CreatedAt:   g.now(),
		generation:  g.generation,
	}

	viewerHousehold := ""
	if viewer.InHousehold() {
		viewerHousehold = *viewer.HouseholdID
	}
	switch {
	case candidate.InHousehold() && *candidate.HouseholdID == viewerHousehold:
		link.stage = StageBlocked
	case candidate.InHousehold():
		link.stage = StageConflictDetected
		link.Conflict = g.GetHouseholdConflict(candidateID, viewerHousehold)
	case viewer.InHousehold():
		link.stage = StageJoinViewerHousehold
	default:
		link.stage = StageCreateHousehold
	}

	for _, rel := range g.GetActiveRelationships(viewerID, candidateID) {
		if rel.Type == TypePersonal {
			link.ViewerRole = rel.RoleOf(viewerID)
			link.CandidateRole = rel.DisplayRole(viewerID)
			break
		}
	}
	return link, nil
}

// CompleteHouseholdLink applies the planned membership change and records the
// household relationship from viewer to candidate. The link must have been
// planned against the current graph state.
func (g *Graph) CompleteHouseholdLink(link *HouseholdLink, details LinkDetails) (Relationship, error) {
	switch link.stage {
	case StageCancelled, StageCompleted:
		return Relationship{}, ErrLinkClosed
	case StageBlocked:
		return Relationship{}, ErrAlreadyHouseholdMember
	case StageConflictDetected, StageAwaitingHeadChoice:
		return Relationship{}, ErrConflictUnresolved
	}
	if link.generation != g.generation {
		return Relationship{}, ErrLinkStale
	}

	viewerRole := firstNonEmpty(details.ViewerRole, link.ViewerRole)
	candidateRole := firstNonEmpty(details.CandidateRole, link.CandidateRole)

	var created Relationship
	err := g.atomically(func() error {
		viewer, err := g.patron(link.ViewerID)
		if err != nil {
			return err
		}
		candidate, err := g.patron(link.CandidateID)
		if err != nil {
			return err
		}
		if candidateRole == "" {
			if viewerRole == "" {
				return ErrRoleRequired
			}
			candidateRole = roles.ReciprocalRole(viewerRole, candidate.Gender)
		}

		switch link.stage {
		case StageCreateHousehold:
			_, err = g.createHousehold(viewer.ID, candidate.ID, details.HouseholdName, candidateRole)
		case StageJoinViewerHousehold:
			_, err = g.addMember(*viewer.HouseholdID, candidate, candidateRole)
		case StageResolved:
			err = g.resolveTransfer(link, viewer, candidate, details.HouseholdName, candidateRole)
		default:
			err = ErrInvalidLinkTransition
		}
		if err != nil {
			return err
		}

		created, err = g.addRelationship(NewRelationship{
			FromPatronID: viewer.ID,
			ToPatronID:   stringPtr(candidate.ID),
			Type:         TypeHousehold,
			Category:     roles.CategoryOf(candidateRole),
			Labels:       CustomLabels{From: viewerRole, To: candidateRole},
			Notes:        details.Notes,
		})
		return err
	})
	if err != nil {
		return Relationship{}, err
	}
	link.stage = StageCompleted
	return cloneRelationship(created), nil
}

func (g *Graph) resolveTransfer(link *HouseholdLink, viewer, candidate *Patron, name, candidateRole string) error {
	if !viewer.InHousehold() && strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if candidate.InHousehold() {
		if err := g.detach(candidate, link.NewHeadID, true); err != nil {
			return err
		}
	}
	if viewer.InHousehold() {
		_, err := g.addMember(*viewer.HouseholdID, candidate, candidateRole)
		return err
	}
	_, err := g.createHousehold(viewer.ID, candidate.ID, name, candidateRole)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
