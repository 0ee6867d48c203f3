package graph

import (
	"strings"

	"patron-crm-go/internal/domain/roles"
)

// AddPatronRelationship stores a single directed record. Missing labels are
// derived from the role table using each participant's gender.
func (g *Graph) AddPatronRelationship(input NewRelationship) (Relationship, error) {
	var created Relationship
	err := g.atomically(func() error {
		var err error
		created, err = g.addRelationship(input)
		return err
	})
	if err != nil {
		return Relationship{}, err
	}
	return cloneRelationship(created), nil
}

// RelateByRole links two patrons with roleLabel describing to as seen from from.
func (g *Graph) RelateByRole(fromID, toID string, relType RelationshipType, roleLabel, notes string) (Relationship, error) {
	roleLabel = strings.TrimSpace(roleLabel)
	if roleLabel == "" {
		return Relationship{}, ErrRoleRequired
	}
	return g.AddPatronRelationship(NewRelationship{
		FromPatronID: fromID,
		ToPatronID:   stringPtr(toID),
		Type:         relType,
		Category:     roles.CategoryOf(roleLabel),
		Labels:       CustomLabels{To: roleLabel},
		Notes:        notes,
	})
}

func (g *Graph) AddExternalContact(patronID string, relType RelationshipType, roleLabel string, contact ExternalContact, notes string) (Relationship, error) {
	roleLabel = strings.TrimSpace(roleLabel)
	if roleLabel == "" {
		return Relationship{}, ErrRoleRequired
	}
	return g.AddPatronRelationship(NewRelationship{
		FromPatronID:    patronID,
		Type:            relType,
		Category:        roles.CategoryOf(roleLabel),
		Labels:          CustomLabels{To: roleLabel},
		Notes:           notes,
		ExternalContact: &contact,
	})
}

// EndPatronRelationship closes the active record between viewer and other. Ending
// a household relationship also takes other out of the viewer's household.
func (g *Graph) EndPatronRelationship(viewerID, otherID string, relType RelationshipType, category roles.Category) error {
	return g.atomically(func() error {
		if _, err := g.patron(viewerID); err != nil {
			return err
		}
		if _, err := g.patron(otherID); err != nil {
			return err
		}
		idx := g.findActive(viewerID, otherID, relType, category)
		if idx < 0 {
			return ErrRelationshipNotFound
		}
		return g.endRelationship(idx, viewerID)
	})
}

// EndRelationshipByID closes a relationship by id. viewerID picks the side that
// stays in the household when a household relationship ends; empty means From.
func (g *Graph) EndRelationshipByID(id, viewerID string) error {
	return g.atomically(func() error {
		idx := g.relationshipIndex(id)
		if idx < 0 || !g.relationships[idx].Active() {
			return ErrRelationshipNotFound
		}
		if viewerID == "" {
			viewerID = g.relationships[idx].FromPatronID
		}
		if !g.relationships[idx].Involves(viewerID) {
			return ErrRelationshipNotFound
		}
		return g.endRelationship(idx, viewerID)
	})
}

// HasActiveRelationship ignores direction.
func (g *Graph) HasActiveRelationship(p1, p2 string, relType RelationshipType, category roles.Category) bool {
	return g.findActive(p1, p2, relType, category) >= 0
}

func (g *Graph) GetActiveRelationships(p1, p2 string) []Relationship {
	var result []Relationship
	for i := range g.relationships {
		rel := g.relationships[i]
		if rel.Active() && rel.Connects(p1, p2) {
			result = append(result, cloneRelationship(rel))
		}
	}
	return result
}

// GetOrgRelationships returns active professional and organization records.
func (g *Graph) GetOrgRelationships(patronID string) []Relationship {
	var result []Relationship
	for i := range g.relationships {
		rel := g.relationships[i]
		if !rel.Active() || !rel.Involves(patronID) {
			continue
		}
		if rel.Type == TypeProfessional || rel.Type == TypeOrganization {
			result = append(result, cloneRelationship(rel))
		}
	}
	return result
}

// Connections lists active non-household relationships with the counterpart's
// role as seen by patronID.
func (g *Graph) Connections(patronID string) []Connection {
	var result []Connection
	for i := range g.relationships {
		rel := g.relationships[i]
		if !rel.Active() || rel.Type == TypeHousehold || !rel.Involves(patronID) {
			continue
		}
		conn := Connection{
			Relationship: cloneRelationship(rel),
			Role:         rel.DisplayRole(patronID),
		}
		if counterpart, ok := rel.Counterpart(patronID); ok {
			conn.PatronID = counterpart
		}
		if rel.ExternalContact != nil {
			contact := *rel.ExternalContact
			conn.External = &contact
		}
		result = append(result, conn)
	}
	return result
}

// RelationshipsFor includes ended records.
func (g *Graph) RelationshipsFor(patronID string) []Relationship {
	var result []Relationship
	for i := range g.relationships {
		if g.relationships[i].Involves(patronID) {
			result = append(result, cloneRelationship(g.relationships[i]))
		}
	}
	return result
}

func (g *Graph) Relationship(id string) (Relationship, bool) {
	idx := g.relationshipIndex(id)
	if idx < 0 {
		return Relationship{}, false
	}
	return cloneRelationship(g.relationships[idx]), true
}

func (g *Graph) addRelationship(input NewRelationship) (Relationship, error) {
	if !input.Type.Valid() {
		return Relationship{}, ErrInvalidType
	}
	from, err := g.patron(input.FromPatronID)
	if err != nil {
		return Relationship{}, err
	}

	var to *Patron
	if input.ToPatronID != nil {
		if *input.ToPatronID == from.ID {
			return Relationship{}, ErrSamePatron
		}
		if to, err = g.patron(*input.ToPatronID); err != nil {
			return Relationship{}, err
		}
		input.ExternalContact = nil
	} else {
		if input.Type == TypeHousehold {
			return Relationship{}, ErrInvalidType
		}
		if input.ExternalContact == nil || strings.TrimSpace(input.ExternalContact.Name) == "" {
			return Relationship{}, ErrExternalContactRequired
		}
		contact := *input.ExternalContact
		contact.Name = strings.TrimSpace(contact.Name)
		input.ExternalContact = &contact
	}

	labels := CustomLabels{
		From: strings.TrimSpace(input.Labels.From),
		To:   strings.TrimSpace(input.Labels.To),
	}
	category := input.Category
	if category == "" {
		switch {
		case labels.To != "":
			category = roles.CategoryOf(labels.To)
		case labels.From != "":
			category = roles.CategoryOf(labels.From)
		default:
			return Relationship{}, ErrRoleRequired
		}
	}

	if to != nil {
		if g.findActive(from.ID, to.ID, input.Type, category) >= 0 {
			return Relationship{}, ErrDuplicateRelationship
		}
	} else if g.hasActiveExternal(from.ID, input.Type, category, input.ExternalContact.Name) {
		return Relationship{}, ErrDuplicateRelationship
	}

	if input.Type == TypeHousehold {
		if !from.InHousehold() || !to.InHousehold() {
			return Relationship{}, ErrNotInHousehold
		}
		if *from.HouseholdID != *to.HouseholdID {
			return Relationship{}, ErrHouseholdConflict
		}
	}

	toGender := roles.GenderUnknown
	if to != nil {
		toGender = to.Gender
	}
	labels, err = fixLabels(labels, category, from.Gender, toGender)
	if err != nil {
		return Relationship{}, err
	}

	rel := Relationship{
		ID:              g.newID(),
		Seq:             g.nextSeq(),
		FromPatronID:    from.ID,
		Type:            input.Type,
		Category:        category,
		FromLabel:       labels.From,
		ToLabel:         labels.To,
		Notes:           strings.TrimSpace(input.Notes),
		StartDate:       g.today(),
		ExternalContact: input.ExternalContact,
	}
	if to != nil {
		rel.ToPatronID = stringPtr(to.ID)
	}
	g.relationships = append(g.relationships, rel)
	return rel, nil
}

func fixLabels(labels CustomLabels, category roles.Category, fromGender, toGender roles.Gender) (CustomLabels, error) {
	switch {
	case labels.From != "" && labels.To != "":
	case labels.To != "":
		labels.From = roles.ReciprocalRole(labels.To, fromGender)
	case labels.From != "":
		labels.To = roles.ReciprocalRole(labels.From, toGender)
	default:
		from, ok := roles.LabelFor(category, roles.SideOne, fromGender)
		if !ok {
			return labels, ErrRoleRequired
		}
		to, _ := roles.LabelFor(category, roles.SideTwo, toGender)
		labels.From, labels.To = from, to
	}
	return labels, nil
}

func (g *Graph) endRelationship(idx int, viewerID string) error {
	endDate := g.today()
	g.relationships[idx].EndDate = &endDate

	rel := g.relationships[idx]
	if rel.Type != TypeHousehold {
		return nil
	}
	otherID, ok := rel.Counterpart(viewerID)
	if !ok {
		return nil
	}
	viewer, err := g.patron(viewerID)
	if err != nil {
		return err
	}
	other, err := g.patron(otherID)
	if err != nil {
		return err
	}
	if !viewer.InHousehold() || !other.InHousehold() || *viewer.HouseholdID != *other.HouseholdID {
		return nil
	}
	return g.detach(other, "", false)
}

func (g *Graph) findActive(p1, p2 string, relType RelationshipType, category roles.Category) int {
	for i := range g.relationships {
		rel := g.relationships[i]
		if rel.Active() && rel.Type == relType && rel.Category == category && rel.Connects(p1, p2) {
			return i
		}
	}
	return -1
}

func (g *Graph) hasActiveExternal(patronID string, relType RelationshipType, category roles.Category, name string) bool {
	for i := range g.relationships {
		rel := g.relationships[i]
		if !rel.Active() || !rel.IsExternal() || rel.FromPatronID != patronID {
			continue
		}
		if rel.Type == relType && rel.Category == category && strings.EqualFold(rel.ExternalContact.Name, name) {
			return true
		}
	}
	return false
}

func (g *Graph) relationshipIndex(id string) int {
	for i := range g.relationships {
		if g.relationships[i].ID == id {
			return i
		}
	}
	return -1
}

// endHouseholdEdges closes active household relationships between patronID and
// any of others.
func (g *Graph) endHouseholdEdges(patronID string, others []HouseholdMember) {
	endDate := g.today()
	for i := range g.relationships {
		rel := &g.relationships[i]
		if !rel.Active() || rel.Type != TypeHousehold {
			continue
		}
		for _, member := range others {
			if rel.Connects(patronID, member.PatronID) {
				ended := endDate
				rel.EndDate = &ended
				break
			}
		}
	}
}
