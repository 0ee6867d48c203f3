package graph

import "sort"

func (g *Graph) Household(id string) (Household, bool) {
	household, ok := g.household(id)
	if !ok {
		return Household{}, false
	}
	return *household, true
}

func (g *Graph) Households() []Household {
	return append([]Household(nil), g.households...)
}

func (g *Graph) HouseholdForPatron(patronID string) (Household, bool) {
	patron, ok := g.patrons[patronID]
	if !ok || !patron.InHousehold() {
		return Household{}, false
	}
	return g.Household(*patron.HouseholdID)
}

// HouseholdMembers lists the viewer first, then the head, then the rest in the
// order they joined.
func (g *Graph) HouseholdMembers(householdID, viewerID string) ([]HouseholdMember, error) {
	if _, ok := g.household(householdID); !ok {
		return nil, ErrHouseholdNotFound
	}
	members := g.membersOf(householdID)
	rank := func(m HouseholdMember) int {
		switch {
		case viewerID != "" && m.PatronID == viewerID:
			return 0
		case m.IsPrimary:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return rank(members[i]) < rank(members[j])
	})
	return members, nil
}

// HouseholdAddress prefers the head's address and falls back to the first
// member who has one.
func (g *Graph) HouseholdAddress(householdID string) (Address, bool) {
	members := g.membersOf(householdID)
	for _, member := range members {
		if !member.IsPrimary {
			continue
		}
		if patron, ok := g.patrons[member.PatronID]; ok && !patron.Address.IsZero() {
			return patron.Address, true
		}
	}
	for _, member := range members {
		if patron, ok := g.patrons[member.PatronID]; ok && !patron.Address.IsZero() {
			return patron.Address, true
		}
	}
	return Address{}, false
}

// NeedsHouseholdCreation is true when neither patron belongs to a household.
func (g *Graph) NeedsHouseholdCreation(viewerID, candidateID string) bool {
	viewer, ok := g.patrons[viewerID]
	if !ok {
		return false
	}
	candidate, ok := g.patrons[candidateID]
	if !ok {
		return false
	}
	return !viewer.InHousehold() && !candidate.InHousehold()
}
