package graph

import (
	"sort"
	"strings"

	"patron-crm-go/internal/domain/roles"
)

// CreateHousehold makes headID the head of a new two-member household.
func (g *Graph) CreateHousehold(headID, otherID, name, otherRole string) (Household, error) {
	var created Household
	err := g.atomically(func() error {
		var err error
		created, err = g.createHousehold(headID, otherID, name, otherRole)
		return err
	})
	return created, err
}

// AddPatronToHousehold joins a patron without a household to an existing one.
func (g *Graph) AddPatronToHousehold(householdID, patronID, role string) (HouseholdMember, error) {
	var member HouseholdMember
	err := g.atomically(func() error {
		patron, err := g.patron(patronID)
		if err != nil {
			return err
		}
		member, err = g.addMember(householdID, patron, role)
		return err
	})
	return member, err
}

// GetHouseholdConflict describes the candidate's current household when it is
// neither empty nor the viewer's. Returns nil when there is nothing to resolve.
func (g *Graph) GetHouseholdConflict(candidateID, viewerHouseholdID string) *HouseholdConflict {
	candidate, ok := g.patrons[candidateID]
	if !ok || !candidate.InHousehold() || *candidate.HouseholdID == viewerHouseholdID {
		return nil
	}
	household, ok := g.household(*candidate.HouseholdID)
	if !ok {
		return nil
	}

	conflict := &HouseholdConflict{Household: *household}
	for _, member := range g.membersOf(household.ID) {
		conflict.MemberCount++
		if member.PatronID == candidateID {
			conflict.IsHead = member.IsPrimary
			continue
		}
		conflict.RemainingMembers = append(conflict.RemainingMembers, member)
	}
	return conflict
}

// TransferPatronToHousehold moves a patron out of their current household and
// into targetID. newHeadID is required when the patron heads a household that
// keeps two or more members.
func (g *Graph) TransferPatronToHousehold(patronID, targetID, newRole, newHeadID string) error {
	return g.atomically(func() error {
		patron, err := g.patron(patronID)
		if err != nil {
			return err
		}
		if _, ok := g.household(targetID); !ok {
			return ErrHouseholdNotFound
		}
		if !patron.InHousehold() {
			return ErrNotInHousehold
		}
		if *patron.HouseholdID == targetID {
			return ErrSameHousehold
		}
		if strings.TrimSpace(newRole) == "" {
			return ErrRoleRequired
		}
		if err := g.detach(patron, newHeadID, true); err != nil {
			return err
		}
		_, err = g.addMember(targetID, patron, newRole)
		return err
	})
}

// RemovePatronFromHousehold picks the next head by membership order when needed.
func (g *Graph) RemovePatronFromHousehold(patronID string) error {
	return g.removeFromHousehold(patronID, "", false)
}

func (g *Graph) RemovePatronFromHouseholdWithHead(patronID, newHeadID string) error {
	return g.removeFromHousehold(patronID, newHeadID, true)
}

func (g *Graph) UpdateHouseholdName(householdID, name string) (Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Household{}, ErrNameRequired
	}
	var updated Household
	err := g.atomically(func() error {
		household, ok := g.household(householdID)
		if !ok {
			return ErrHouseholdNotFound
		}
		household.Name = name
		updated = *household
		return nil
	})
	return updated, err
}

// ChangeHeadOfHousehold promotes newHeadID. The previous head takes the
// reciprocal of the new head's former role.
func (g *Graph) ChangeHeadOfHousehold(householdID, newHeadID string) error {
	if _, ok := g.household(householdID); !ok {
		return ErrHouseholdNotFound
	}
	next := g.memberIndex(newHeadID)
	if next < 0 || g.members[next].HouseholdID != householdID {
		return ErrMemberNotFound
	}
	if g.members[next].IsPrimary {
		return nil
	}

	return g.atomically(func() error {
		current := g.headIndex(householdID)
		if current >= 0 {
			oldHead, err := g.patron(g.members[current].PatronID)
			if err != nil {
				return err
			}
			g.members[current].IsPrimary = false
			g.members[current].Role = demotedRole(g.members[next].Role, oldHead.Gender)
		}
		g.members[next].IsPrimary = true
		g.members[next].Role = RoleHead
		return nil
	})
}

func (g *Graph) removeFromHousehold(patronID, newHeadID string, explicit bool) error {
	return g.atomically(func() error {
		patron, err := g.patron(patronID)
		if err != nil {
			return err
		}
		if !patron.InHousehold() {
			return ErrNotInHousehold
		}
		return g.detach(patron, newHeadID, explicit)
	})
}

func (g *Graph) createHousehold(headID, otherID, name, otherRole string) (Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Household{}, ErrNameRequired
	}
	if headID == otherID {
		return Household{}, ErrSamePatron
	}
	head, err := g.patron(headID)
	if err != nil {
		return Household{}, err
	}
	other, err := g.patron(otherID)
	if err != nil {
		return Household{}, err
	}
	if head.InHousehold() || other.InHousehold() {
		return Household{}, ErrAlreadyInHousehold
	}
	otherRole = memberRole(otherRole)
	if otherRole == "" {
		return Household{}, ErrRoleRequired
	}

	household := Household{
		ID:   g.newID(),
		Seq:  g.nextSeq(),
		Name: name,
	}
	g.households = append(g.households, household)
	g.appendMember(household.ID, head, RoleHead, true)
	g.appendMember(household.ID, other, otherRole, false)
	return household, nil
}

func (g *Graph) addMember(householdID string, patron *Patron, role string) (HouseholdMember, error) {
	if _, ok := g.household(householdID); !ok {
		return HouseholdMember{}, ErrHouseholdNotFound
	}
	if patron.InHousehold() {
		if *patron.HouseholdID == householdID {
			return HouseholdMember{}, ErrAlreadyHouseholdMember
		}
		return HouseholdMember{}, ErrHouseholdConflict
	}
	role = memberRole(role)
	if role == "" {
		return HouseholdMember{}, ErrRoleRequired
	}
	return g.appendMember(householdID, patron, role, false), nil
}

func (g *Graph) appendMember(householdID string, patron *Patron, role string, primary bool) HouseholdMember {
	member := HouseholdMember{
		ID:          g.newID(),
		Seq:         g.nextSeq(),
		HouseholdID: householdID,
		PatronID:    patron.ID,
		Role:        role,
		IsPrimary:   primary,
	}
	g.members = append(g.members, member)
	patron.HouseholdID = stringPtr(householdID)
	return member
}

// detach removes a patron's membership, ends their household relationships with
// the members left behind, and then either dissolves the household or makes sure
// it still has a head. With explicit set, a departing head of a surviving
// household must name the next head.
func (g *Graph) detach(patron *Patron, newHeadID string, explicit bool) error {
	idx := g.memberIndex(patron.ID)
	if idx < 0 {
		return ErrNotInHousehold
	}
	member := g.members[idx]
	householdID := member.HouseholdID

	var remaining []HouseholdMember
	for _, other := range g.membersOf(householdID) {
		if other.PatronID != patron.ID {
			remaining = append(remaining, other)
		}
	}

	nextHead := ""
	if member.IsPrimary && len(remaining) >= 2 {
		switch {
		case newHeadID != "":
			if !containsPatron(remaining, newHeadID) {
				return ErrInvalidHeadChoice
			}
			nextHead = newHeadID
		case explicit:
			return ErrHeadChoiceRequired
		default:
			nextHead = remaining[0].PatronID
		}
	}

	g.members = append(g.members[:idx], g.members[idx+1:]...)
	patron.HouseholdID = nil
	g.endHouseholdEdges(patron.ID, remaining)

	if len(remaining) < 2 {
		g.dissolve(householdID)
		return nil
	}
	if nextHead != "" {
		promoted := g.memberIndex(nextHead)
		g.members[promoted].IsPrimary = true
		g.members[promoted].Role = RoleHead
	}
	return nil
}

func (g *Graph) dissolve(householdID string) {
	kept := g.members[:0]
	for _, member := range g.members {
		if member.HouseholdID != householdID {
			kept = append(kept, member)
			continue
		}
		if patron, ok := g.patrons[member.PatronID]; ok {
			patron.HouseholdID = nil
		}
	}
	g.members = kept

	for i := range g.households {
		if g.households[i].ID == householdID {
			g.households = append(g.households[:i], g.households[i+1:]...)
			break
		}
	}
}

func (g *Graph) household(id string) (*Household, bool) {
	for i := range g.households {
		if g.households[i].ID == id {
			return &g.households[i], true
		}
	}
	return nil, false
}

// membersOf returns copies in membership order.
func (g *Graph) membersOf(householdID string) []HouseholdMember {
	var result []HouseholdMember
	for _, member := range g.members {
		if member.HouseholdID == householdID {
			result = append(result, member)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result
}

func (g *Graph) memberIndex(patronID string) int {
	for i := range g.members {
		if g.members[i].PatronID == patronID {
			return i
		}
	}
	return -1
}

func (g *Graph) headIndex(householdID string) int {
	for i := range g.members {
		if g.members[i].HouseholdID == householdID && g.members[i].IsPrimary {
			return i
		}
	}
	return -1
}

func memberRole(role string) string {
	role = strings.TrimSpace(role)
	if strings.EqualFold(role, RoleHead) {
		return RoleMember
	}
	return role
}

func demotedRole(newHeadRole string, oldHeadGender roles.Gender) string {
	if newHeadRole == "" || newHeadRole == RoleMember {
		return RoleMember
	}
	role := memberRole(roles.ReciprocalRole(newHeadRole, oldHeadGender))
	if role == "" {
		return RoleMember
	}
	return role
}

func containsPatron(members []HouseholdMember, patronID string) bool {
	for _, member := range members {
		if member.PatronID == patronID {
			return true
		}
	}
	return false
}
