package graph

// Snapshot is a deep copy of the mutable graph state. PatronHouseholds maps every
// patron that belonged to a household to that household's id; patrons missing from
// the map had none.
type Snapshot struct {
	Seq              int64
	Relationships    []Relationship
	Households       []Household
	HouseholdMembers []HouseholdMember
	PatronHouseholds map[string]string
}

func (g *Graph) Snapshot() Snapshot {
	snapshot := Snapshot{
		Seq:              g.seq,
		Relationships:    cloneRelationships(g.relationships),
		Households:       append([]Household(nil), g.households...),
		HouseholdMembers: append([]HouseholdMember(nil), g.members...),
		PatronHouseholds: make(map[string]string),
	}
	for id, patron := range g.patrons {
		if patron.HouseholdID != nil {
			snapshot.PatronHouseholds[id] = *patron.HouseholdID
		}
	}
	return snapshot
}

// Restore replaces the graph contents wholesale with a copy of snapshot.
func (g *Graph) Restore(snapshot Snapshot) {
	g.restore(snapshot)
	g.generation++
}

func (g *Graph) restore(snapshot Snapshot) {
	g.seq = snapshot.Seq
	g.relationships = append(g.relationships[:0], cloneRelationships(snapshot.Relationships)...)
	g.households = append(g.households[:0], snapshot.Households...)
	g.members = append(g.members[:0], snapshot.HouseholdMembers...)

	for id, patron := range g.patrons {
		householdID, ok := snapshot.PatronHouseholds[id]
		if !ok {
			patron.HouseholdID = nil
			continue
		}
		patron.HouseholdID = stringPtr(householdID)
	}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	clone := Snapshot{
		Seq:              s.Seq,
		Relationships:    cloneRelationships(s.Relationships),
		Households:       append([]Household(nil), s.Households...),
		HouseholdMembers: append([]HouseholdMember(nil), s.HouseholdMembers...),
		PatronHouseholds: make(map[string]string, len(s.PatronHouseholds)),
	}
	for id, householdID := range s.PatronHouseholds {
		clone.PatronHouseholds[id] = householdID
	}
	return clone
}

// Load seeds an empty graph from persisted patrons and state.
func (g *Graph) Load(patrons []Patron, snapshot Snapshot) {
	g.patrons = make(map[string]*Patron, len(patrons))
	for _, patron := range patrons {
		stored := clonePatron(patron)
		g.patrons[stored.ID] = &stored
	}
	g.Restore(snapshot)
}

func cloneRelationships(relationships []Relationship) []Relationship {
	if len(relationships) == 0 {
		return nil
	}
	cloned := make([]Relationship, len(relationships))
	for i := range relationships {
		cloned[i] = cloneRelationship(relationships[i])
	}
	return cloned
}

func cloneRelationship(rel Relationship) Relationship {
	if rel.ToPatronID != nil {
		rel.ToPatronID = stringPtr(*rel.ToPatronID)
	}
	if rel.EndDate != nil {
		endDate := *rel.EndDate
		rel.EndDate = &endDate
	}
	if rel.ExternalContact != nil {
		contact := *rel.ExternalContact
		rel.ExternalContact = &contact
	}
	return rel
}
