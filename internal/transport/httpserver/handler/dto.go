package handler

import (
	"time"

	"patron-crm-go/internal/domain/graph"
	relationsdomain "patron-crm-go/internal/domain/relations"
)

const dateLayout = "2006-01-02"

type addressDTO struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type externalContactDTO struct {
	Name     string `json:"name" validate:"required"`
	Company  string `json:"company,omitempty"`
	Initials string `json:"initials,omitempty"`
	Title    string `json:"title,omitempty"`
}

type patronResponse struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DisplayName string      `json:"display_name"`
	Gender      string      `json:"gender,omitempty"`
	Email       string      `json:"email,omitempty"`
	Address     *addressDTO `json:"address,omitempty"`
	HouseholdID *string     `json:"household_id"`
}

type relationshipResponse struct {
	ID              string              `json:"id"`
	FromPatronID    string              `json:"from_patron_id"`
	ToPatronID      *string             `json:"to_patron_id"`
	Type            string              `json:"type"`
	Category        string              `json:"category"`
	FromLabel       string              `json:"from_label"`
	ToLabel         string              `json:"to_label"`
	Notes           string              `json:"notes,omitempty"`
	StartDate       string              `json:"start_date"`
	EndDate         *string             `json:"end_date"`
	Active          bool                `json:"active"`
	ExternalContact *externalContactDTO `json:"external_contact,omitempty"`
}

type connectionResponse struct {
	Relationship relationshipResponse `json:"relationship"`
	PatronID     string               `json:"patron_id,omitempty"`
	External     *externalContactDTO  `json:"external_contact,omitempty"`
	Role         string               `json:"role"`
}

type householdResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

type memberResponse struct {
	ID        string `json:"id"`
	PatronID  string `json:"patron_id"`
	Role      string `json:"role"`
	IsPrimary bool   `json:"is_primary"`
}

type householdDetailsResponse struct {
	Household householdResponse `json:"household"`
	Members   []memberResponse  `json:"members"`
	Address   *addressDTO       `json:"address"`
}

type conflictResponse struct {
	Household          householdResponse `json:"household"`
	IsHead             bool              `json:"is_head"`
	MemberCount        int               `json:"member_count"`
	RemainingMembers   []memberResponse  `json:"remaining_members"`
	RequiresHeadChoice bool              `json:"requires_head_choice"`
	WillDissolve       bool              `json:"will_dissolve"`
}

type linkResponse struct {
	ID            string            `json:"id"`
	Stage         string            `json:"stage"`
	ViewerID      string            `json:"viewer_id"`
	CandidateID   string            `json:"candidate_id"`
	Conflict      *conflictResponse `json:"conflict"`
	NewHeadID     string            `json:"new_head_id,omitempty"`
	ViewerRole    string            `json:"viewer_role,omitempty"`
	CandidateRole string            `json:"candidate_role,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type historyResponse struct {
	ViewerID string `json:"viewer_id,omitempty"`
	CanUndo  bool   `json:"can_undo"`
	CanRedo  bool   `json:"can_redo"`
	Depth    int    `json:"depth"`
}

func toAddress(address graph.Address) *addressDTO {
	if address.IsZero() {
		return nil
	}
	return &addressDTO{
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

func fromAddress(address *addressDTO) graph.Address {
	if address == nil {
		return graph.Address{}
	}
	return graph.Address{
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

func toExternalContact(contact *graph.ExternalContact) *externalContactDTO {
	if contact == nil {
		return nil
	}
	return &externalContactDTO{
		Name:     contact.Name,
		Company:  contact.Company,
		Initials: contact.Initials,
		Title:    contact.Title,
	}
}

func toPatronResponse(patron graph.Patron) patronResponse {
	return patronResponse{
		ID:          patron.ID,
		FirstName:   patron.FirstName,
		LastName:    patron.LastName,
		DisplayName: patron.DisplayName(),
		Gender:      string(patron.Gender),
		Email:       patron.Email,
		Address:     toAddress(patron.Address),
		HouseholdID: patron.HouseholdID,
	}
}

func toPatronResponses(patrons []graph.Patron) []patronResponse {
	out := make([]patronResponse, 0, len(patrons))
	for _, patron := range patrons {
		out = append(out, toPatronResponse(patron))
	}
	return out
}

func toRelationshipResponse(rel graph.Relationship) relationshipResponse {
	resp := relationshipResponse{
		ID:              rel.ID,
		FromPatronID:    rel.FromPatronID,
		ToPatronID:      rel.ToPatronID,
		Type:            string(rel.Type),
		Category:        string(rel.Category),
		FromLabel:       rel.FromLabel,
		ToLabel:         rel.ToLabel,
		Notes:           rel.Notes,
		StartDate:       rel.StartDate.Format(dateLayout),
		Active:          rel.Active(),
		ExternalContact: toExternalContact(rel.ExternalContact),
	}
	if rel.EndDate != nil {
		ended := rel.EndDate.Format(dateLayout)
		resp.EndDate = &ended
	}
	return resp
}

func toRelationshipResponses(rels []graph.Relationship) []relationshipResponse {
	out := make([]relationshipResponse, 0, len(rels))
	for _, rel := range rels {
		out = append(out, toRelationshipResponse(rel))
	}
	return out
}

func toConnectionResponses(connections []graph.Connection) []connectionResponse {
	out := make([]connectionResponse, 0, len(connections))
	for _, conn := range connections {
		out = append(out, connectionResponse{
			Relationship: toRelationshipResponse(conn.Relationship),
			PatronID:     conn.PatronID,
			External:     toExternalContact(conn.External),
			Role:         conn.Role,
		})
	}
	return out
}

func toHouseholdResponse(household graph.Household) householdResponse {
	return householdResponse{
		ID:       household.ID,
		Name:     household.Name,
		Verified: household.Verified,
	}
}

func toMemberResponses(members []graph.HouseholdMember) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, memberResponse{
			ID:        member.ID,
			PatronID:  member.PatronID,
			Role:      member.Role,
			IsPrimary: member.IsPrimary,
		})
	}
	return out
}

func toHouseholdDetailsResponse(details relationsdomain.HouseholdDetails) householdDetailsResponse {
	resp := householdDetailsResponse{
		Household: toHouseholdResponse(details.Household),
		Members:   toMemberResponses(details.Members),
	}
	if details.Address != nil {
		resp.Address = toAddress(*details.Address)
	}
	return resp
}

func toConflictResponse(conflict *graph.HouseholdConflict) *conflictResponse {
	if conflict == nil {
		return nil
	}
	return &conflictResponse{
		Household:          toHouseholdResponse(conflict.Household),
		IsHead:             conflict.IsHead,
		MemberCount:        conflict.MemberCount,
		RemainingMembers:   toMemberResponses(conflict.RemainingMembers),
		RequiresHeadChoice: conflict.RequiresHeadChoice(),
		WillDissolve:       conflict.WillDissolve(),
	}
}

func toLinkResponse(link *graph.HouseholdLink) linkResponse {
	return linkResponse{
		ID:            link.ID,
		Stage:         string(link.Stage()),
		ViewerID:      link.ViewerID,
		CandidateID:   link.CandidateID,
		Conflict:      toConflictResponse(link.Conflict),
		NewHeadID:     link.NewHeadID,
		ViewerRole:    link.ViewerRole,
		CandidateRole: link.CandidateRole,
		CreatedAt:     link.CreatedAt,
	}
}

func toHistoryResponse(status relationsdomain.HistoryStatus) historyResponse {
	return historyResponse{
		ViewerID: status.ViewerID,
		CanUndo:  status.CanUndo,
		CanRedo:  status.CanRedo,
		Depth:    status.Depth,
	}
}
