package handler

import (
	"net/http"
	"strings"

	"patron-crm-go/internal/domain/graph"
)

type createHouseholdRequest struct {
	HeadID     string `json:"head_id" validate:"required"`
	MemberID   string `json:"member_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	MemberRole string `json:"member_role" validate:"required"`
}

type updateHouseholdRequest struct {
	Name string `json:"name" validate:"required"`
}

type changeHeadRequest struct {
	PatronID string `json:"patron_id" validate:"required"`
}

type addMemberRequest struct {
	PatronID string `json:"patron_id" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

func (h *Handlers) CreateHousehold(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if !bind(w, r, &req) {
		return
	}
	headID := strings.TrimSpace(req.HeadID)
	memberID := strings.TrimSpace(req.MemberID)

	household, err := h.Relations.CreateHousehold(r.Context(), headID, memberID, strings.TrimSpace(req.Name), strings.TrimSpace(req.MemberRole))
	if err != nil {
		h.writeDomainError(w, r, "households.create", err, "head_id", headID, "member_id", memberID)
		return
	}

	details, err := h.Relations.Household(household.ID, headID)
	if err != nil {
		h.writeDomainError(w, r, "households.create", err, "household_id", household.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toHouseholdDetailsResponse(details))
}

func (h *Handlers) GetHousehold(w http.ResponseWriter, r *http.Request) {
	householdID := pathParam(r, "id")
	viewerID := queryParam(r, "viewer_id")

	details, err := h.Relations.Household(householdID, viewerID)
	if err != nil {
		h.writeDomainError(w, r, "households.get", err, "household_id", householdID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdDetailsResponse(details))
}

func (h *Handlers) UpdateHousehold(w http.ResponseWriter, r *http.Request) {
	var req updateHouseholdRequest
	if !bind(w, r, &req) {
		return
	}
	householdID := pathParam(r, "id")

	household, err := h.Relations.UpdateHouseholdName(r.Context(), householdID, strings.TrimSpace(req.Name))
	if err != nil {
		h.writeDomainError(w, r, "households.update", err, "household_id", householdID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdResponse(household))
}

func (h *Handlers) ChangeHead(w http.ResponseWriter, r *http.Request) {
	var req changeHeadRequest
	if !bind(w, r, &req) {
		return
	}
	householdID := pathParam(r, "id")
	patronID := strings.TrimSpace(req.PatronID)

	if err := h.Relations.ChangeHeadOfHousehold(r.Context(), householdID, patronID); err != nil {
		h.writeDomainError(w, r, "households.change_head", err, "household_id", householdID, "patron_id", patronID)
		return
	}

	details, err := h.Relations.Household(householdID, "")
	if err != nil {
		h.writeDomainError(w, r, "households.change_head", err, "household_id", householdID)
		return
	}
	writeJSON(w, http.StatusOK, toHouseholdDetailsResponse(details))
}

func (h *Handlers) AddHouseholdMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !bind(w, r, &req) {
		return
	}
	householdID := pathParam(r, "id")
	patronID := strings.TrimSpace(req.PatronID)

	member, err := h.Relations.AddPatronToHousehold(r.Context(), householdID, patronID, strings.TrimSpace(req.Role))
	if err != nil {
		h.writeDomainError(w, r, "households.add_member", err, "household_id", householdID, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponses([]graph.HouseholdMember{member})[0])
}

// HouseholdConflict describes what moving a candidate out of their household
// would do. The conflict is null when the candidate is free to join.
func (h *Handlers) HouseholdConflict(w http.ResponseWriter, r *http.Request) {
	candidateID := queryParam(r, "candidate_id")
	if candidateID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "candidate_id is required")
		return
	}
	viewerHouseholdID := queryParam(r, "viewer_household_id")

	conflict, err := h.Relations.HouseholdConflict(candidateID, viewerHouseholdID)
	if err != nil {
		h.writeDomainError(w, r, "households.conflict", err, "candidate_id", candidateID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conflict": toConflictResponse(conflict),
	})
}

func (h *Handlers) NeedsHouseholdCreation(w http.ResponseWriter, r *http.Request) {
	viewerID := queryParam(r, "viewer_id")
	candidateID := queryParam(r, "candidate_id")
	if viewerID == "" || candidateID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "viewer_id and candidate_id are required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"needs_creation": h.Relations.NeedsHouseholdCreation(viewerID, candidateID),
	})
}
