package handler

import (
	"net/http"
	"strings"

	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/domain/roles"
)

type upsertPatronRequest struct {
	FirstName string      `json:"first_name" validate:"required"`
	LastName  string      `json:"last_name"`
	Gender    string      `json:"gender"`
	Email     string      `json:"email" validate:"omitempty,email"`
	Address   *addressDTO `json:"address"`
}

type transferPatronRequest struct {
	HouseholdID string `json:"household_id" validate:"required"`
	Role        string `json:"role" validate:"required"`
	NewHeadID   string `json:"new_head_id"`
}

func (h *Handlers) UpsertPatron(w http.ResponseWriter, r *http.Request) {
	var req upsertPatronRequest
	if !bind(w, r, &req) {
		return
	}
	patronID := pathParam(r, "id")

	saved, err := h.Relations.UpsertPatron(r.Context(), graph.Patron{
		ID:        patronID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Gender:    roles.ParseGender(req.Gender),
		Email:     strings.TrimSpace(req.Email),
		Address:   fromAddress(req.Address),
	})
	if err != nil {
		h.writeDomainError(w, r, "patrons.upsert", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, toPatronResponse(saved))
}

func (h *Handlers) GetPatron(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	patron, err := h.Relations.Patron(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.get", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, toPatronResponse(patron))
}

func (h *Handlers) ListPatrons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patrons": toPatronResponses(h.Relations.Patrons()),
	})
}

func (h *Handlers) GetPatronHousehold(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	details, err := h.Relations.HouseholdForPatron(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.household", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdDetailsResponse(details))
}

func (h *Handlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	connections, err := h.Relations.Connections(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.connections", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connections": toConnectionResponses(connections),
	})
}

func (h *Handlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	rels, err := h.Relations.OrgRelationships(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.organizations", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"relationships": toRelationshipResponses(rels),
	})
}

func (h *Handlers) ListPatronRelationships(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	rels, err := h.Relations.Relationships(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.relationships", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"relationships": toRelationshipResponses(rels),
	})
}

func (h *Handlers) TransferPatron(w http.ResponseWriter, r *http.Request) {
	var req transferPatronRequest
	if !bind(w, r, &req) {
		return
	}
	patronID := pathParam(r, "id")

	err := h.Relations.TransferPatron(r.Context(), patronID, strings.TrimSpace(req.HouseholdID), strings.TrimSpace(req.Role), strings.TrimSpace(req.NewHeadID))
	if err != nil {
		h.writeDomainError(w, r, "patrons.transfer", err, "patron_id", patronID, "household_id", req.HouseholdID)
		return
	}

	details, err := h.Relations.HouseholdForPatron(patronID)
	if err != nil {
		h.writeDomainError(w, r, "patrons.transfer", err, "patron_id", patronID)
		return
	}
	writeJSON(w, http.StatusOK, toHouseholdDetailsResponse(details))
}

func (h *Handlers) LeaveHousehold(w http.ResponseWriter, r *http.Request) {
	patronID := pathParam(r, "id")
	newHeadID := queryParam(r, "new_head_id")

	if err := h.Relations.RemovePatronFromHousehold(r.Context(), patronID, newHeadID); err != nil {
		h.writeDomainError(w, r, "patrons.leave_household", err, "patron_id", patronID, "new_head_id", newHeadID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
