package handler

import (
	"net/http"
	"strings"

	"patron-crm-go/internal/domain/graph"
)

type createRelationshipRequest struct {
	FromPatronID    string              `json:"from_patron_id" validate:"required"`
	ToPatronID      string              `json:"to_patron_id" validate:"required_without=ExternalContact"`
	Type            string              `json:"type" validate:"required,oneof=household personal professional organization"`
	Role            string              `json:"role"`
	FromRole        string              `json:"from_role"`
	Category        string              `json:"category"`
	Notes           string              `json:"notes"`
	ExternalContact *externalContactDTO `json:"external_contact"`
}

type endRelationshipRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	OtherID  string `json:"other_id" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=household personal professional organization"`
	Category string `json:"category" validate:"required"`
}

func (h *Handlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req createRelationshipRequest
	if !bind(w, r, &req) {
		return
	}
	relType, _ := parseType(req.Type)
	fromID := strings.TrimSpace(req.FromPatronID)
	role := strings.TrimSpace(req.Role)

	var (
		created graph.Relationship
		err     error
	)
	switch {
	case req.ExternalContact != nil:
		created, err = h.Relations.AddExternalContact(r.Context(), fromID, relType, role, graph.ExternalContact{
			Name:     strings.TrimSpace(req.ExternalContact.Name),
			Company:  strings.TrimSpace(req.ExternalContact.Company),
			Initials: strings.TrimSpace(req.ExternalContact.Initials),
			Title:    strings.TrimSpace(req.ExternalContact.Title),
		}, req.Notes)
	case strings.TrimSpace(req.FromRole) == "" && strings.TrimSpace(req.Category) == "":
		created, err = h.Relations.RelateByRole(r.Context(), fromID, strings.TrimSpace(req.ToPatronID), relType, role, req.Notes)
	default:
		toID := strings.TrimSpace(req.ToPatronID)
		created, err = h.Relations.AddRelationship(r.Context(), graph.NewRelationship{
			FromPatronID: fromID,
			ToPatronID:   &toID,
			Type:         relType,
			Category:     parseCategory(req.Category),
			Labels:       graph.CustomLabels{From: req.FromRole, To: role},
			Notes:        req.Notes,
		})
	}
	if err != nil {
		h.writeDomainError(w, r, "relationships.create", err, "from_patron_id", fromID, "to_patron_id", req.ToPatronID, "type", req.Type)
		return
	}

	writeJSON(w, http.StatusCreated, toRelationshipResponse(created))
}

func (h *Handlers) EndRelationship(w http.ResponseWriter, r *http.Request) {
	var req endRelationshipRequest
	if !bind(w, r, &req) {
		return
	}
	relType, _ := parseType(req.Type)

	err := h.Relations.EndRelationship(r.Context(), strings.TrimSpace(req.ViewerID), strings.TrimSpace(req.OtherID), relType, parseCategory(req.Category))
	if err != nil {
		h.writeDomainError(w, r, "relationships.end", err, "viewer_id", req.ViewerID, "other_id", req.OtherID, "type", req.Type)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) EndRelationshipByID(w http.ResponseWriter, r *http.Request) {
	relationshipID := pathParam(r, "id")
	viewerID := queryParam(r, "viewer_id")

	if err := h.Relations.EndRelationshipByID(r.Context(), relationshipID, viewerID); err != nil {
		h.writeDomainError(w, r, "relationships.end_by_id", err, "relationship_id", relationshipID, "viewer_id", viewerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActiveRelationships lists the active edges between two patrons. With type and
// category it also answers whether that specific relationship exists.
func (h *Handlers) ActiveRelationships(w http.ResponseWriter, r *http.Request) {
	a := queryParam(r, "patron_a")
	b := queryParam(r, "patron_b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "patron_a and patron_b are required")
		return
	}

	payload := map[string]interface{}{
		"relationships": toRelationshipResponses(h.Relations.ActiveRelationships(a, b)),
	}
	if value := queryParam(r, "type"); value != "" {
		relType, ok := parseType(value)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_type", "invalid relationship type")
			return
		}
		category := parseCategory(queryParam(r, "category"))
		payload["active"] = h.Relations.HasActiveRelationship(a, b, relType, category)
	}

	writeJSON(w, http.StatusOK, payload)
}
