package handler

import (
	"net/http"
	"strings"

	"patron-crm-go/internal/domain/graph"
)

type beginLinkRequest struct {
	ViewerID    string `json:"viewer_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
}

type chooseHeadRequest struct {
	PatronID string `json:"patron_id" validate:"required"`
}

type completeLinkRequest struct {
	HouseholdName string `json:"household_name"`
	ViewerRole    string `json:"viewer_role"`
	CandidateRole string `json:"candidate_role"`
	Notes         string `json:"notes"`
}

func (h *Handlers) BeginHouseholdLink(w http.ResponseWriter, r *http.Request) {
	var req beginLinkRequest
	if !bind(w, r, &req) {
		return
	}
	viewerID := strings.TrimSpace(req.ViewerID)
	candidateID := strings.TrimSpace(req.CandidateID)

	link, err := h.Relations.BeginHouseholdLink(viewerID, candidateID)
	if err != nil {
		h.writeDomainError(w, r, "links.begin", err, "viewer_id", viewerID, "candidate_id", candidateID)
		return
	}

	writeJSON(w, http.StatusCreated, toLinkResponse(link))
}

func (h *Handlers) GetHouseholdLink(w http.ResponseWriter, r *http.Request) {
	linkID := pathParam(r, "id")
	link, err := h.Relations.Link(linkID)
	if err != nil {
		h.writeDomainError(w, r, "links.get", err, "link_id", linkID)
		return
	}

	writeJSON(w, http.StatusOK, toLinkResponse(link))
}

func (h *Handlers) ApproveHouseholdLink(w http.ResponseWriter, r *http.Request) {
	linkID := pathParam(r, "id")
	link, err := h.Relations.ApproveLink(linkID)
	if err != nil {
		h.writeDomainError(w, r, "links.approve", err, "link_id", linkID)
		return
	}

	writeJSON(w, http.StatusOK, toLinkResponse(link))
}

func (h *Handlers) ChooseLinkHead(w http.ResponseWriter, r *http.Request) {
	var req chooseHeadRequest
	if !bind(w, r, &req) {
		return
	}
	linkID := pathParam(r, "id")
	patronID := strings.TrimSpace(req.PatronID)

	link, err := h.Relations.ChooseLinkHead(linkID, patronID)
	if err != nil {
		h.writeDomainError(w, r, "links.choose_head", err, "link_id", linkID, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, toLinkResponse(link))
}

func (h *Handlers) CompleteHouseholdLink(w http.ResponseWriter, r *http.Request) {
	var req completeLinkRequest
	if !bind(w, r, &req) {
		return
	}
	linkID := pathParam(r, "id")

	created, err := h.Relations.CompleteLink(r.Context(), linkID, graph.LinkDetails{
		HouseholdName: strings.TrimSpace(req.HouseholdName),
		ViewerRole:    strings.TrimSpace(req.ViewerRole),
		CandidateRole: strings.TrimSpace(req.CandidateRole),
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, "links.complete", err, "link_id", linkID)
		return
	}

	writeJSON(w, http.StatusCreated, toRelationshipResponse(created))
}

func (h *Handlers) CancelHouseholdLink(w http.ResponseWriter, r *http.Request) {
	linkID := pathParam(r, "id")
	if err := h.Relations.CancelLink(linkID); err != nil {
		h.writeDomainError(w, r, "links.cancel", err, "link_id", linkID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
