package handler

import (
	"net/http"
	"strings"
)

type viewingContextRequest struct {
	PatronID string `json:"patron_id"`
}

type historyActionResponse struct {
	Applied bool            `json:"applied"`
	History historyResponse `json:"history"`
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toHistoryResponse(h.Relations.HistoryStatus()))
}

func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.Relations.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	applied, err := h.Relations.Undo(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "history.undo", err)
		return
	}

	writeJSON(w, http.StatusOK, historyActionResponse{
		Applied: applied,
		History: toHistoryResponse(h.Relations.HistoryStatus()),
	})
}

func (h *Handlers) Redo(w http.ResponseWriter, r *http.Request) {
	applied, err := h.Relations.Redo(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "history.redo", err)
		return
	}

	writeJSON(w, http.StatusOK, historyActionResponse{
		Applied: applied,
		History: toHistoryResponse(h.Relations.HistoryStatus()),
	})
}

// SetViewingContext switches the patron whose record is being edited. An empty
// patron_id leaves every patron context.
func (h *Handlers) SetViewingContext(w http.ResponseWriter, r *http.Request) {
	var req viewingContextRequest
	if !bind(w, r, &req) {
		return
	}
	patronID := strings.TrimSpace(req.PatronID)

	if err := h.Relations.SetViewingContext(patronID); err != nil {
		h.writeDomainError(w, r, "history.context", err, "patron_id", patronID)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(h.Relations.HistoryStatus()))
}
