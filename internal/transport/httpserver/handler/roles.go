package handler

import (
	"net/http"

	"patron-crm-go/internal/domain/roles"
)

type catalogResponse struct {
	Type   string   `json:"type"`
	Labels []string `json:"labels"`
}

type resolveResponse struct {
	Label     string `json:"label"`
	Known     bool   `json:"known"`
	Category  string `json:"category"`
	Symmetric bool   `json:"symmetric"`
}

type reciprocalResponse struct {
	Label      string `json:"label"`
	Reciprocal string `json:"reciprocal"`
	Category   string `json:"category"`
}

// RoleCatalogs lists the selectable labels per relationship type. The "other"
// entry switches clients to free-text input.
func (h *Handlers) RoleCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs := make([]catalogResponse, 0, len(roles.CatalogTypes()))
	for _, kind := range roles.CatalogTypes() {
		catalogs = append(catalogs, catalogResponse{
			Type:   string(kind),
			Labels: roles.Catalog(kind),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": catalogs,
		"other":    roles.OtherLabel,
	})
}

func (h *Handlers) ResolveRole(w http.ResponseWriter, r *http.Request) {
	label := queryParam(r, "label")
	if label == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "label is required")
		return
	}

	resolution, known := roles.Resolve(label)
	resp := resolveResponse{Label: label, Known: known, Category: string(roles.CategoryCustom)}
	if known {
		resp.Category = string(resolution.Category)
		resp.Symmetric = resolution.Symmetric()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ReciprocalRole(w http.ResponseWriter, r *http.Request) {
	label := queryParam(r, "label")
	if label == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "label is required")
		return
	}
	gender := roles.ParseGender(queryParam(r, "gender"))

	writeJSON(w, http.StatusOK, reciprocalResponse{
		Label:      label,
		Reciprocal: roles.ReciprocalRole(label, gender),
		Category:   string(roles.CategoryOf(label)),
	})
}
