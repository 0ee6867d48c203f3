package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"patron-crm-go/internal/domain/graph"
	"patron-crm-go/internal/domain/roles"
)

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func queryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

func parseType(value string) (graph.RelationshipType, bool) {
	relType := graph.RelationshipType(strings.ToLower(strings.TrimSpace(value)))
	return relType, relType.Valid()
}

// parseCategory accepts a category name or any label that resolves to one.
func parseCategory(value string) roles.Category {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if category := roles.Category(strings.ToLower(value)); category.Known() || category.IsCustom() {
		return category
	}
	return roles.CategoryOf(value)
}
