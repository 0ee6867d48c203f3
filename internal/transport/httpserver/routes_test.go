package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patron-crm-go/internal/config"
	relationsdomain "patron-crm-go/internal/domain/relations"
	"patron-crm-go/internal/repository/inmemory"
	"patron-crm-go/internal/transport/httpserver"
	"patron-crm-go/internal/transport/httpserver/handler"
	"patron-crm-go/pkg/logger"
)

type envelope = map[string]interface{}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	log := logger.Nop()
	service := relationsdomain.NewService(nil, inmemory.NewInMemoryLinkCache(), log, relationsdomain.Options{})
	cfg := config.Config{CORSOrigins: []string{"http://localhost:5173"}}
	router := httpserver.NewRouter(cfg, handler.New(service, log), log)

	for _, p := range []struct{ id, first, gender string }{
		{"alan", "Alan", "male"},
		{"beth", "Beth", "female"},
		{"cara", "Cara", "female"},
	} {
		rec := do(t, router, http.MethodPut, "/api/patrons/"+p.id, envelope{
			"first_name": p.first,
			"last_name":  "Smith",
			"gender":     p.gender,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	return router
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode(t, rec)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", rec.Body.String())
	return errBody["code"].(string)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestPatronEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/patrons/alan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Alan Smith", body["display_name"])
	assert.Nil(t, body["household_id"])

	rec = do(t, router, http.MethodGet, "/api/patrons", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["patrons"], 3)

	rec = do(t, router, http.MethodGet, "/api/patrons/nobody", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "patron_not_found", errorCode(t, rec))

	rec = do(t, router, http.MethodGet, "/api/patrons/alan/household", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_in_household", errorCode(t, rec))
}

func TestHouseholdEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/households", envelope{
		"head_id":     "alan",
		"member_id":   "beth",
		"name":        "Smith Family",
		"member_role": "Wife",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	household := created["household"].(map[string]interface{})
	householdID := household["id"].(string)
	assert.Equal(t, "Smith Family", household["name"])

	rec = do(t, router, http.MethodGet, "/api/patrons/beth/household", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode(t, rec)["members"].([]interface{})
	require.Len(t, members, 2)
	assert.Equal(t, "beth", members[0].(map[string]interface{})["patron_id"])

	rec = do(t, router, http.MethodPatch, "/api/households/"+householdID, envelope{"name": "The Smiths"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Smiths", decode(t, rec)["name"])

	rec = do(t, router, http.MethodPost, "/api/households/"+householdID+"/members", envelope{"patron_id": "cara", "role": "Daughter"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "cara", decode(t, rec)["patron_id"])

	rec = do(t, router, http.MethodPut, "/api/households/"+householdID+"/head", envelope{"patron_id": "beth"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	members = decode(t, rec)["members"].([]interface{})
	head := members[0].(map[string]interface{})
	assert.Equal(t, "beth", head["patron_id"])
	assert.Equal(t, true, head["is_primary"])

	rec = do(t, router, http.MethodGet, "/api/households/conflict?candidate_id=cara", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conflict := decode(t, rec)["conflict"].(map[string]interface{})
	assert.Equal(t, false, conflict["is_head"])
	assert.Equal(t, float64(3), conflict["member_count"])

	rec = do(t, router, http.MethodGet, "/api/households/needs-creation?viewer_id=alan&candidate_id=cara", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["needs_creation"])

	rec = do(t, router, http.MethodDelete, "/api/patrons/cara/household", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/households/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "household_not_found", errorCode(t, rec))
}

func TestRequestValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/households", envelope{"head_id": "alan", "member_id": "beth", "member_role": "Wife"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "invalid_request", body["code"])
	assert.Contains(t, body["message"], "name is required")

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{"from_patron_id": "alan", "to_patron_id": "beth", "type": "romantic", "role": "Friend"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{"from_patron_id": "alan", "unknown": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", errorCode(t, rec))
}

func TestRelationshipEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/relationships", envelope{
		"from_patron_id": "alan",
		"to_patron_id":   "beth",
		"type":           "personal",
		"role":           "Friend",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rel := decode(t, rec)
	assert.Equal(t, "friend", rel["category"])
	assert.Equal(t, true, rel["active"])

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{
		"from_patron_id": "alan",
		"to_patron_id":   "beth",
		"type":           "personal",
		"role":           "Friend",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_relationship", errorCode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{
		"from_patron_id": "alan",
		"to_patron_id":   "alan",
		"type":           "personal",
		"role":           "Friend",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "same_patron", errorCode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{
		"from_patron_id":   "alan",
		"type":             "professional",
		"role":             "Attorney",
		"external_contact": envelope{"name": "Jane Counsel", "company": "Counsel LLP"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["to_patron_id"])

	rec = do(t, router, http.MethodGet, "/api/relationships/active?patron_a=beth&patron_b=alan&type=personal&category=friend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode(t, rec)
	assert.Equal(t, true, active["active"])
	assert.Len(t, active["relationships"], 1)

	rec = do(t, router, http.MethodGet, "/api/patrons/alan/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["connections"], 2)

	rec = do(t, router, http.MethodPost, "/api/relationships/end", envelope{
		"viewer_id": "beth",
		"other_id":  "alan",
		"type":      "personal",
		"category":  "Friend",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/patrons/alan/relationships", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["relationships"], 2)

	rec = do(t, router, http.MethodDelete, "/api/relationships/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "relationship_not_found", errorCode(t, rec))
}

func TestHouseholdLinkEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/household-links", envelope{"viewer_id": "alan", "candidate_id": "beth"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	link := decode(t, rec)
	linkID := link["id"].(string)
	assert.Equal(t, "create_household", link["stage"])

	rec = do(t, router, http.MethodPost, "/api/household-links/"+linkID+"/approve", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_link_transition", errorCode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/household-links/"+linkID+"/complete", envelope{
		"household_name": "Smith Family",
		"candidate_role": "Wife",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rel := decode(t, rec)
	assert.Equal(t, "household", rel["type"])
	assert.Equal(t, "Wife", rel["to_label"])
	assert.Equal(t, "Husband", rel["from_label"])

	rec = do(t, router, http.MethodGet, "/api/household-links/"+linkID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "link_not_found", errorCode(t, rec))
}

func TestHistoryEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/context", envelope{"patron_id": "alan"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alan", decode(t, rec)["viewer_id"])

	rec = do(t, router, http.MethodPost, "/api/relationships", envelope{
		"from_patron_id": "alan",
		"to_patron_id":   "cara",
		"type":           "personal",
		"role":           "Neighbor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/history/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	undo := decode(t, rec)
	assert.Equal(t, true, undo["applied"])
	assert.Equal(t, true, undo["history"].(map[string]interface{})["can_redo"])

	rec = do(t, router, http.MethodGet, "/api/patrons/alan/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["connections"], 0)

	rec = do(t, router, http.MethodPost, "/api/history/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["applied"])

	rec = do(t, router, http.MethodDelete, "/api/history", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/history/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["applied"])

	rec = do(t, router, http.MethodPut, "/api/context", envelope{"patron_id": "nobody"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/roles/reciprocal?label=Father&gender=female", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Daughter", body["reciprocal"])
	assert.Equal(t, "parent-child", body["category"])

	rec = do(t, router, http.MethodGet, "/api/roles/resolve?label=Best%20Buddy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["known"])
	assert.Equal(t, "custom", body["category"])

	rec = do(t, router, http.MethodGet, "/api/roles/catalogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["catalogs"], 4)
	assert.Equal(t, "Other", body["other"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/patrons", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	log := logger.Nop()
	service := relationsdomain.NewService(nil, nil, log, relationsdomain.Options{})
	cfg := config.Config{Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"}}
	router := httpserver.NewRouter(cfg, handler.New(service, log), log)

	rec := do(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `patron_graph_http_requests_total{method="GET",route="/api/health",status_code="200"}`)
}
