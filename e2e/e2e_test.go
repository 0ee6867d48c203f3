//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"patron-crm-go/internal/config"
	"patron-crm-go/internal/db"
	relationsdomain "patron-crm-go/internal/domain/relations"
	"patron-crm-go/internal/repository/inmemory"
	relationsrepo "patron-crm-go/internal/repository/postgres/relations"
	"patron-crm-go/internal/transport/httpserver"
	"patron-crm-go/internal/transport/httpserver/handler"
	"patron-crm-go/pkg/logger"
)

type testEnv struct {
	cfg    config.Config
	db     *gorm.DB
	server *httptest.Server
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	cfg := config.Config{
		Store: config.StoreConfig{Driver: config.DriverPostgres, DSN: dsn},
	}

	dbConn, err := db.Open(cfg.Store, logger.Nop())
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn, logger.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	env := &testEnv{cfg: cfg, db: dbConn}
	env.start(t)
	return env
}

// start serves a fresh service loaded from the database.
func (e *testEnv) start(t *testing.T) {
	t.Helper()

	if e.server != nil {
		e.server.Close()
	}
	log := logger.Nop()
	service := relationsdomain.NewService(relationsrepo.NewPostgres(e.db), inmemory.NewInMemoryLinkCache(), log, relationsdomain.Options{})
	if err := service.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	router := httpserver.NewRouter(e.cfg, handler.New(service, log), log)
	e.server = httptest.NewServer(router)
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE relationships, household_members, households, patrons",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

func expectStatus(t *testing.T, resp *http.Response, body []byte, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d: %s", status, resp.StatusCode, string(body))
	}
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type memberResponse struct {
	PatronID  string `json:"patron_id"`
	Role      string `json:"role"`
	IsPrimary bool   `json:"is_primary"`
}

type householdDetailsResponse struct {
	Household struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"household"`
	Members []memberResponse `json:"members"`
	Address *struct {
		City string `json:"city"`
	} `json:"address"`
}

type relationshipResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	FromLabel string  `json:"from_label"`
	ToLabel   string  `json:"to_label"`
	EndDate   *string `json:"end_date"`
}

type linkResponse struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
}

func TestE2EHouseholdLifecyclePersists(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	for _, p := range []map[string]interface{}{
		{"id": "alan", "first_name": "Alan", "last_name": "Smith", "gender": "male", "address": map[string]string{"line1": "1 Main St", "city": "Springfield"}},
		{"id": "beth", "first_name": "Beth", "last_name": "Smith", "gender": "female"},
		{"id": "cara", "first_name": "Cara", "last_name": "Jones", "gender": "female"},
		{"id": "dave", "first_name": "Dave", "last_name": "Jones", "gender": "male"},
	} {
		id := p["id"].(string)
		delete(p, "id")
		resp, body := requestJSON(t, client, http.MethodPut, env.server.URL+"/api/patrons/"+id, p)
		expectStatus(t, resp, body, http.StatusOK)
	}

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/households", map[string]string{
		"head_id":     "alan",
		"member_id":   "beth",
		"name":        "Smith Family",
		"member_role": "Wife",
	})
	expectStatus(t, resp, body, http.StatusCreated)

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/relationships", map[string]string{
		"from_patron_id": "alan",
		"to_patron_id":   "cara",
		"type":           "personal",
		"role":           "Neighbor",
	})
	expectStatus(t, resp, body, http.StatusCreated)

	env.start(t)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/patrons/beth/household", nil)
	expectStatus(t, resp, body, http.StatusOK)
	var details householdDetailsResponse
	if err := json.Unmarshal(body, &details); err != nil {
		t.Fatalf("decode household: %v", err)
	}
	if details.Household.Name != "Smith Family" || len(details.Members) != 2 {
		t.Fatalf("unexpected household after restart: %+v", details)
	}
	if details.Members[0].PatronID != "beth" || !details.Members[1].IsPrimary {
		t.Fatalf("unexpected member order: %+v", details.Members)
	}
	if details.Address == nil || details.Address.City != "Springfield" {
		t.Fatalf("expected head address, got %+v", details.Address)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/relationships", map[string]string{
		"from_patron_id": "alan",
		"to_patron_id":   "cara",
		"type":           "personal",
		"role":           "Neighbor",
	})
	expectStatus(t, resp, body, http.StatusConflict)
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "duplicate_relationship" {
		t.Fatalf("expected duplicate_relationship, got %q", errResp.Error.Code)
	}
}

func TestE2EHouseholdLinkTransfer(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	for _, id := range []string{"alan", "cara", "dave"} {
		resp, body := requestJSON(t, client, http.MethodPut, env.server.URL+"/api/patrons/"+id, map[string]string{"first_name": id})
		expectStatus(t, resp, body, http.StatusOK)
	}

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/households", map[string]string{
		"head_id":     "cara",
		"member_id":   "dave",
		"name":        "Jones Family",
		"member_role": "Spouse",
	})
	expectStatus(t, resp, body, http.StatusCreated)

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/household-links", map[string]string{
		"viewer_id":    "alan",
		"candidate_id": "cara",
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var link linkResponse
	if err := json.Unmarshal(body, &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if link.Stage != "conflict_detected" {
		t.Fatalf("expected conflict_detected, got %q", link.Stage)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/household-links/"+link.ID+"/approve", nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/household-links/"+link.ID+"/complete", map[string]string{
		"household_name": "Smith Family",
		"candidate_role": "Spouse",
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var rel relationshipResponse
	if err := json.Unmarshal(body, &rel); err != nil {
		t.Fatalf("decode relationship: %v", err)
	}
	if rel.Type != "household" || rel.Category != "spouse" {
		t.Fatalf("unexpected relationship: %+v", rel)
	}

	env.start(t)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/patrons/dave/household", nil)
	expectStatus(t, resp, body, http.StatusConflict)

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/history/undo", nil)
	expectStatus(t, resp, body, http.StatusOK)
	var undo struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(body, &undo); err != nil {
		t.Fatalf("decode undo: %v", err)
	}
	if undo.Applied {
		t.Fatalf("expected history to start empty after restart")
	}
}
