package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hotelmend/ticket-service/internal/api/http/handlers"
	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/observability"
	"github.com/hotelmend/ticket-service/internal/persistence"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
	"github.com/hotelmend/ticket-service/internal/repository"
	"github.com/hotelmend/ticket-service/internal/service"
)

const (
	testAccessSecret = "hotel-secret"
	testAdminSecret  = "admin-secret"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemory()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	locations := service.NewReferenceService(repository.NewReferenceRepository(store, domain.ReferenceLocations), dispatcher, nil)
	repairTypes := service.NewReferenceService(repository.NewReferenceRepository(store, domain.ReferenceRepairTypes), dispatcher, nil)
	if _, err := locations.Seed(ctx, []string{"Gimnàs", "Piscina"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repairTypes.Seed(ctx, []string{"Elèctric", "Lampisteria"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	engine := service.NewTicketEngine(service.TicketEngineDependencies{
		TicketRepo:  repository.NewTicketRepository(store),
		HistoryRepo: repository.NewTicketHistoryRepository(store),
		Locations:   locations,
		RepairTypes: repairTypes,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
	})
	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	suggester := service.NewSuggestionService(service.SuggestionDependencies{Source: engine, Timeout: time.Second})

	tokens := auth.NewTokenManager("router-test-key", time.Hour)
	access, err := service.NewAccessService(config.AuthConfig{
		BcryptCost:       bcrypt.MinCost,
		AccessSecret:     testAccessSecret,
		SuperadminSecret: testAdminSecret,
	}, service.AccessDependencies{
		CodeRepo:   repository.NewMemoryAccessCodeRepository(),
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("access service: %v", err)
	}
	activity := service.NewActivityService(dispatcher, nil, 10)
	activity.RegisterHandlers()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", []persistence.Check{{Name: "documents", Ping: store.Ping}}, access.ConfigProblems),
		Auth:           handlers.NewAuthHandler(access),
		Tickets:        handlers.NewTicketsHandler(engine, suggester),
		References:     handlers.NewReferencesHandler(locations, repairTypes),
		Admin:          handlers.NewAdminHandler(access, activity),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func login(t *testing.T, app *fiber.App, path string, payload map[string]string) string {
	t.Helper()
	status, body := call(t, app, nethttp.MethodPost, path, "", payload)
	if status != nethttp.StatusOK {
		t.Fatalf("login %s: status %d body %v", path, status, body)
	}
	data := body["data"].(map[string]any)
	return data["access_token"].(string)
}

func createTicket(t *testing.T, app *fiber.App, token, desc, importance string) string {
	t.Helper()
	status, body := call(t, app, nethttp.MethodPost, "/tickets", token, map[string]any{
		"description": desc,
		"location":    map[string]any{"name": "gimnàs"},
		"repair_type": map[string]any{"name": "Elèctric"},
		"importance":  importance,
	})
	if status != nethttp.StatusCreated {
		t.Fatalf("create ticket: status %d body %v", status, body)
	}
	return body["data"].(map[string]any)["id"].(string)
}

func listIDs(t *testing.T, app *fiber.App, token, query string) []string {
	t.Helper()
	status, body := call(t, app, nethttp.MethodGet, "/tickets"+query, token, nil)
	if status != nethttp.StatusOK {
		t.Fatalf("list: status %d body %v", status, body)
	}
	var out []string
	for _, item := range body["data"].([]any) {
		out = append(out, item.(map[string]any)["id"].(string))
	}
	return out
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, nethttp.MethodGet, "/tickets", "", nil)
	if status != nethttp.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %v", status, body)
	}
}

func TestLoginRejectsUnknownCode(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{"code": "guess"})
	if status != nethttp.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %v", status, body)
	}

	status, body = call(t, app, nethttp.MethodPost, "/auth/check", "", map[string]string{"code": "guess"})
	if status != nethttp.StatusOK || body["success"] != false || body["message"] == "" {
		t.Fatalf("unexpected check response %d %v", status, body)
	}
}

func TestTicketLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})

	low := createTicket(t, app, token, "Bombeta fosa al vestuari", "LOW_IMPORTANCE")
	urgent := createTicket(t, app, token, "Curtcircuit a la sala de màquines", "URGENT")

	if got := listIDs(t, app, token, ""); len(got) != 2 || got[0] != urgent || got[1] != low {
		t.Fatalf("unexpected default order %v", got)
	}

	status, body := call(t, app, nethttp.MethodPut, "/tickets/"+urgent+"/status", token, map[string]string{"status": "CLOSED"})
	if status != nethttp.StatusOK {
		t.Fatalf("set status: %d %v", status, body)
	}
	if got := listIDs(t, app, token, ""); len(got) != 1 || got[0] != low {
		t.Fatalf("closed ticket must be hidden by default, got %v", got)
	}
	if got := listIDs(t, app, token, "?status="); len(got) != 2 {
		t.Fatalf("empty status must lift the constraint, got %v", got)
	}
	if got := listIDs(t, app, token, "?status=CLOSED"); len(got) != 1 || got[0] != urgent {
		t.Fatalf("unexpected closed list %v", got)
	}

	status, body = call(t, app, nethttp.MethodGet, "/tickets/"+urgent+"/history", token, nil)
	if status != nethttp.StatusOK || len(body["data"].([]any)) != 2 {
		t.Fatalf("unexpected history %d %v", status, body)
	}

	if status, _ := call(t, app, nethttp.MethodDelete, "/tickets/"+urgent, token, nil); status != nethttp.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", status)
	}
	status, body = call(t, app, nethttp.MethodDelete, "/tickets/"+urgent, token, nil)
	if status != nethttp.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("second delete: expected 404, got %d %v", status, body)
	}
}

func TestCreateTicketValidationShape(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})

	status, body := call(t, app, nethttp.MethodPost, "/tickets", token, map[string]any{
		"description": "curt",
		"location":    map[string]any{"name": "Gimnàs"},
		"repair_type": map[string]any{"name": "Elèctric"},
		"importance":  "URGENT",
	})
	if status != nethttp.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected 400 VALIDATION_FAILED, got %d %v", status, body)
	}
	details := body["error"].(map[string]any)["details"].(map[string]any)
	fields := details["fields"].(map[string]any)
	if _, ok := fields["description"]; !ok || len(fields) != 1 {
		t.Fatalf("expected only description to be reported, got %v", fields)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})
	id := createTicket(t, app, token, "La llum del passadís parpelleja", "IMPORTANT")

	status, body := call(t, app, nethttp.MethodPost, "/suggestions", token, map[string]string{"description": "Parpelleja la llum de recepció"})
	if status != nethttp.StatusOK {
		t.Fatalf("suggest: %d %v", status, body)
	}
	data := body["data"].([]any)
	if len(data) != 1 || data[0].(map[string]any)["ticket_id"] != id {
		t.Fatalf("unexpected suggestions %v", data)
	}

	status, body = call(t, app, nethttp.MethodPost, "/suggestions", token, map[string]string{"description": "curt"})
	if status != nethttp.StatusOK || len(body["data"].([]any)) != 0 {
		t.Fatalf("short description must yield an empty list, got %d %v", status, body)
	}
}

func TestSettingsRejectDuplicateNames(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})

	status, body := call(t, app, nethttp.MethodPost, "/settings/repair-types", token, map[string]string{"name": "elèctric"})
	if status != nethttp.StatusConflict || errorCode(body) != "CONFLICT" {
		t.Fatalf("expected 409 CONFLICT, got %d %v", status, body)
	}

	status, body = call(t, app, nethttp.MethodPost, "/settings/locations", token, map[string]string{"name": "Terrassa"})
	if status != nethttp.StatusCreated {
		t.Fatalf("create location: %d %v", status, body)
	}
	id := body["data"].(map[string]any)["id"].(string)

	status, body = call(t, app, nethttp.MethodGet, "/settings/locations", token, nil)
	if status != nethttp.StatusOK || len(body["data"].([]any)) != 3 {
		t.Fatalf("unexpected locations %d %v", status, body)
	}
	if status, _ := call(t, app, nethttp.MethodDelete, "/settings/locations/"+id, token, nil); status != nethttp.StatusNoContent {
		t.Fatalf("delete location: expected 204, got %d", status)
	}
	if status, _ := call(t, app, nethttp.MethodGet, "/settings/floors", token, nil); status != nethttp.StatusNotFound {
		t.Fatalf("unknown list: expected 404, got %d", status)
	}
}

func TestAdminCodeManagement(t *testing.T) {
	app := newTestApp(t)
	userToken := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})
	if status, _ := call(t, app, nethttp.MethodGet, "/admin/codes", userToken, nil); status != nethttp.StatusForbidden {
		t.Fatalf("user session on admin route: expected 403, got %d", status)
	}

	adminToken := login(t, app, "/auth/admin/login", map[string]string{"password": testAdminSecret})

	status, body := call(t, app, nethttp.MethodPost, "/admin/codes", adminToken, map[string]string{"password": "guest-42"})
	if status != nethttp.StatusCreated || body["message"] == "" {
		t.Fatalf("issue code: %d %v", status, body)
	}
	if status, _ := call(t, app, nethttp.MethodPost, "/admin/codes", adminToken, map[string]string{"password": "guest-42"}); status != nethttp.StatusConflict {
		t.Fatalf("duplicate code: expected 409, got %d", status)
	}

	status, body = call(t, app, nethttp.MethodPost, "/admin/codes", adminToken, nil)
	if status != nethttp.StatusCreated || body["data"].(map[string]any)["generated"] != true {
		t.Fatalf("generated code: %d %v", status, body)
	}

	status, body = call(t, app, nethttp.MethodPost, "/auth/check", "", map[string]string{"code": "guest-42"})
	if status != nethttp.StatusOK || body["success"] != true {
		t.Fatalf("issued code must pass check, got %d %v", status, body)
	}

	if status, _ := call(t, app, nethttp.MethodDelete, "/admin/codes", adminToken, map[string]string{"password": "guest-42"}); status != nethttp.StatusOK {
		t.Fatalf("revoke: expected 200, got %d", status)
	}
	if status, _ := call(t, app, nethttp.MethodDelete, "/admin/codes", adminToken, map[string]string{"password": "guest-42"}); status != nethttp.StatusNotFound {
		t.Fatalf("revoke missing: expected 404, got %d", status)
	}

	status, body = call(t, app, nethttp.MethodGet, "/admin/activity", adminToken, nil)
	if status != nethttp.StatusOK || len(body["data"].([]any)) != 3 {
		t.Fatalf("unexpected activity %d %v", status, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	status, body := call(t, app, nethttp.MethodGet, "/health/ready", "", nil)
	if status != nethttp.StatusOK || body["status"] != "ready" {
		t.Fatalf("unexpected readiness %d %v", status, body)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != nethttp.StatusOK || !bytes.Contains(raw, []byte("http_requests_total")) {
		t.Fatalf("unexpected metrics response %d", resp.StatusCode)
	}
}

func TestTicketFilterAcceptsLabelsWithCommas(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "/auth/login", map[string]string{"code": testAccessSecret})

	gym := createTicket(t, app, token, "Bombeta fosa al vestuari", "LOW_IMPORTANCE")
	status, body := call(t, app, nethttp.MethodPost, "/tickets", token, map[string]any{
		"description": "Para-sol trencat a la terrassa del bar",
		"location":    map[string]any{"name": "Bar, terrassa", "custom": true},
		"repair_type": map[string]any{"name": "General", "custom": true},
		"importance":  "IMPORTANT",
	})
	if status != nethttp.StatusCreated {
		t.Fatalf("create ticket: status %d body %v", status, body)
	}
	bar := body["data"].(map[string]any)["id"].(string)

	if got := listIDs(t, app, token, "?location=Bar%2C%20terrassa"); len(got) != 1 || got[0] != bar {
		t.Fatalf("expected only the bar ticket, got %v", got)
	}
	if got := listIDs(t, app, token, "?location=Bar%2C%20terrassa&location=Gimn%C3%A0s"); len(got) != 2 {
		t.Fatalf("expected both tickets with a repeated parameter, got %v", got)
	}
	if got := listIDs(t, app, token, "?location=Gimn%C3%A0s"); len(got) != 1 || got[0] != gym {
		t.Fatalf("expected only the gym ticket, got %v", got)
	}
}
