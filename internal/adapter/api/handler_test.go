package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"productcopy-core/internal/adapter/store"
	"productcopy-core/internal/usecase"
)

// scriptedGenerator grades every draft 8 so each run takes one round.
type scriptedGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	switch {
	case strings.Contains(prompt, "kwaliteitsbeoordelaar"):
		return "SCORE: 8\nFEEDBACK: Prima.", nil
	case strings.Contains(prompt, "meta-beschrijving"):
		return "Ontdek de espressomachine.", nil
	case strings.Contains(prompt, "SEO-titel"):
		return "Espressomachine kopen", nil
	}
	return "**Een** heerlijke espressomachine.", nil
}

func (g *scriptedGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testServer struct {
	app    *fiber.App
	gen    *scriptedGenerator
	ledger *store.SQLLedger
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	log := zap.NewNop()

	ledger, err := store.OpenLedger(context.Background(), store.DBOptions{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "ledger.db"),
	}, log)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	gen := &scriptedGenerator{}
	text := usecase.NewTextClient(gen, "test-model")
	refiner := usecase.NewRefiner(text, usecase.NewQualityEvaluator(text), usecase.DefaultRefinePolicy(), log)
	orch := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Service: "svc-test",
		Ledger:  ledger,
		Refiner: refiner,
		Text:    text,
		Logger:  log,
	})
	billing := usecase.NewBilling("svc-test", ledger, nil, log)

	app := fiber.New()
	h := NewHandler(ServiceInfo{Name: "svc-test", Title: "Test", Version: "0.0.1"}, orch, billing, nil, log)
	SetupRouter(app, h, RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Limiter:        store.NewMemoryLimiter(rateLimit, time.Minute),
		RateWindow:     time.Minute,
		Logger:         log,
	})
	return &testServer{app: app, gen: gen, ledger: ledger}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decoding body: %v", method, path, err)
	}
	return resp.StatusCode, out
}

const generateBody = `{"name":"Anna","email":"anna@example.com","product_name":"Espressomachine",
"product_features":"15 bar","target_audience":"thuisbarista's","tone":"speels"}`

func TestHealth(t *testing.T) {
	s := newTestServer(t, 10)
	status, body := s.do(t, http.MethodGet, "/health", "")
	if status != http.StatusOK || body["status"] != "ok" || body["service"] != "svc-test" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestGenerateThenPaymentRequired(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, http.MethodPost, "/api/v1/generate", generateBody)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if body["description"] != "Een heerlijke espressomachine." || body["seo_title"] != "Espressomachine kopen" {
		t.Errorf("unexpected result %v", body)
	}
	if body["rounds"] != float64(1) || body["score"] != float64(8) {
		t.Errorf("rounds/score = %v/%v", body["rounds"], body["score"])
	}

	calls := s.gen.count()
	status, body = s.do(t, http.MethodPost, "/api/v1/generate", generateBody)
	if status != http.StatusOK {
		t.Fatalf("pricing block status = %d", status)
	}
	if body["requires_payment"] != true || body["tier"] != "per_use" || body["price"] != 0.99 || body["request_count"] != float64(1) {
		t.Errorf("unexpected decision %v", body)
	}
	if s.gen.count() != calls {
		t.Error("a blocked request reached the generator")
	}

	status, body = s.do(t, http.MethodPost, "/webhook/stripe", `{"email":"anna@example.com","name":"Anna","tier":"per_use"}`)
	if status != http.StatusOK || body["status"] != "paid" || body["tier"] != "per_use" {
		t.Fatalf("webhook: %d %v", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/v1/generate", generateBody)
	if status != http.StatusOK || body["description"] == nil {
		t.Errorf("paid run: %d %v", status, body)
	}

	_, body = s.do(t, http.MethodGet, "/api/v1/stats", "")
	if body["total_generations"] != float64(2) {
		t.Errorf("stats = %v", body)
	}
}

func TestGenerateRejectsIncompleteRequest(t *testing.T) {
	s := newTestServer(t, 10)
	status, body := s.do(t, http.MethodPost, "/api/v1/generate", `{"email":"anna@example.com"}`)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, body %v", status, body)
	}
	if s.gen.count() != 0 {
		t.Error("invalid request reached the generator")
	}
}

func TestWebhookRejectsUnknownTier(t *testing.T) {
	s := newTestServer(t, 10)
	status, body := s.do(t, http.MethodPost, "/webhook/stripe", `{"email":"anna@example.com","tier":"gold"}`)
	if status != http.StatusBadRequest || body["detail"] != "Ongeldig tier" {
		t.Errorf("got %d %v", status, body)
	}
	if o := s.ledger.CountPerUsePayments(context.Background(), "anna@example.com"); o.Value != 0 {
		t.Errorf("invalid tier wrote a payment: %+v", o)
	}
	if o := s.ledger.HasUnlimitedPayment(context.Background(), "anna@example.com"); o.Value {
		t.Error("invalid tier wrote an unlimited payment")
	}
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t, 10)
	status, body := s.do(t, http.MethodPost, "/api/v1/checkout", `{"email":"anna@example.com","name":"Anna"}`)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestSimilarDisabled(t *testing.T) {
	s := newTestServer(t, 10)
	status, _ := s.do(t, http.MethodGet, "/api/v1/similar?q=koffie", "")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestRateLimitOnlyGuardsAPI(t *testing.T) {
	s := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if status, _ := s.do(t, http.MethodGet, "/api/v1/stats", ""); status != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, status)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(generateBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get(fiber.HeaderRetryAfter) != "60" {
		t.Errorf("Retry-After = %q", resp.Header.Get(fiber.HeaderRetryAfter))
	}
	if s.gen.count() != 0 {
		t.Error("a throttled request reached the generator")
	}

	if status, _ := s.do(t, http.MethodGet, "/health", ""); status != http.StatusOK {
		t.Errorf("health throttled: %d", status)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, 10)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}
