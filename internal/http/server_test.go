package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zenfin/internal/services"
	"zenfin/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	tx := services.NewTransactionService(st, nil)
	cm := services.NewCommitmentService(st, tx)
	lm := services.NewLimitService(st, tx)
	s := NewServer(":0", tx, cm, lm, nil)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, s, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rr.Code)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Feira da semana",
		"amount":      "123,45",
		"date":        "2025-03-10",
		"kind":        "EXPENSE",
		"category":    "Mercado",
		"recurrence":  "UNIQUE",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rr.Code, rr.Body.String())
	}
	created := decode[transactionJSON](t, rr)
	if created.ID == "" {
		t.Error("created transaction has no id")
	}
	if created.AmountCents != 12345 {
		t.Errorf("amount_cents = %d, want 12345", created.AmountCents)
	}
	if !created.IsPaid {
		t.Error("unique expense should be paid at creation")
	}
}

func TestCreateTransactionRecurringExpenseStartsPending(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Aluguel de março",
		"amount":      "1200,00",
		"date":        "2025-03-01",
		"kind":        "EXPENSE",
		"category":    "Aluguel",
		"recurrence":  "RECURRING",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rr.Code, rr.Body.String())
	}
	if created := decode[transactionJSON](t, rr); created.IsPaid {
		t.Error("recurring expense should start pending")
	}
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{"bad amount", map[string]string{"amount": "abc", "date": "2025-03-10", "kind": "EXPENSE", "category": "Mercado"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]string{"amount": "10,00", "date": "10/03/2025", "kind": "EXPENSE", "category": "Mercado"}, http.StatusUnprocessableEntity},
		{"unknown category", map[string]string{"amount": "10,00", "date": "2025-03-10", "kind": "EXPENSE", "category": "Nada"}, http.StatusUnprocessableEntity},
		{"bad kind", map[string]string{"amount": "10,00", "date": "2025-03-10", "kind": "TRANSFER", "category": "Mercado"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, s, http.MethodPost, "/api/transactions", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d, body %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rr.Code)
	}
}

func TestTogglePaid(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Conta de luz",
		"amount":      "180,00",
		"date":        "2025-03-05",
		"kind":        "EXPENSE",
		"category":    "Luz",
		"recurrence":  "RECURRING",
	})
	created := decode[transactionJSON](t, rr)

	rr = doJSON(t, s, http.MethodPost, "/api/transactions/"+created.ID+"/toggle-paid", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body %s", rr.Code, rr.Body.String())
	}
	if toggled := decode[transactionJSON](t, rr); !toggled.IsPaid {
		t.Error("toggle should have marked the transaction paid")
	}

	rr = doJSON(t, s, http.MethodPost, "/api/transactions/nope/toggle-paid", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("toggle unknown id = %d, want 404", rr.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Salário", "amount": "5000,00", "date": "2025-03-01",
		"kind": "INCOME", "category": "Salário",
	})
	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Feira", "amount": "800,00", "date": "2025-03-10",
		"kind": "EXPENSE", "category": "Mercado",
	})

	rr := doJSON(t, s, http.MethodGet, "/api/dashboard?year=2025&month=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard = %d, body %s", rr.Code, rr.Body.String())
	}
	dash := decode[dashboardResponse](t, rr)
	if dash.Summary.IncomeCents != 500000 {
		t.Errorf("income = %d, want 500000", dash.Summary.IncomeCents)
	}
	if dash.Summary.ExpenseCents != 80000 {
		t.Errorf("expense = %d, want 80000", dash.Summary.ExpenseCents)
	}
	if dash.Summary.BalanceCents != 420000 {
		t.Errorf("balance = %d, want 420000", dash.Summary.BalanceCents)
	}
	if len(dash.Trend) != 6 {
		t.Errorf("trend points = %d, want 6", len(dash.Trend))
	}
	if len(dash.Distribution.Slices) != 1 || dash.Distribution.Slices[0].Category != "Mercado" {
		t.Errorf("unexpected distribution: %+v", dash.Distribution)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/dashboard?month=13", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid month = %d, want 422", rr.Code)
	}
}

func TestReportConfirmFlow(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodGet, "/api/report?year=2025&month=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report = %d, body %s", rr.Code, rr.Body.String())
	}
	rep := decode[reportResponse](t, rr)
	if len(rep.Commitments) != 9 {
		t.Fatalf("commitments = %d, want 9 seeded", len(rep.Commitments))
	}
	for _, c := range rep.Commitments {
		if c.Status != "MISSING" {
			t.Errorf("commitment %s status = %s, want MISSING", c.Category, c.Status)
		}
	}

	rr = doJSON(t, s, http.MethodPost, "/api/report/confirm", map[string]any{
		"category": "Aluguel", "year": 2025, "month": 3,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("confirm = %d, body %s", rr.Code, rr.Body.String())
	}
	materialized := decode[transactionJSON](t, rr)
	if materialized.Date != "2025-03-01" {
		t.Errorf("materialized date = %s, want 2025-03-01", materialized.Date)
	}
	if materialized.IsPaid {
		t.Error("materialized commitment should start pending")
	}

	// The confirm must be visible immediately despite the report cache.
	rr = doJSON(t, s, http.MethodGet, "/api/report?year=2025&month=3", nil)
	rep = decode[reportResponse](t, rr)
	found := false
	for _, c := range rep.Commitments {
		if c.Category == "Aluguel" {
			found = true
			if c.Status != "PENDING" {
				t.Errorf("Aluguel status after confirm = %s, want PENDING", c.Status)
			}
		}
	}
	if !found {
		t.Error("Aluguel commitment missing from report")
	}

	rr = doJSON(t, s, http.MethodPost, "/api/report/confirm", map[string]any{
		"category": "Mercado", "year": 2025, "month": 3,
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("confirm untemplated category = %d, want 404", rr.Code)
	}
}

func TestTemplateEndpoints(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodGet, "/api/templates", nil)
	tpls := decode[[]templateJSON](t, rr)
	if len(tpls) != 9 {
		t.Fatalf("templates = %d, want 9", len(tpls))
	}

	rr = doJSON(t, s, http.MethodPost, "/api/templates/Academia/toggle", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body %s", rr.Code, rr.Body.String())
	}
	if tpl := decode[templateJSON](t, rr); tpl.IsActive {
		t.Error("toggle should have deactivated the template")
	}

	rr = doJSON(t, s, http.MethodPut, "/api/templates/Internet/amount", map[string]string{"amount": "99,90"})
	if rr.Code != http.StatusOK {
		t.Fatalf("set amount = %d, body %s", rr.Code, rr.Body.String())
	}
	if tpl := decode[templateJSON](t, rr); tpl.DefaultAmountCents != 9990 {
		t.Errorf("default amount = %d, want 9990", tpl.DefaultAmountCents)
	}

	rr = doJSON(t, s, http.MethodPost, "/api/templates/Mercado/toggle", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("toggle untemplated = %d, want 404", rr.Code)
	}
}

func TestLimitEndpoints(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Cinema", "amount": "60,00", "date": "2025-03-08",
		"kind": "EXPENSE", "category": "Lazer e Hobbies",
	})

	rr := doJSON(t, s, http.MethodPost, "/api/limits", map[string]string{
		"category": "Lazer e Hobbies", "limit": "200,00",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("save limit = %d, body %s", rr.Code, rr.Body.String())
	}
	saved := decode[limitStatusJSON](t, rr)
	if saved.ID == "" {
		t.Error("saved limit has no id")
	}

	rr = doJSON(t, s, http.MethodGet, "/api/limits?year=2025&month=3", nil)
	view := decode[[]limitStatusJSON](t, rr)
	if len(view) != 1 {
		t.Fatalf("limits = %d, want 1", len(view))
	}
	if view[0].SpentCents != 6000 {
		t.Errorf("spent = %d, want 6000", view[0].SpentCents)
	}
	if view[0].Ratio != 0.3 {
		t.Errorf("ratio = %v, want 0.3", view[0].Ratio)
	}

	rr = doJSON(t, s, http.MethodPost, "/api/limits", map[string]string{
		"category": "Lazer e Hobbies", "limit": "0,00",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero limit = %d, want 422", rr.Code)
	}

	rr = doJSON(t, s, http.MethodDelete, "/api/limits/"+saved.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", rr.Code)
	}
	rr = doJSON(t, s, http.MethodDelete, "/api/limits/"+saved.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", rr.Code)
	}
}

func TestChartEndpoints(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodGet, "/api/charts/trend?year=2025&month=3", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("empty trend = %d, want 204", rr.Code)
	}
	rr = doJSON(t, s, http.MethodGet, "/api/charts/distribution?year=2025&month=3", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("empty distribution = %d, want 204", rr.Code)
	}

	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Feira", "amount": "150,00", "date": "2025-03-10",
		"kind": "EXPENSE", "category": "Mercado",
	})
	doJSON(t, s, http.MethodPost, "/api/transactions", map[string]string{
		"description": "Farmácia", "amount": "50,00", "date": "2025-03-11",
		"kind": "EXPENSE", "category": "Saúde",
	})

	for _, path := range []string{"/api/charts/trend", "/api/charts/distribution"} {
		rr = doJSON(t, s, http.MethodGet, path+"?year=2025&month=3", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s content type = %s, want image/png", path, ct)
		}
		if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s body is not a PNG", path)
		}
	}
}

func TestSuggestWithoutProducer(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/suggest/image", strings.NewReader("fake-jpeg"))
	rr := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("suggest without producer = %d, want 503", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rr := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("request 61 within a minute should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("different client should not share the bucket")
	}
}

func TestLRUCache(t *testing.T) {
	c := newLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	if _, found := c.Get("a"); found {
		t.Error("oldest entry should have been evicted")
	}
	if v, found := c.Get("c"); !found || v != "3" {
		t.Errorf("Get(c) = %q, %v", v, found)
	}

	c.Purge()
	if _, found := c.Get("c"); found {
		t.Error("purge should drop every entry")
	}
}

func TestMonthParamValidation(t *testing.T) {
	cases := []struct {
		query  string
		wantOK bool
	}{
		{"", true},
		{"?year=2025&month=3", true},
		{"?year=1969", false},
		{"?month=0", false},
		{"?month=13", false},
		{"?year=abc", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard"+tc.query, nil)
		_, err := monthParam(req)
		if (err == nil) != tc.wantOK {
			t.Errorf("monthParam(%q) err = %v, want ok=%v", tc.query, err, tc.wantOK)
		}
	}
}
