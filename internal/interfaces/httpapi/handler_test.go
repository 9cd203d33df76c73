package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	quoteinfra "github.com/riskibarqy/trading-tournament/internal/infrastructure/quote"
	"github.com/riskibarqy/trading-tournament/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type envelope struct {
	Data  map[string]any `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewFake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	logger := logging.NewNop()
	quotes := quoteinfra.NewStaticProvider(map[string]decimal.Decimal{
		"AAPL": decimal.RequireFromString("100"),
	}, clk)
	ids := id.NewUUIDGenerator()

	ledger := usecase.NewLedger(ids, clk)
	machine := usecase.NewStateMachine(ledger, clk, tournament.AnchorCreatedAt)
	valuator := usecase.NewPortfolioValuator(store, quotes, usecase.ValuatorConfig{QuoteTimeout: time.Second}, logger)
	settlements := usecase.NewSettlementService(store, machine, usecase.NewSettlementEngine(ledger, logger), valuator, nil, logger)

	handler := NewHandler(Services{
		Tournaments:  usecase.NewTournamentService(store, machine, ledger, ids, id.NewRandomCodeGenerator(tournament.CodeLength), nil, logger),
		Trading:      usecase.NewTradingService(store, machine, valuator, quotes, ids, time.Second, logger),
		Valuator:     valuator,
		Wallets:      usecase.NewWalletService(store, ledger, logger),
		Achievements: usecase.NewAchievementService(store),
		Sweeps:       usecase.NewSweepService(store, machine, settlements, nil, usecase.SweepConfig{Workers: 1}, logger),
	}, tournament.AnchorCreatedAt, logger)

	verifier := staticVerifier{
		"alice-token": {UserID: "alice", Role: user.RoleMember},
		"bob-token":   {UserID: "bob", Role: user.RoleMember},
		"admin-token": {UserID: "ops", Role: user.RoleAdmin},
	}
	return NewRouter(handler, verifier, logger, nil), store
}

func call(t *testing.T, router http.Handler, method, path, token, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: unmarshal body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestRouter_TournamentTradingFlow(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)
	store.SeedWallet("alice", decimal.RequireFromString("50"))

	code, resp := call(t, router, http.MethodPost, "/v1/admin/wallets/deposit", "admin-token", `{"user_id":"bob","amount":"40"}`)
	if code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d", code)
	}
	if got := resp.Data["balance"]; got != "40.00" {
		t.Fatalf("deposit: expected balance 40.00, got %v", got)
	}

	code, resp = call(t, router, http.MethodPost, "/v1/tournaments", "alice-token",
		`{"name":"Spring cup","max_players":4,"starting_balance":"1000","buy_in_amount":"10"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	tournamentID, _ := resp.Data["id"].(string)
	joinCode, _ := resp.Data["code"].(string)
	if tournamentID == "" || len(joinCode) != tournament.CodeLength {
		t.Fatalf("create: unexpected identity id=%q code=%q", tournamentID, joinCode)
	}
	if got := resp.Data["status"]; got != string(tournament.StatusActive) {
		t.Fatalf("create: expected active status, got %v", got)
	}

	code, _ = call(t, router, http.MethodPost, "/v1/tournaments/join", "bob-token", fmt.Sprintf(`{"code":%q}`, joinCode))
	if code != http.StatusCreated {
		t.Fatalf("join by code: expected 201, got %d", code)
	}

	code, resp = call(t, router, http.MethodPost, "/v1/tournaments/"+tournamentID+"/trades/buy", "bob-token", `{"symbol":"aapl","shares":"3"}`)
	if code != http.StatusOK {
		t.Fatalf("buy: expected 200, got %d", code)
	}
	if got := resp.Data["cash_balance"]; got != "700.00" {
		t.Fatalf("buy: expected cash 700.00, got %v", got)
	}

	code, resp = call(t, router, http.MethodPost, "/v1/tournaments/"+tournamentID+"/trades/sell", "bob-token", `{"symbol":"AAPL","shares":"5"}`)
	if code != http.StatusUnprocessableEntity || resp.Error == nil || resp.Error.Status != "FAILED_PRECONDITION" {
		t.Fatalf("oversell: expected 422 FAILED_PRECONDITION, got %d %+v", code, resp.Error)
	}

	code, resp = call(t, router, http.MethodGet, "/v1/tournaments/"+tournamentID+"/portfolio", "bob-token", "")
	if code != http.StatusOK {
		t.Fatalf("portfolio: expected 200, got %d", code)
	}
	if got := resp.Data["total_value"]; got != "1000.00" {
		t.Fatalf("portfolio: expected total 1000.00, got %v", got)
	}

	code, resp = call(t, router, http.MethodGet, "/v1/me/wallet", "bob-token", "")
	if code != http.StatusOK {
		t.Fatalf("wallet: expected 200, got %d", code)
	}
	if got := resp.Data["balance"]; got != "30.00" {
		t.Fatalf("wallet: expected balance 30.00 after buy-in, got %v", got)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{name: "missing token", method: http.MethodGet, path: "/v1/me/wallet", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodGet, path: "/v1/me/wallet", token: "nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown tournament", method: http.MethodGet, path: "/v1/tournaments/missing", token: "alice-token", wantStatus: http.StatusNotFound},
		{name: "deposit as member", method: http.MethodPost, path: "/v1/admin/wallets/deposit", token: "alice-token", body: `{"user_id":"alice","amount":"5"}`, wantStatus: http.StatusForbidden},
		{name: "sweep as member", method: http.MethodPost, path: "/v1/admin/sweeps", token: "alice-token", wantStatus: http.StatusForbidden},
		{name: "unknown field", method: http.MethodPost, path: "/v1/tournaments", token: "alice-token", body: `{"name":"x","max_players":2,"starting_balance":"1","extra":true}`, wantStatus: http.StatusBadRequest},
		{name: "too few players", method: http.MethodPost, path: "/v1/tournaments", token: "alice-token", body: `{"name":"x","max_players":1,"starting_balance":"1"}`, wantStatus: http.StatusBadRequest},
		{name: "buy-in without funds", method: http.MethodPost, path: "/v1/tournaments", token: "alice-token", body: `{"name":"x","max_players":2,"starting_balance":"1","buy_in_amount":"5"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad code", method: http.MethodPost, path: "/v1/tournaments/join", token: "alice-token", body: `{"code":"short"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := call(t, router, tt.method, tt.path, tt.token, tt.body)
			if code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, code)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantStatus {
				t.Fatalf("expected error envelope with code %d, got %+v", tt.wantStatus, resp.Error)
			}
		})
	}
}

func TestRouter_SweepAndCatalog(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	code, resp := call(t, router, http.MethodPost, "/v1/admin/sweeps", "admin-token", "")
	if code != http.StatusOK {
		t.Fatalf("sweep: expected 200, got %d", code)
	}
	if skipped, _ := resp.Data["skipped"].(bool); skipped {
		t.Fatalf("sweep: did not expect a skipped pass")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/achievements/catalog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog: expected 200, got %d", rec.Code)
	}
	var body struct {
		Data []achievementDefinitionDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("catalog: unmarshal: %v", err)
	}
	if len(body.Data) == 0 {
		t.Fatalf("catalog: expected definitions")
	}
}
