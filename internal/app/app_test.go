package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/config"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                     config.EnvDev,
		ServiceName:                "trading-tournament-test",
		HTTPAddr:                   ":0",
		ReadTimeout:                time.Second,
		WriteTimeout:               time.Second,
		CORSAllowedOrigins:         []string{"*"},
		StorageDriver:              config.StorageMemory,
		SchedulerInterval:          time.Minute,
		SchedulerPassTimeout:       30 * time.Second,
		SchedulerWorkers:           2,
		SchedulerTournamentTimeout: 10 * time.Second,
		ExpiryAnchor:               tournament.AnchorCreatedAt,
		QuoteProvider:              config.QuoteProviderStatic,
		QuoteTimeout:               time.Second,
		QuoteCacheTTL:              time.Second,
		QuoteMaxConcurrency:        2,
		AuthJWTSecret:              "test-secret",
	}
}

func TestNew_MemoryStorageServesHealth(t *testing.T) {
	a, err := New(t.Context(), testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Shutdown(t.Context()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	if a.scheduler != nil {
		t.Fatalf("expected scheduler to stay disabled")
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rec.Code)
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ""
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestNew_BuildsScheduler(t *testing.T) {
	cfg := testConfig()
	cfg.SchedulerEnabled = true

	a, err := New(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if a.scheduler == nil {
		t.Fatalf("expected scheduler to be built")
	}
	if err := a.Shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
