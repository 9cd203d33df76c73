package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Service: "tournament-engine", Output: &buf})

	logger.With("phase", "settle").ErrorContext(context.Background(), "settle tournament failed",
		"tournament_id", "t-1",
		"error", errors.New("boom"),
	)
	logger.Debug("dropped below level")

	out := buf.String()
	for _, want := range []string{`"msg":"settle tournament failed"`, `"tournament_id":"t-1"`, `"phase":"settle"`, `"error":"boom"`, `"service":"tournament-engine"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped below level") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if Default() == nil {
		t.Fatalf("default logger must never be nil")
	}
}
