package app

import (
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

const maxTracedStatementLength = 512

var (
	statementWhitespace = regexp.MustCompile(`\s+`)
	// four or more consecutive placeholders, as produced by IN lists and
	// multi-row inserts
	placeholderRun = regexp.MustCompile(`(\$\d+)(?:, \$\d+){3,}`)
)

// formatDBQueryForTrace records a statement on one line with long placeholder
// lists folded, so spans for the same repository call group together.
// Statements only carry placeholders; bind values never reach the span.
func formatDBQueryForTrace(query string) string {
	q := strings.TrimSpace(statementWhitespace.ReplaceAllString(query, " "))
	q = placeholderRun.ReplaceAllString(q, "${1}, ...")
	if len(q) > maxTracedStatementLength {
		q = q[:maxTracedStatementLength] + "..."
	}
	return q
}

func dbTraceAttributes(serviceName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.client.service", serviceName),
	}
}
