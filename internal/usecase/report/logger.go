package report

import "context"

// Logger provides structured logging for the report pipeline. It is
// optional: the compiler stays silent when none is supplied. Warnings cover
// the recoverable conditions (oversized summary truncated, finding left
// unanchored); nothing fatal is ever merely logged.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}
