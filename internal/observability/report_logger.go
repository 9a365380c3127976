package observability

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/masoncl/review-reply/internal/usecase/report"
)

// ReportLogger adapts a zerolog logger to the report.Logger port so the
// compile pipeline can emit warnings without depending on zerolog.
type ReportLogger struct {
	logger zerolog.Logger
}

// NewReportLogger creates a logger adapter for the report pipeline.
func NewReportLogger(logger zerolog.Logger) report.Logger {
	return &ReportLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *ReportLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(message)
}

// LogInfo logs an informational message with structured fields.
func (l *ReportLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(message)
}
