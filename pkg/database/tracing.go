package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dbTracerName = "github.com/mochaaless/p4Backend/pkg/database"

// slowQueryLog, when set, makes TraceQuery warn about queries that run longer
// than the threshold.
type slowQueryLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowLog atomic.Pointer[slowQueryLog]

// SetSlowQueryLogging enables slow-query warnings. A non-positive threshold
// turns them off again.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowLog.Store(nil)
		return
	}
	slowLog.Store(&slowQueryLog{threshold: threshold, logger: logger})
}

// TraceQuery opens a client span around a database operation. Call the
// returned func with the operation's error when it finishes:
//
//	ctx, end := database.TraceQuery(ctx, "CreateFromCart", decrementQuery)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		cfg := slowLog.Load()
		if cfg == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= cfg.threshold {
			attrs := []any{
				slog.String("operation", operation),
				slog.Duration("duration", elapsed),
				slog.String("statement", statement),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			cfg.logger.WarnContext(ctx, "slow query", attrs...)
		}
	}
}
