package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mresitgokce1/inventory-multi-brand-api/pkg/database"

// maxStatementLength caps the SQL recorded on spans and in slow query logs.
// Exporters reject or silently drop oversized attributes, so long generated
// queries are cut at a readable size instead.
const maxStatementLength = 1024

var slowQueryCfg struct {
	mu        sync.RWMutex
	threshold time.Duration
	logger    *slog.Logger
}

// SetSlowQueryLogging configures slow query detection. Queries running at
// least threshold are logged as warnings with their operation name, SQL
// statement and duration. A zero threshold or nil logger disables it.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueryCfg.mu.Lock()
	defer slowQueryCfg.mu.Unlock()
	slowQueryCfg.threshold = threshold
	slowQueryCfg.logger = logger
}

func getSlowQueryConfig() (time.Duration, *slog.Logger) {
	slowQueryCfg.mu.RLock()
	defer slowQueryCfg.mu.RUnlock()
	return slowQueryCfg.threshold, slowQueryCfg.logger
}

// TraceQuery starts a client span for a database operation and returns the
// derived context plus a completion callback. Repositories call it with a
// named error return so the deferred callback sees the final error:
//
//	func (r *ProductRepository) GetByID(ctx context.Context, id string) (product *domain.Product, err error) {
//		ctx, end := database.TraceQuery(ctx, "GetProduct", query)
//		defer func() { end(err) }()
//		...
//	}
//
// The callback records the error on the span and feeds slow query logging
// when enabled through SetSlowQueryLogging.
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", truncateStatement(statement)),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		logSlowQuery(ctx, operation, statement, time.Since(start), err)
	}
}

func truncateStatement(statement string) string {
	if len(statement) <= maxStatementLength {
		return statement
	}
	return statement[:maxStatementLength] + "..."
}

func logSlowQuery(ctx context.Context, operation, statement string, elapsed time.Duration, err error) {
	threshold, logger := getSlowQueryConfig()
	if threshold <= 0 || logger == nil || elapsed < threshold {
		return
	}

	attrs := []any{
		slog.String("operation", operation),
		slog.String("statement", truncateStatement(statement)),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.WarnContext(ctx, "slow query detected", attrs...)
}
