package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL includes bind variables in spans; development only
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus a callback that
// flags queries slower than the threshold on the span and in the log.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := newSlowQueryCallback(cfg.SlowQueryThresh, logger)
	cb := db.Callback()
	for _, reg := range []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("nexus:before_create", markStart) },
		func() error { return cb.Query().Before("gorm:query").Register("nexus:before_query", markStart) },
		func() error { return cb.Update().Before("gorm:update").Register("nexus:before_update", markStart) },
		func() error { return cb.Delete().Before("gorm:delete").Register("nexus:before_delete", markStart) },
		func() error { return cb.Raw().Before("gorm:raw").Register("nexus:before_raw", markStart) },
		func() error { return cb.Create().After("gorm:create").Register("nexus:slow_create", slow) },
		func() error { return cb.Query().After("gorm:query").Register("nexus:slow_query", slow) },
		func() error { return cb.Update().After("gorm:update").Register("nexus:slow_update", slow) },
		func() error { return cb.Delete().After("gorm:delete").Register("nexus:slow_delete", slow) },
		func() error { return cb.Raw().After("gorm:raw").Register("nexus:slow_raw", slow) },
	} {
		if err := reg(); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func newSlowQueryCallback(threshold time.Duration, logger *zap.Logger) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		if elapsed < threshold {
			return
		}
		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
			)
		}
		logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", db.Statement.RowsAffected),
			zap.String("trace_id", GetTraceID(ctx)),
		)
	}
}
