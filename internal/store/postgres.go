// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

// Package store provides PostgreSQL connection bootstrap and schema
// migrations for the auth service.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Startup ping backoff. Retrying here is a bootstrap concern only; nothing
// in the request path retries.
const (
	pingBaseDelay  = 500 * time.Millisecond
	pingMaxRetries = 5
)

// Connect opens a pgx connection pool and verifies connectivity with a
// bounded exponential backoff. When debug is set, every query is traced to
// the logger at debug level.
func Connect(ctx context.Context, databaseURL string, debug bool, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	if debug {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   slogTraceLogger{logger: logger},
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingMaxRetries, retry.NewExponential(pingBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			logger.Warn("database ping failed, retrying", "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}

// slogTraceLogger adapts pgx query tracing to slog.
type slogTraceLogger struct {
	logger *slog.Logger
}

// Log implements tracelog.Logger.
func (l slogTraceLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	attrs := make([]any, 0, len(data)*2)
	for k, v := range data {
		attrs = append(attrs, k, v)
	}

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		l.logger.DebugContext(ctx, msg, attrs...)
	case tracelog.LogLevelInfo:
		l.logger.InfoContext(ctx, msg, attrs...)
	case tracelog.LogLevelWarn:
		l.logger.WarnContext(ctx, msg, attrs...)
	default:
		l.logger.ErrorContext(ctx, msg, attrs...)
	}
}
