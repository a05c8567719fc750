// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	keyCorrelationID ctxKey = iota
	keyRequestID
	keyLogger
)

// traceFields are copied from the context onto every Ctx logger, in order.
var traceFields = []struct {
	key  ctxKey
	name string
}{
	{keyCorrelationID, "correlation_id"},
	{keyRequestID, "request_id"},
}

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// GenerateCorrelationID returns a short random id that follows one request
// or event through the engine.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelationID, id)
}

// ContextWithNewCorrelationID keeps an existing id and generates one otherwise.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	if CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyCorrelationID)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// ContextWithLogger attaches a request-scoped logger.
//
//nolint:gocritic // zerolog.Logger is passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// LoggerFromContext falls back to the process logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(keyLogger).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}

// CtxWith starts a child logger carrying the context's trace ids.
//
//	logger := logging.CtxWith(ctx).Str("user_id", uid).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	lc := LoggerFromContext(ctx).With()
	for _, f := range traceFields {
		if v := stringValue(ctx, f.key); v != "" {
			lc = lc.Str(f.name, v)
		}
	}
	return lc
}

// Ctx is CtxWith with no extra fields.
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Cache write failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}
