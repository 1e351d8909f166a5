package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	assert.NotNil(t, retrieved, "should return a no-op logger, never nil")
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	requestID := "req-123"

	ctx, enriched := WithRequestID(context.Background(), logger, requestID)

	assert.NotNil(t, enriched)
	assert.Equal(t, requestID, GetRequestID(ctx))
	assert.Equal(t, enriched, FromContext(ctx))
}

func TestWithUserID(t *testing.T) {
	logger := zap.NewNop()
	userID := "user-789"

	ctx, enriched := WithUserID(context.Background(), logger, userID)

	assert.NotNil(t, enriched)
	assert.Equal(t, userID, GetUserID(ctx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserID_NotFound(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestChainedContextEnrichment(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, _ = WithUserID(ctx, logger, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, UserIDKey)
}

func TestContextLogger_InjectsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-aaa")
	ctx = context.WithValue(ctx, UserIDKey, "user-bbb")

	WithLogger(ctx, baseLogger).Info("charging subscription")

	entries := logs.All()
	assert.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-aaa", fields["request_id"])
	assert.Equal(t, "user-bbb", fields["user_id"])
}

func TestContextLogger_EmptyFieldsOmitted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	WithLogger(context.Background(), baseLogger).Info("no correlation")

	entries := logs.All()
	assert.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	_, hasRequestID := fields["request_id"]
	_, hasUserID := fields["user_id"]
	assert.False(t, hasRequestID)
	assert.False(t, hasUserID)
}

func TestL_FromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	ctx := WithContext(context.Background(), baseLogger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-ctx")

	L(ctx).Info("picked up from context")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-ctx", entries[0].ContextMap()["request_id"])
}

func TestL_NilSafeWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		L(context.Background()).Info("no logger attached")
	})
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	cl := WithLogger(context.Background(), baseLogger).
		With(zap.String("subscription_id", "sub-1"))
	cl.Info("renewal started")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "sub-1", entries[0].ContextMap()["subscription_id"])
}
