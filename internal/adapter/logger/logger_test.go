package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerAdapter(&buf, "prod")

	l.Debug("hidden", nil)
	l.Info("user created", map[string]interface{}{"user_id": 7})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user created", entry["msg"])
	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, fields["user_id"])
}

func TestCtxLoggingAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerAdapter(&buf, "prod")

	ctx := WithRequestID(context.Background(), "req-1")
	l.ErrorCtx(ctx, "boom", nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "ERROR", entry["level"])
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
