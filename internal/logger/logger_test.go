package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("littlelemon", "debug", &buf)

	log.Error("order_create_failed", "could not create order", "req-1", errors.New("boom"), map[string]interface{}{
		"user_id": 7,
	})

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "could not create order", rec["msg"])
	assert.Equal(t, "littlelemon", rec["service"])
	assert.Equal(t, "order_create_failed", rec["action"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, map[string]interface{}{"msg": "boom"}, rec["error"])
	assert.Equal(t, map[string]interface{}{"user_id": float64(7)}, rec["fields"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("littlelemon", "warn", &buf)

	log.Info("ignored", "below threshold", "", nil)
	assert.Zero(t, buf.Len())

	log.Warn("kept", "at threshold", "", nil)
	assert.NotZero(t, buf.Len())
}

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
