package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The envelope is a wire contract: clients key on the exact field names "v",
// "success", "data", and "error". These tests pin that shape.

func envelopeFields(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestEnvelopeSuccess(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "test-123"})
	require.NoError(t, err)

	out := envelopeFields(t, result)
	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "data")
	assert.NotContains(t, out, "error")
}

func TestEnvelopeSuccessNilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := envelopeFields(t, result)
	assert.Equal(t, float64(1), out["v"])
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeSimpleError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "Resource not found"})
	require.NoError(t, err)

	out := envelopeFields(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Resource not found", out["error"])
}

func TestEnvelopeDetailedError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"lat": "must be a valid latitude"},
	})
	require.NoError(t, err)

	out := envelopeFields(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Equal(t, "validation failed", out["message"])
	assert.Contains(t, out, "details")
}

func TestEnvelopeVersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	out := envelopeFields(t, result)
	assert.Contains(t, out, "v")
	assert.NotContains(t, out, "version")
}
