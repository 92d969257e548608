package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

func TestStreamingArray(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf, true)
	require.NoError(t, enc.Encode(point{T: 300, Value: 1e-9}))
	require.NoError(t, enc.Encode(point{T: 400, Value: 2e-9}))
	require.NoError(t, enc.Close())

	var got []point
	require.NoError(t, Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []point{{300, 1e-9}, {400, 2e-9}}, got)
}

func TestStreamingEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf, true)
	require.NoError(t, enc.Close())

	var got []point
	require.NoError(t, Unmarshal(buf.Bytes(), &got))
	assert.Empty(t, got)
}

func TestStreamingLines(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf, false)
	require.NoError(t, enc.Encode(point{T: 300}))
	require.NoError(t, enc.Encode(point{T: 400}))
	require.NoError(t, enc.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestDecodeStrict(t *testing.T) {
	var p point
	require.NoError(t, DecodeStrict(strings.NewReader(`{"t": 500, "value": 3}`), &p))
	assert.Equal(t, point{500, 3}, p)

	err := DecodeStrict(strings.NewReader(`{"t": 500, "unit": "K"}`), &p)
	assert.Error(t, err)
}
