package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterFields(t *testing.T) {
	var buf bytes.Buffer
	l := Writer(&buf).With(String("component", "acquirer"))
	l.Warn("live fetch failed",
		String("symbol", "XYZ"),
		Float64("price", 1.5),
		Bool("cached", false),
		Error(errors.New("boom")),
	)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "live fetch failed", m["message"])
	assert.Equal(t, "acquirer", m["component"])
	assert.Equal(t, "XYZ", m["symbol"])
	assert.Equal(t, 1.5, m["price"])
	assert.Equal(t, "boom", m["error"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("nothing", Int("n", 1))
}
