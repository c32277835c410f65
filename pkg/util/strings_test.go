package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 0.5, ParseFloatDefault("0.5", 5))
	assert.Equal(t, 5.0, ParseFloatDefault("fast", 5))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "⚠️", TruncateRunes("⚠️ rest", 2))
	assert.Len(t, []rune(TruncateRunes(strings.Repeat("é", 300), 200)), 200)
	assert.Equal(t, "", TruncateRunes("abc", 0))
}
