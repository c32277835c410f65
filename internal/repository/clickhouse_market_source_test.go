package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCHMarketSourceRejectsBadTable(t *testing.T) {
	for _, table := range []string{"", "candles; DROP TABLE x", "a.b.c", "1candles", "candles-1m"} {
		_, err := NewCHMarketSource(nil, table, 100)
		assert.Error(t, err, table)
	}
}

func TestCandlesTableNamePattern(t *testing.T) {
	for _, table := range []string{"candles_1m", "market.candles_1m", "_tmp"} {
		assert.True(t, tableName.MatchString(table), table)
	}
}
