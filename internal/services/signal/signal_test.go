package signal

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoTrade/internal/domain/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		predicted float64
		current   float64
		move      float64
		conf      float64
		dir       models.Direction
	}{
		{"one percent up", 101, 100, 1.0, 50, models.DirectionBuy},
		{"saturates", 110, 100, 10, 100, models.DirectionBuy},
		{"down", 99.5, 100, 0.5, 25, models.DirectionSell},
		{"tie is sell", 100, 100, 0, 0, models.DirectionSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Evaluate(tt.predicted, tt.current)
			require.NoError(t, err)
			assert.InDelta(t, tt.move, sc.MovePct, 1e-9)
			assert.InDelta(t, tt.conf, sc.Confidence, 1e-9)
			assert.Equal(t, tt.dir, sc.Direction)
		})
	}
}

func TestEvaluateRejectsNonPositiveCurrent(t *testing.T) {
	_, err := Evaluate(10, 0)
	assert.True(t, errors.Is(err, models.ErrComputationFailure))
	_, err = Evaluate(10, -1)
	assert.Error(t, err)
}

func strong(dir models.Direction) Score {
	return Score{MovePct: 0.5, Confidence: 95, Direction: dir}
}

func TestConfirmationBufferBuyBuySellBuy(t *testing.T) {
	b := NewConfirmationBuffer(DefaultPolicy())
	seq := []models.Direction{
		models.DirectionBuy, models.DirectionBuy, models.DirectionSell,
		models.DirectionBuy, models.DirectionBuy, models.DirectionBuy,
	}
	want := []bool{false, false, false, false, false, true}
	for i, d := range seq {
		final, _ := b.Observe("ABC", strong(d))
		assert.Equal(t, want[i], final, "step %d", i)
	}
}

func TestConfirmationBufferReversal(t *testing.T) {
	b := NewConfirmationBuffer(DefaultPolicy())
	var final bool
	for i := 0; i < 3; i++ {
		final, _ = b.Observe("ABC", strong(models.DirectionBuy))
	}
	assert.True(t, final)

	final, h := b.Observe("ABC", strong(models.DirectionSell))
	assert.False(t, final)
	assert.Equal(t, []models.Direction{models.DirectionBuy, models.DirectionBuy, models.DirectionSell}, h)
}

func TestConfirmationBufferThresholds(t *testing.T) {
	b := NewConfirmationBuffer(DefaultPolicy())
	weak := Score{MovePct: 0.5, Confidence: 25, Direction: models.DirectionBuy}
	small := Score{MovePct: 0.1, Confidence: 95, Direction: models.DirectionBuy}
	for i := 0; i < 5; i++ {
		final, _ := b.Observe("W", weak)
		assert.False(t, final)
		final, _ = b.Observe("S", small)
		assert.False(t, final)
	}
	assert.Len(t, b.History("W"), 3)
}

func TestConfirmationBufferSymbolsIsolated(t *testing.T) {
	b := NewConfirmationBuffer(DefaultPolicy())
	b.Observe("A", strong(models.DirectionBuy))
	b.Observe("B", strong(models.DirectionSell))
	assert.Equal(t, []models.Direction{models.DirectionBuy}, b.History("A"))
	assert.Equal(t, []models.Direction{models.DirectionSell}, b.History("B"))
	assert.Equal(t, 2, b.Symbols())
}

func TestConfirmationBufferConcurrentAppends(t *testing.T) {
	b := NewConfirmationBuffer(Policy{ConfirmCount: 1000, ConfidenceLimit: 90, MinMovePct: 0.3})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				b.Observe("X", strong(models.DirectionBuy))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, b.History("X"), 500)
}
