package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoTrade/pkg/metrics"
)

func TestWarmerRunOnce(t *testing.T) {
	f := newFixture(&fakeSource{})
	f.src.series = priceSeries("AAA", 30, f.now)

	w, err := NewWarmer(f.acq, "0 */5 * * * *", []string{"AAA", "BBB"}, metrics.Nop{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, w.RunOnce(context.Background()))
	assert.Equal(t, 2, f.acq.CacheSize(context.Background()))

	f.src.err = errBoom
	assert.Zero(t, w.RunOnce(context.Background()))
}

func TestWarmerInvalidSchedule(t *testing.T) {
	f := newFixture(nil)
	_, err := NewWarmer(f.acq, "every minute", []string{"AAA"}, metrics.Nop{}, nil)
	assert.Error(t, err)
}

func TestWarmerStartStop(t *testing.T) {
	f := newFixture(nil)
	w, err := NewWarmer(f.acq, "@every 1h", []string{"AAA"}, metrics.Nop{}, nil)
	require.NoError(t, err)
	w.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
