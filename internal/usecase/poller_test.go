package usecase

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestPollerClampsInterval(t *testing.T) {
	p := NewPoller(nil, "AAA", 10*time.Millisecond, &bytes.Buffer{})
	assert.Equal(t, MinPollInterval, p.Interval())
}

func TestPollerFormat(t *testing.T) {
	ts := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	p := NewPoller(nil, "AAA", time.Second, &bytes.Buffer{}, WithPollerLocation(time.UTC))

	assert.Equal(t, "2024-05-06 10:00:00 | 123.46", p.format(Quote{Time: ts, Price: 123.456, OK: true}, nil))
	assert.Equal(t, "2024-05-06 10:00:00 | no data", p.format(Quote{Time: ts}, nil))
	assert.Equal(t, "error: boom", p.format(Quote{}, errBoom))
	assert.Equal(t, "2024-05-06 10:00:00 | 1.00 | BUY", p.format(Quote{Time: ts, Price: 1, Note: "BUY", OK: true}, nil))
}

func TestPollerRunStops(t *testing.T) {
	out := &syncBuffer{}
	var mu sync.Mutex
	calls := 0
	fetch := func(context.Context, string) (Quote, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return Quote{Time: time.Now(), Price: 10, OK: true}, nil
	}
	p := NewPoller(fetch, "AAA", time.Millisecond, out)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	require.Eventually(t, func() bool { return strings.Count(out.String(), "\n") >= 1 }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Contains(t, out.String(), "| 10.00")
}

func TestPollerRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(func(context.Context, string) (Quote, error) { return Quote{}, nil }, "AAA", time.Second, &syncBuffer{}, WithInPlace(true))
	cancel()
	assert.NoError(t, p.Run(ctx))
}

func TestQuoteFromPredictions(t *testing.T) {
	f := newFixture(&fakeSource{})
	f.src.series = priceSeries("AAA", 40, f.now)
	f.pred.next = scaledFor(101)

	q, err := QuoteFromPredictions(f.svc)(context.Background(), "AAA")
	require.NoError(t, err)
	assert.True(t, q.OK)
	assert.InDelta(t, 100, q.Price, 1e-9)
	assert.Contains(t, q.Note, "BUY -> 101.00")

	f.pred.fitErr = errBoom
	_, err = QuoteFromPredictions(f.svc)(context.Background(), "AAA")
	assert.ErrorContains(t, err, "boom")
}

func TestQuoteFromSource(t *testing.T) {
	src := &fakeSource{series: priceSeries("AAA", 5, time.Now())}
	q, err := QuoteFromSource(src, strings.ToUpper)(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, 100.0, q.Price)
	assert.Equal(t, []string{"AAA"}, src.seen)

	src.err = errBoom
	_, err = QuoteFromSource(src, strings.ToUpper)(context.Background(), "aaa")
	assert.Error(t, err)
}
