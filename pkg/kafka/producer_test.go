package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestNewProducerHashBalancer(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("snappy"))
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.writer.Balancer.(*kafka.Hash)
	assert.True(t, ok)
	assert.Equal(t, kafka.Snappy, p.writer.Compression)

	p2, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithHashByKey(false))
	require.NoError(t, err)
	defer p2.Close()
	_, ok = p2.writer.Balancer.(*kafka.LeastBytes)
	assert.True(t, ok)
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	b, err = encode("raw")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), b)
}

func TestProducerMetricsObserve(t *testing.T) {
	m := newProducerMetrics(prometheus.NewRegistry())
	m.observe("t", "gzip", 10, 2, 0, nil)
	m.observe("t", "gzip", 5, 1, 0, assert.AnError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.msgs.WithLabelValues("t", "gzip", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errs.WithLabelValues("t")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.bytes.WithLabelValues("t", "gzip")))
}
