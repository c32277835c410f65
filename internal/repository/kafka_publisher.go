package repository

import (
	"context"

	"AutoTrade/internal/domain/models"
	domrepo "AutoTrade/internal/domain/repository"
	pkgkafka "AutoTrade/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by symbol.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.PredictionResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), event(r))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, rs []*models.PredictionResult) error {
	if len(rs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rs))
	for i, r := range rs {
		msgs[i] = pkgkafka.Message{Key: []byte(r.Symbol), Value: event(r)}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// predictionEvent is the wire form; chart data is left out to keep messages small.
type predictionEvent struct {
	ID             string             `json:"prediction_id"`
	Symbol         string             `json:"symbol"`
	CurrentPrice   float64            `json:"current_price"`
	PredictedPrice float64            `json:"predicted_price"`
	Direction      models.Direction   `json:"direction"`
	Confidence     float64            `json:"confidence"`
	MovePct        float64            `json:"move_pct"`
	FinalSignal    bool               `json:"final_signal"`
	DataSource     models.DataSource  `json:"data_source"`
	SignalHistory  []models.Direction `json:"signal_history"`
	LastUpdated    string             `json:"last_updated"`
}

func event(r *models.PredictionResult) predictionEvent {
	return predictionEvent{
		ID:             r.ID,
		Symbol:         r.Symbol,
		CurrentPrice:   r.CurrentPrice,
		PredictedPrice: r.PredictedPrice,
		Direction:      r.Direction,
		Confidence:     r.Confidence,
		MovePct:        r.MovePct,
		FinalSignal:    r.FinalSignal,
		DataSource:     r.DataSource,
		SignalHistory:  r.SignalHistory,
		LastUpdated:    r.LastUpdated,
	}
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)
