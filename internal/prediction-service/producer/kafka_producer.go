package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/varsity-predictions/pkg/contracts/events"
)

// MessageWriter é satisfeito por *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de previsão; um writer sem tópico fixo atende os três tópicos
type KafkaPublisher struct {
	Writer        MessageWriter
	TopicPlaced   string
	TopicSettled  string
	TopicMarketSt string
}

func NewKafkaPublisher(w MessageWriter, placed, settled, marketSettled string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, TopicPlaced: placed, TopicSettled: settled, TopicMarketSt: marketSettled}
}

func (p *KafkaPublisher) PublishPredictionPlaced(ctx context.Context, e events.PredictionPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return p.write(ctx, p.TopicPlaced, e.PredictionID, e)
}

func (p *KafkaPublisher) PublishPredictionSettled(ctx context.Context, e events.PredictionSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	return p.write(ctx, p.TopicSettled, e.PredictionID, e)
}

// PublishMarketSettled usa marketId como chave: todas as liquidações do mercado caem na mesma partição
func (p *KafkaPublisher) PublishMarketSettled(ctx context.Context, e events.MarketSettled) error {
	if e.SettledAt.IsZero() {
		e.SettledAt = time.Now()
	}
	return p.write(ctx, p.TopicMarketSt, e.MarketID, e)
}

func (p *KafkaPublisher) write(ctx context.Context, topic, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: b})
}
