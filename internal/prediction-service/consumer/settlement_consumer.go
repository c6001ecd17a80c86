package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/service"
	"github.com/radieske/varsity-predictions/pkg/contracts/events"
)

// Reader é satisfeito por *kafka.Reader
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Writer é satisfeito por *kafka.Writer
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Settler é atendido por *service.Service
type Settler interface {
	SettleMarket(ctx context.Context, ev events.MarketSettled) (service.SettlementSummary, error)
}

// Processor consome market_settled e liquida as apostas do mercado.
// Falhas são retentadas Retries vezes; depois a mensagem vai para a DLQ e é commitada.
type Processor struct {
	Log     *zap.Logger
	Reader  Reader
	Settler Settler
	DLQ     Writer // opcional

	Retries int
	Backoff time.Duration

	OnConsumed func()
	OnSettled  func(service.SettlementSummary)
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		p.handle(ctx, m)

		if err := p.Reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			p.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("commit")
		}
	}
}

func (p *Processor) handle(ctx context.Context, m kafka.Message) {
	var ev events.MarketSettled
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MarketID == "" {
		p.Log.Warn("invalid market_settled message", zap.ByteString("key", m.Key), zap.Error(err))
		p.fail("decode")
		p.deadLetter(ctx, m)
		return
	}

	var (
		sum service.SettlementSummary
		err error
	)
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			sleep(ctx, time.Duration(attempt)*p.Backoff)
		}
		sum, err = p.Settler.SettleMarket(ctx, ev)
		if err == nil || permanent(err) || ctx.Err() != nil {
			break
		}
		p.Log.Warn("settle market retry",
			zap.String("marketId", ev.MarketID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	if err != nil {
		p.Log.Error("settle market failed", zap.String("marketId", ev.MarketID), zap.Error(err))
		p.fail("settle")
		p.deadLetter(ctx, m)
		return
	}
	if p.OnSettled != nil {
		p.OnSettled(sum)
	}
}

// permanent identifica erros que não se resolvem com retry
func permanent(err error) bool {
	return errors.Is(err, service.ErrMarketNotFound) || errors.Is(err, service.ErrOptionNotFound)
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Headers: m.Headers}); err != nil {
		p.Log.Error("dlq write failed", zap.ByteString("key", m.Key), zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
