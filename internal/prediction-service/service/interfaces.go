package service

import (
	"context"
	"time"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/pkg/contracts/events"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

// MarketStore é atendido por market.Catalog (cache) ou market.ReadRepo
type MarketStore interface {
	ListOpen(ctx context.Context) ([]market.Market, error)
	Get(ctx context.Context, id string) (market.Market, error)
	MarkSettled(ctx context.Context, id string) error
}

// PresenceStore é atendido por boost.PresenceStore
type PresenceStore interface {
	Get(ctx context.Context, userID string) (boost.Presence, error)
	CheckIn(ctx context.Context, userID, stadium string) (boost.Presence, error)
	CheckOut(ctx context.Context, userID string) (boost.Presence, error)
}

type PredictionRepo interface {
	Create(ctx context.Context, p *repo.Prediction) error
	Get(ctx context.Context, id string) (*repo.Prediction, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*repo.Prediction, error)
	ListPendingByMarket(ctx context.Context, marketID string) ([]*repo.Prediction, error)
	Settle(ctx context.Context, id string, outcome payout.Outcome, at time.Time) error
	Void(ctx context.Context, id string) error
}

// Wallet é atendido por wallet.Client (HTTP para o wallet-service)
type Wallet interface {
	Reserve(ctx context.Context, userID string, coins int64, externalRef string) (string, error)
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
	Payout(ctx context.Context, userID, externalRef string, coins int64) error
}

// Publisher é atendido por producer.KafkaPublisher
type Publisher interface {
	PublishPredictionPlaced(ctx context.Context, e events.PredictionPlaced) error
	PublishPredictionSettled(ctx context.Context, e events.PredictionSettled) error
	PublishMarketSettled(ctx context.Context, e events.MarketSettled) error
}

// ActivityPublisher é atendido por activity.RedisBroadcaster
type ActivityPublisher interface {
	Publish(ctx context.Context, a activity.Activity) error
}

// Hooks recebe callbacks de métricas; campos nil são ignorados
type Hooks struct {
	OnPlaced  func(boosted bool, coins, potentialWin int64)
	OnSettled func(outcome payout.Outcome)
}
