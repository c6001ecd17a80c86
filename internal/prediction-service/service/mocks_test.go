package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/pkg/contracts/events"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

type MockMarketStore struct{ mock.Mock }

func (m *MockMarketStore) ListOpen(ctx context.Context) ([]market.Market, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Market), args.Error(1)
}

func (m *MockMarketStore) Get(ctx context.Context, id string) (market.Market, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(market.Market), args.Error(1)
}

func (m *MockMarketStore) MarkSettled(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPresenceStore struct{ mock.Mock }

func (m *MockPresenceStore) Get(ctx context.Context, userID string) (boost.Presence, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(boost.Presence), args.Error(1)
}

func (m *MockPresenceStore) CheckIn(ctx context.Context, userID, stadium string) (boost.Presence, error) {
	args := m.Called(ctx, userID, stadium)
	return args.Get(0).(boost.Presence), args.Error(1)
}

func (m *MockPresenceStore) CheckOut(ctx context.Context, userID string) (boost.Presence, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(boost.Presence), args.Error(1)
}

type MockPredictionRepo struct{ mock.Mock }

func (m *MockPredictionRepo) Create(ctx context.Context, p *repo.Prediction) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPredictionRepo) Get(ctx context.Context, id string) (*repo.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.Prediction), args.Error(1)
}

func (m *MockPredictionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*repo.Prediction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repo.Prediction), args.Error(1)
}

func (m *MockPredictionRepo) ListPendingByMarket(ctx context.Context, marketID string) ([]*repo.Prediction, error) {
	args := m.Called(ctx, marketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repo.Prediction), args.Error(1)
}

func (m *MockPredictionRepo) Settle(ctx context.Context, id string, outcome payout.Outcome, at time.Time) error {
	return m.Called(ctx, id, outcome, at).Error(0)
}

func (m *MockPredictionRepo) Void(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockWallet struct{ mock.Mock }

func (m *MockWallet) Reserve(ctx context.Context, userID string, coins int64, externalRef string) (string, error) {
	args := m.Called(ctx, userID, coins, externalRef)
	return args.String(0), args.Error(1)
}

func (m *MockWallet) Commit(ctx context.Context, userID, externalRef string) error {
	return m.Called(ctx, userID, externalRef).Error(0)
}

func (m *MockWallet) Refund(ctx context.Context, userID, externalRef string) error {
	return m.Called(ctx, userID, externalRef).Error(0)
}

func (m *MockWallet) Payout(ctx context.Context, userID, externalRef string, coins int64) error {
	return m.Called(ctx, userID, externalRef, coins).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishPredictionPlaced(ctx context.Context, e events.PredictionPlaced) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishPredictionSettled(ctx context.Context, e events.PredictionSettled) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishMarketSettled(ctx context.Context, e events.MarketSettled) error {
	return m.Called(ctx, e).Error(0)
}

type MockActivity struct{ mock.Mock }

func (m *MockActivity) Publish(ctx context.Context, a activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}
