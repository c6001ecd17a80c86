//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/varsity-predictions/internal/shared/db/dbtest"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

func TestPostgres_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pg := dbtest.Postgres(t)

	_, err := pg.ExecContext(ctx, `
		INSERT INTO markets (id, game_id, type, title, closes_at, stadium_exclusive, boost_multiplier)
		VALUES ('mkt-1', 'game-1', 'moneyline', 'Who wins?', NOW() + interval '1 hour', false, 1)`)
	require.NoError(t, err)

	r := NewPostgres(pg)
	pr := &Prediction{UserID: "u1", MarketID: "mkt-1", OptionID: "home", CoinsWagered: 100, Odds: 150,
		BoostMultiplier: decimal.RequireFromString("2.5"), PotentialWin: 375, Boosted: true}
	require.NoError(t, r.Create(ctx, pr))

	pending, err := r.ListPendingByMarket(ctx, "mkt-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].BoostMultiplier.Equal(decimal.RequireFromString("2.5")))

	require.NoError(t, r.Settle(ctx, pr.ID, payout.OutcomeWon, time.Now()))
	assert.ErrorIs(t, r.Settle(ctx, pr.ID, payout.OutcomeLost, time.Now()), ErrNotPending)

	got, err := r.Get(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeWon, got.Status)
	assert.Equal(t, int64(375), got.PotentialWin)
	require.NotNil(t, got.SettledAt)

	list, err := r.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
