package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/varsity-predictions/pkg/payout"
)

// StatusVoid marca apostas cuja reserva de moedas falhou
const StatusVoid payout.Outcome = "void"

// Prediction é o modelo persistido no Postgres.
// Odds, BoostMultiplier e PotentialWin são gravados na criação e nunca recalculados.
type Prediction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	MarketID        string          `json:"marketId"`
	OptionID        string          `json:"optionId"`
	CoinsWagered    int64           `json:"coinsWagered"`
	Odds            int             `json:"odds"`
	BoostMultiplier decimal.Decimal `json:"boostMultiplier"`
	PotentialWin    int64           `json:"potentialWin"`
	Boosted         bool            `json:"boosted"`
	Status          payout.Outcome  `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	SettledAt       *time.Time      `json:"settledAt,omitempty"`
}

// Wager reconstrói a aposta congelada
func (p Prediction) Wager() payout.Wager {
	return payout.Wager{AmountWagered: p.CoinsWagered, Odds: p.Odds, BoostMultiplier: p.BoostMultiplier}
}
