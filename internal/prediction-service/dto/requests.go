package dto

import "github.com/shopspring/decimal"

// PayoutQuoteRequest é a calculadora pura: não consulta mercado nem presença
type PayoutQuoteRequest struct {
	Amount          int64           `json:"amount"`
	Odds            int             `json:"odds"`
	BoostMultiplier decimal.Decimal `json:"boostMultiplier"` // opcional; ausente = 1
}

type MarketQuoteRequest struct {
	UserID   string `json:"userId"`
	OptionID string `json:"optionId"`
	Amount   int64  `json:"amount"`
}

type PlacePredictionRequest struct {
	UserID   string `json:"userId"`
	MarketID string `json:"marketId"`
	OptionID string `json:"optionId"`
	Amount   int64  `json:"amount"`
}

// SettlePredictionRequest: outcome = won | lost | push
type SettlePredictionRequest struct {
	Outcome string `json:"outcome"`
}

type SettleMarketRequest struct {
	WinningOptionID string `json:"winningOptionId"`
	Push            bool   `json:"push"`
}

// PresenceRequest faz check-in (atStadium=true) ou check-out
type PresenceRequest struct {
	UserID      string `json:"userId"`
	AtStadium   bool   `json:"isAtStadium"`
	StadiumName string `json:"stadiumName,omitempty"`
}
