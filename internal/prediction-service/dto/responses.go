package dto

import "github.com/shopspring/decimal"

type PayoutQuoteResponse struct {
	Amount             int64           `json:"amount"`
	Odds               string          `json:"odds"` // formatado: "+150" / "-200"
	BoostMultiplier    decimal.Decimal `json:"boostMultiplier"`
	PotentialWin       int64           `json:"potentialWin"`
	TotalReturn        int64           `json:"totalReturn"`
	DecimalOdds        decimal.Decimal `json:"decimalOdds"`
	ImpliedProbability decimal.Decimal `json:"impliedProbability"`
	Boosted            bool            `json:"boosted"`
}

type SettleMarketResponse struct {
	MarketID string `json:"marketId"`
	Status   string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
