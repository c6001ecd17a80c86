package events

import "time"

// Evento emitido após liquidar uma aposta.
type PredictionSettled struct {
	PredictionID string    `json:"predictionId"`
	UserID       string    `json:"userId"`
	MarketID     string    `json:"marketId"`
	Outcome      string    `json:"outcome"` // "won" | "lost" | "push"
	CoinsWagered int64     `json:"coinsWagered"`
	Credited     int64     `json:"credited"` // moedas devolvidas ao usuário
	Ts           time.Time `json:"ts"`
}
