package events

import "time"

// Evento publicado no tópico "market_settled" com o resultado de um mercado.
// Push=true devolve todas as apostas; caso contrário WinningOptionID vence e as demais perdem.
type MarketSettled struct {
	MarketID        string    `json:"market_id"`
	WinningOptionID string    `json:"winning_option_id,omitempty"`
	Push            bool      `json:"push"`
	SettledAt       time.Time `json:"settled_at"`
}
