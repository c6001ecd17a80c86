package market

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOpen    = "open"
	StatusLocked  = "locked"
	StatusSettled = "settled"
)

// Tipos de mercado; flash_prop são props ao vivo exclusivos do estádio
const (
	TypeMoneyline      = "moneyline"
	TypeSpread         = "spread"
	TypeTotal          = "total"
	TypeProp           = "prop"
	TypeFirstScorer    = "first_scorer"
	TypeHalftimeLeader = "halftime_leader"
	TypeFlashProp      = "flash_prop"
)

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Odds  int    `json:"odds"` // odds americanas
}

// Market é um mercado de previsão de um jogo.
// BoostMultiplier só vale para mercados exclusivos do estádio (2.0-5.0).
type Market struct {
	ID               string          `json:"id"`
	GameID           string          `json:"gameId"`
	Type             string          `json:"type"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Status           string          `json:"status"`
	ClosesAt         time.Time       `json:"closesAt"`
	StadiumExclusive bool            `json:"isStadiumExclusive"`
	BoostMultiplier  decimal.Decimal `json:"boostMultiplier"`
	Options          []Option        `json:"options"`
}

func (m Market) Option(id string) (Option, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// IsOpen: status open e antes do fechamento
func (m Market) IsOpen(now time.Time) bool {
	return m.Status == StatusOpen && now.Before(m.ClosesAt)
}
