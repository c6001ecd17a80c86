package boost

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

// Precisão e teto da coluna boost_multiplier NUMERIC(6,2); o multiplicador
// usado no cálculo é exatamente o que fica gravado na aposta.
const BoostPlaces = 2

var MaxBoost = decimal.RequireFromString("9999.99")

// Resolver decide o multiplicador efetivo de um mercado para um usuário
type Resolver struct {
	StadiumBoost decimal.Decimal
}

func NewResolver(stadiumBoost decimal.Decimal) Resolver {
	return Resolver{StadiumBoost: normalize(stadiumBoost)}
}

// normalize arredonda para BoostPlaces casas e limita a [1, MaxBoost]
func normalize(d decimal.Decimal) decimal.Decimal {
	d = d.Round(BoostPlaces)
	if d.LessThan(payout.NoBoost) {
		return payout.NoBoost
	}
	return decimal.Min(d, MaxBoost)
}

// Effective retorna o multiplicador e se o mercado está bloqueado para o usuário.
//
//	fora do estádio, mercado exclusivo -> bloqueado
//	fora do estádio                    -> 1
//	no estádio, mercado comum          -> StadiumBoost
//	no estádio, mercado exclusivo      -> boost do próprio mercado
func (r Resolver) Effective(m market.Market, p Presence) (multiplier decimal.Decimal, locked bool) {
	switch {
	case !p.AtStadium && m.StadiumExclusive:
		return payout.NoBoost, true
	case !p.AtStadium:
		return payout.NoBoost, false
	case m.StadiumExclusive:
		return normalize(m.BoostMultiplier), false
	default:
		return r.StadiumBoost, false
	}
}
