package payout

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// AmericanToDecimal converte odds americanas em odds decimais
// +150 -> 2.5, -200 -> 1.5
func AmericanToDecimal(american int) (decimal.Decimal, error) {
	raw, err := RawWin(100, american)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Div(hundred).Add(NoBoost), nil
}

// ImpliedProbability retorna a probabilidade implícita (0..1) das odds
func ImpliedProbability(american int) (decimal.Decimal, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return decimal.Zero, err
	}
	return NoBoost.Div(d), nil
}

// FormatAmerican formata odds como exibidas ao usuário ("+150", "-110")
func FormatAmerican(american int) string {
	if american > 0 {
		return "+" + strconv.Itoa(american)
	}
	return strconv.Itoa(american)
}
