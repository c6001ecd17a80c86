package payout

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Erros de validação de entrada; sempre visíveis ao chamador
var (
	ErrInvalidOdds    = errors.New("invalid odds: american odds cannot be 0")
	ErrInvalidWager   = errors.New("invalid wager: amount must be positive")
	ErrInvalidBoost   = errors.New("invalid boost: multiplier must be >= 1")
	ErrPayoutOverflow = errors.New("invalid wager: payout exceeds the coin range")
)

var (
	hundred = decimal.NewFromInt(100)

	// NoBoost é o multiplicador aplicado quando nenhuma condição de boost vale
	NoBoost = decimal.NewFromInt(1)
)

// Validate confere os três parâmetros de uma aposta.
// Multiplicador zero (não informado) é aceito e tratado como NoBoost.
func Validate(amountWagered int64, odds int, boostMultiplier decimal.Decimal) error {
	if amountWagered <= 0 {
		return ErrInvalidWager
	}
	if odds == 0 {
		return ErrInvalidOdds
	}
	if !boostMultiplier.IsZero() && boostMultiplier.LessThan(NoBoost) {
		return fmt.Errorf("%w: got %s", ErrInvalidBoost, boostMultiplier.String())
	}
	return nil
}

// RawWin retorna o ganho sem boost, só para exibição.
// odds > 0 é exato; odds < 0 pode ser dízima e fica com decimal.DivisionPrecision (16) casas.
// ComputePayout não passa por aqui.
//
//	odds > 0: amount * odds / 100
//	odds < 0: amount * 100 / |odds|
func RawWin(amountWagered int64, odds int) (decimal.Decimal, error) {
	if err := Validate(amountWagered, odds, NoBoost); err != nil {
		return decimal.Zero, err
	}
	num, den := fraction(amountWagered, odds, NoBoost)
	return num.Div(den), nil
}

// ComputePayout calcula o ganho potencial (potentialWin) de uma aposta em odds americanas.
// O boost entra no numerador e a divisão arredonda uma única vez sobre o resto exato.
// Ganhos em que aposta + ganho não cabem em int64 retornam ErrPayoutOverflow.
func ComputePayout(amountWagered int64, odds int, boostMultiplier decimal.Decimal) (int64, error) {
	if err := Validate(amountWagered, odds, boostMultiplier); err != nil {
		return 0, err
	}
	if boostMultiplier.IsZero() {
		boostMultiplier = NoBoost
	}
	num, den := fraction(amountWagered, odds, boostMultiplier)
	win := num.DivRound(den, 0)
	if win.GreaterThan(decimal.NewFromInt(math.MaxInt64 - amountWagered)) {
		return 0, fmt.Errorf("%w: amount %d at %s", ErrPayoutOverflow, amountWagered, FormatAmerican(odds))
	}
	return win.IntPart(), nil
}

// TotalReturn é o valor devolvido em caso de vitória: aposta + ganho.
// Não transborda para ganhos vindos de ComputePayout.
func TotalReturn(amountWagered, potentialWin int64) int64 {
	return amountWagered + potentialWin
}

// fraction devolve numerador e denominador exatos do ganho com boost
func fraction(amountWagered int64, odds int, boost decimal.Decimal) (num, den decimal.Decimal) {
	amount := decimal.NewFromInt(amountWagered).Mul(boost)
	o := decimal.NewFromInt(int64(odds))
	if odds > 0 {
		return amount.Mul(o), hundred
	}
	return amount.Mul(hundred), o.Abs()
}
