package payout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Outcome é o resultado de liquidação de uma aposta
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomePush    Outcome = "push"
)

// ParseOutcome aceita apenas resultados finais (won, lost, push)
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeWon, OutcomeLost, OutcomePush:
		return o, nil
	}
	return "", fmt.Errorf("invalid outcome %q", s)
}

// CanTransition: somente pending -> {won, lost, push}
func (o Outcome) CanTransition(to Outcome) bool {
	if o != OutcomePending {
		return false
	}
	return to == OutcomeWon || to == OutcomeLost || to == OutcomePush
}

// Wager guarda odds e multiplicador no momento da aposta; o ganho nunca é recalculado depois
type Wager struct {
	AmountWagered   int64           `json:"amountWagered"`
	Odds            int             `json:"odds"`
	BoostMultiplier decimal.Decimal `json:"boostMultiplier"`
}

// NewWager valida e congela os parâmetros da aposta
func NewWager(amountWagered int64, odds int, boostMultiplier decimal.Decimal) (Wager, error) {
	if err := Validate(amountWagered, odds, boostMultiplier); err != nil {
		return Wager{}, err
	}
	if boostMultiplier.IsZero() {
		boostMultiplier = NoBoost
	}
	return Wager{AmountWagered: amountWagered, Odds: odds, BoostMultiplier: boostMultiplier}, nil
}

func (w Wager) PotentialWin() (int64, error) {
	return ComputePayout(w.AmountWagered, w.Odds, w.BoostMultiplier)
}

func (w Wager) Boosted() bool { return w.BoostMultiplier.GreaterThan(NoBoost) }

// Credit retorna quantas moedas voltam ao usuário na liquidação
// won: aposta + ganho; push: aposta; lost/pending: 0
func Credit(outcome Outcome, amountWagered, potentialWin int64) int64 {
	switch outcome {
	case OutcomeWon:
		return TotalReturn(amountWagered, potentialWin)
	case OutcomePush:
		return amountWagered
	default:
		return 0
	}
}
