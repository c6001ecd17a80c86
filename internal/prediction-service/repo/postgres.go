package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/varsity-predictions/pkg/payout"
)

var (
	ErrNotFound   = errors.New("prediction not found")
	ErrNotPending = errors.New("prediction is not pending")
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const selectPrediction = `
	SELECT id, user_id, market_id, option_id, coins_wagered, odds, boost_multiplier,
	       potential_win, boosted, status, created_at, settled_at
	FROM predictions
`

// Create insere uma nova aposta com status pending; preenche ID e CreatedAt
func (p *Postgres) Create(ctx context.Context, pr *Prediction) error {
	pr.ID = uuid.NewString()
	pr.Status = payout.OutcomePending
	return p.db.QueryRowContext(ctx, `
		INSERT INTO predictions (id,user_id,market_id,option_id,coins_wagered,odds,boost_multiplier,potential_win,boosted,status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending')
		RETURNING created_at`,
		pr.ID, pr.UserID, pr.MarketID, pr.OptionID, pr.CoinsWagered, pr.Odds, pr.BoostMultiplier.String(), pr.PotentialWin, pr.Boosted,
	).Scan(&pr.CreatedAt)
}

func (p *Postgres) Get(ctx context.Context, id string) (*Prediction, error) {
	pr, err := scanPrediction(p.db.QueryRowContext(ctx, selectPrediction+` WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return pr, err
}

// ListByUser retorna as apostas do usuário, mais recentes primeiro
func (p *Postgres) ListByUser(ctx context.Context, userID string, limit int) ([]*Prediction, error) {
	rows, err := p.db.QueryContext(ctx, selectPrediction+` WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// ListPendingByMarket retorna as apostas ainda não liquidadas de um mercado
func (p *Postgres) ListPendingByMarket(ctx context.Context, marketID string) ([]*Prediction, error) {
	rows, err := p.db.QueryContext(ctx, selectPrediction+` WHERE market_id=$1 AND status='pending' ORDER BY created_at`, marketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// Settle move pending -> outcome. ErrNotPending se outra liquidação chegou antes.
func (p *Postgres) Settle(ctx context.Context, id string, outcome payout.Outcome, at time.Time) error {
	return p.transition(ctx, id, outcome, at)
}

// Void anula uma aposta pending (reserva de moedas recusada)
func (p *Postgres) Void(ctx context.Context, id string) error {
	return p.transition(ctx, id, StatusVoid, time.Now())
}

func (p *Postgres) transition(ctx context.Context, id string, to payout.Outcome, at time.Time) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE predictions SET status=$1, settled_at=$2 WHERE id=$3 AND status='pending'`, string(to), at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(s scanner) (*Prediction, error) {
	var pr Prediction
	var status string
	var settled sql.NullTime
	if err := s.Scan(&pr.ID, &pr.UserID, &pr.MarketID, &pr.OptionID, &pr.CoinsWagered, &pr.Odds, &pr.BoostMultiplier,
		&pr.PotentialWin, &pr.Boosted, &status, &pr.CreatedAt, &settled); err != nil {
		return nil, err
	}
	pr.Status = payout.Outcome(status)
	if settled.Valid {
		pr.SettledAt = &settled.Time
	}
	return &pr, nil
}

func scanAll(rows *sql.Rows) ([]*Prediction, error) {
	var out []*Prediction
	for rows.Next() {
		pr, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
