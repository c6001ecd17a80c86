package market

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("market not found")

// ReadRepo lê mercados e opções do Postgres
type ReadRepo struct {
	DB *sql.DB
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db} }

const selectMarkets = `
	SELECT m.id, m.game_id, m.type, m.title, COALESCE(m.description, ''), m.status, m.closes_at,
	       m.stadium_exclusive, m.boost_multiplier, o.id, o.label, o.odds
	FROM markets m
	JOIN market_options o ON o.market_id = m.id
`

// ListOpen retorna mercados abertos ordenados pelo fechamento
func (r *ReadRepo) ListOpen(ctx context.Context) ([]Market, error) {
	rows, err := r.DB.QueryContext(ctx, selectMarkets+`
	WHERE m.status = 'open'
	ORDER BY m.closes_at, m.id, o.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMarkets(rows)
}

func (r *ReadRepo) Get(ctx context.Context, id string) (Market, error) {
	rows, err := r.DB.QueryContext(ctx, selectMarkets+`
	WHERE m.id = $1
	ORDER BY o.position`, id)
	if err != nil {
		return Market{}, err
	}
	defer rows.Close()

	out, err := scanMarkets(rows)
	if err != nil {
		return Market{}, err
	}
	if len(out) == 0 {
		return Market{}, ErrNotFound
	}
	return out[0], nil
}

// MarkSettled fecha o mercado após a liquidação de todas as apostas
func (r *ReadRepo) MarkSettled(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE markets SET status = 'settled' WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanMarkets agrupa linhas consecutivas (market x option) em mercados
func scanMarkets(rows *sql.Rows) ([]Market, error) {
	var out []Market
	for rows.Next() {
		var m Market
		var o Option
		if err := rows.Scan(&m.ID, &m.GameID, &m.Type, &m.Title, &m.Description, &m.Status, &m.ClosesAt,
			&m.StadiumExclusive, &m.BoostMultiplier, &o.ID, &o.Label, &o.Odds); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == m.ID {
			out[n-1].Options = append(out[n-1].Options, o)
			continue
		}
		m.Options = []Option{o}
		out = append(out, m)
	}
	return out, rows.Err()
}
