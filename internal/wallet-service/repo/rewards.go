package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/varsity-predictions/internal/shared/db"
)

var ErrOutOfStock = errors.New("reward out of stock")

// Reward é um item do catálogo trocável por moedas. Stock nil = ilimitado.
type Reward struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tier        int        `json:"tier"`
	CoinCost    int64      `json:"coinCost"`
	Stock       *int       `json:"stock,omitempty"`
	Available   bool       `json:"available"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type Redemption struct {
	ID         string    `json:"id"`
	RewardID   string    `json:"rewardId"`
	UserID     string    `json:"userId"`
	CoinCost   int64     `json:"coinCost"`
	Code       string    `json:"code"`
	Status     string    `json:"status"`
	RedeemedAt time.Time `json:"redeemedAt"`
	Balance    int64     `json:"coins"` // saldo após o resgate
}

const selectReward = `SELECT id, title, description, category, tier, coin_cost, stock, available, expires_at FROM rewards`

// ListRewards retorna o catálogo disponível, mais baratos primeiro
func (p *Postgres) ListRewards(ctx context.Context) ([]Reward, error) {
	rows, err := p.db.QueryContext(ctx, selectReward+`
		WHERE available AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY tier, coin_cost, id`, p.now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Reward, 0, 16)
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Redeem troca moedas por uma recompensa: confere estoque e saldo, debita a carteira,
// baixa o estoque e emite o código de resgate, tudo na mesma transação.
func (p *Postgres) Redeem(ctx context.Context, userID, rewardID string) (Redemption, error) {
	var out Redemption
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		r, err := scanReward(tx.QueryRowContext(ctx, selectReward+` WHERE id=$1 FOR UPDATE`, rewardID))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		now := p.now().UTC()
		if !r.Available || (r.Stock != nil && *r.Stock <= 0) || (r.ExpiresAt != nil && !r.ExpiresAt.After(now)) {
			return ErrOutOfStock
		}

		walletID, balance, err := p.lockWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance, err = p.debit(ctx, tx, walletID, balance, r.CoinCost, "redeem:"+r.ID); err != nil {
			return err
		}

		if r.Stock != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE rewards SET stock = stock - 1, available = (stock - 1 > 0) WHERE id=$1`, r.ID); err != nil {
				return err
			}
		}

		out = Redemption{
			ID:         uuid.NewString(),
			RewardID:   r.ID,
			UserID:     userID,
			CoinCost:   r.CoinCost,
			Code:       redemptionCode(),
			Status:     "fulfilled",
			RedeemedAt: now,
			Balance:    balance,
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reward_redemptions(id, wallet_id, reward_id, coin_cost, code, status, redeemed_at) VALUES($1,$2,$3,$4,$5,$6,$7)`,
			out.ID, walletID, out.RewardID, out.CoinCost, out.Code, out.Status, out.RedeemedAt)
		return err
	})
	if err != nil {
		return Redemption{}, err
	}
	return out, nil
}

// ListRedemptions retorna os resgates do usuário, mais recentes primeiro
func (p *Postgres) ListRedemptions(ctx context.Context, userID string) ([]Redemption, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT rr.id, rr.reward_id, rr.coin_cost, rr.code, rr.status, rr.redeemed_at
		FROM reward_redemptions rr
		JOIN wallets w ON w.id = rr.wallet_id
		WHERE w.user_id=$1
		ORDER BY rr.redeemed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Redemption{}
	for rows.Next() {
		r := Redemption{UserID: userID}
		if err := rows.Scan(&r.ID, &r.RewardID, &r.CoinCost, &r.Code, &r.Status, &r.RedeemedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// debit retira moedas da carteira já travada e grava o DEBIT no ledger
func (p *Postgres) debit(ctx context.Context, tx *sql.Tx, walletID string, balance, amount int64, description string) (int64, error) {
	if balance < amount {
		return balance, ErrInsufficientFunds
	}
	var newBalance int64
	if err := tx.QueryRowContext(ctx, `UPDATE wallets SET balance = balance - $1, version = version + 1 WHERE id=$2 RETURNING balance`,
		amount, walletID).Scan(&newBalance); err != nil {
		return balance, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,'DEBIT',$2,$3)`,
		walletID, amount, description); err != nil {
		return balance, err
	}
	return newBalance, nil
}

// redemptionCode gera códigos no formato VARSITY-XXXXXX
func redemptionCode() string {
	return "VARSITY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReward(s rowScanner) (Reward, error) {
	var (
		r       Reward
		stock   sql.NullInt64
		expires sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.Title, &r.Description, &r.Category, &r.Tier, &r.CoinCost, &stock, &r.Available, &expires); err != nil {
		return Reward{}, err
	}
	if stock.Valid {
		n := int(stock.Int64)
		r.Stock = &n
	}
	if expires.Valid {
		t := expires.Time
		r.ExpiresAt = &t
	}
	return r, nil
}
