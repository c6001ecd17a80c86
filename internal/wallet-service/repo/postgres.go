package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/varsity-predictions/internal/shared/db"
)

// Status de uma reserva de moedas
const (
	ReservationPending   = "PENDING"
	ReservationCommitted = "COMMITTED" // aposta perdida: moedas ficam com a casa
	ReservationRefunded  = "REFUNDED"  // push ou aposta anulada
	ReservationPaid      = "PAID"      // aposta vencedora
)

var (
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrNotFound          = errors.New("not found")
)

// Postgres implementa operações da carteira de moedas em banco
type Postgres struct {
	db             *sql.DB
	startingCoins  int64
	dailyAllowance int64
	now            func() time.Time
}

func NewPostgres(db *sql.DB, startingCoins, dailyAllowance int64) *Postgres {
	return &Postgres{db: db, startingCoins: startingCoins, dailyAllowance: dailyAllowance, now: time.Now}
}

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira com o saldo inicial se não existir
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	err = db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		walletID, balance, err = p.lockWallet(ctx, tx, userID)
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// lockWallet trava a carteira do usuário (FOR UPDATE).
// Na primeira operação do usuário a carteira nasce com startingCoins dentro da mesma transação.
func (p *Postgres) lockWallet(ctx context.Context, tx *sql.Tx, userID string) (walletID string, balance int64, err error) {
	const sel = `SELECT id, balance FROM wallets WHERE user_id=$1 FOR UPDATE`

	err = tx.QueryRowContext(ctx, sel, userID).Scan(&walletID, &balance)
	if err != sql.ErrNoRows {
		return walletID, balance, err
	}

	walletID = uuid.NewString()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO wallets(id, user_id, balance, version) VALUES($1,$2,$3,1) ON CONFLICT (user_id) DO NOTHING`,
		walletID, userID, p.startingCoins)
	if err != nil {
		return "", 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		// criada por outra transação concorrente
		err = tx.QueryRowContext(ctx, sel, userID).Scan(&walletID, &balance)
		return walletID, balance, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,'CREDIT',$2,'starting-coins')`,
		walletID, p.startingCoins); err != nil {
		return "", 0, err
	}
	return walletID, p.startingCoins, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	err = db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if walletID, _, err = p.lockWallet(ctx, tx, userID); err != nil {
			return err
		}
		if err = tx.QueryRowContext(ctx, `UPDATE wallets SET balance = balance + $1, version = version + 1 WHERE id=$2 RETURNING balance`,
			amount, walletID).Scan(&newBalance); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,'CREDIT',$2,$3)`,
			walletID, amount, "deposit:"+externalRef)
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return walletID, newBalance, nil
}

// ClaimDaily concede a mesada diária uma única vez por dia (UTC).
// granted=false quando já foi resgatada hoje; newBalance é sempre o saldo atual.
func (p *Postgres) ClaimDaily(ctx context.Context, userID string) (granted bool, newBalance int64, err error) {
	today := p.now().UTC().Format("2006-01-02")

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var walletID string
	var lastClaim sql.NullTime
	if err = tx.QueryRowContext(ctx, `SELECT id, balance, last_daily_claim FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &newBalance, &lastClaim); err != nil {
		if err == sql.ErrNoRows {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}

	if lastClaim.Valid && lastClaim.Time.UTC().Format("2006-01-02") >= today {
		return false, newBalance, nil
	}

	if err = tx.QueryRowContext(ctx, `UPDATE wallets SET balance = balance + $1, last_daily_claim = $2, version = version + 1 WHERE id=$3 RETURNING balance`,
		p.dailyAllowance, today, walletID).Scan(&newBalance); err != nil {
		return false, 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,'CREDIT',$2,$3)`,
		walletID, p.dailyAllowance, "daily:"+today); err != nil {
		return false, 0, err
	}

	if err = tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, newBalance, nil
}

// Reserve cria uma reserva PENDING e debita saldo (bloqueio).
// Garante idempotência por (wallet_id, external_ref); usuário sem carteira recebe uma nova.
func (p *Postgres) Reserve(ctx context.Context, userID string, amount int64, externalRef string) (reservationID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	walletID, balance, err := p.lockWallet(ctx, tx, userID)
	if err != nil {
		return "", err
	}

	// Idempotência: verifica se já existe reserva para o mesmo external_ref
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallet_reservations WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&reservationID)
	if err == nil {
		return reservationID, nil // já existe
	} else if err != sql.ErrNoRows {
		return "", err
	}

	if balance < amount {
		return "", ErrInsufficientFunds
	}

	// Debita saldo (bloqueio)
	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance = balance - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return "", err
	}

	reservationID = uuid.NewString()
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_reservations(id, wallet_id, external_ref, amount, status) VALUES($1,$2,$3,$4,'PENDING')`,
		reservationID, walletID, externalRef, amount); err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,'RESERVE',$2,$3)`,
		walletID, amount, "reserve:"+externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return reservationID, nil
}

// Commit efetiva uma reserva (aposta perdida), marcando como COMMITTED
// Idempotente: se já não estiver PENDING, não faz nada
func (p *Postgres) Commit(ctx context.Context, userID, externalRef string) error {
	return p.closeReservation(ctx, userID, externalRef, ReservationCommitted, 0)
}

// Refund desfaz uma reserva PENDING, devolvendo a aposta ao saldo
func (p *Postgres) Refund(ctx context.Context, userID, externalRef string) error {
	return p.closeReservation(ctx, userID, externalRef, ReservationRefunded, -1)
}

// Payout paga uma reserva vencedora creditando coins (aposta + ganho)
func (p *Postgres) Payout(ctx context.Context, userID, externalRef string, coins int64) error {
	return p.closeReservation(ctx, userID, externalRef, ReservationPaid, coins)
}

// closeReservation encerra uma reserva PENDING no status final.
// credit < 0 devolve o valor reservado; credit >= 0 credita exatamente esse valor.
func (p *Postgres) closeReservation(ctx context.Context, userID, externalRef, status string, credit int64) error {
	return db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		var walletID, resID, current string
		var amount int64

		if err := tx.QueryRowContext(ctx, `
			SELECT wr.id, wr.wallet_id, wr.amount, wr.status
			FROM wallet_reservations wr
			JOIN wallets w ON w.id = wr.wallet_id
			WHERE w.user_id=$1 AND wr.external_ref=$2
			FOR UPDATE`, userID, externalRef).Scan(&resID, &walletID, &amount, &current); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}

		if current != ReservationPending {
			return nil // idempotente
		}

		if credit < 0 {
			credit = amount
		}

		if credit > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = balance + $1, version = version + 1 WHERE id=$2`, credit, walletID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE wallet_reservations SET status=$1 WHERE id=$2`, status, resID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount, description) VALUES($1,$2,$3,$4)`,
			walletID, ledgerOperation(status), ledgerAmount(status, amount, credit), status+":"+externalRef)
		return err
	})
}

func ledgerOperation(status string) string {
	switch status {
	case ReservationCommitted:
		return "DEBIT"
	case ReservationRefunded:
		return "REFUND"
	default:
		return "PAYOUT"
	}
}

func ledgerAmount(status string, reserved, credit int64) int64 {
	if status == ReservationCommitted {
		return reserved
	}
	return credit
}
