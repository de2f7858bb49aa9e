// README: Payment store backed by PostgreSQL.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freshfold/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const paymentColumns = `
	id, order_id, user_id, stripe_charge_id, stripe_payment_intent_id,
	amount_cents, currency, status, payment_method, error_message,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, p *Payment) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO payments (
			id, order_id, user_id, stripe_charge_id, stripe_payment_intent_id,
			amount_cents, currency, status, payment_method, error_message,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		string(p.ID), string(p.OrderID), string(p.UserID), p.ChargeID, p.IntentID,
		p.Amount.Amount, p.Amount.Currency, string(p.Status), p.PaymentMethod,
		p.ErrorMessage, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// HasCompletedForOrder answers the double-charge guard before any external
// call is made.
func (s *Store) HasCompletedForOrder(ctx context.Context, orderID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payments WHERE order_id = $1 AND status = 'completed'
		)`, string(orderID))
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByOrder returns the most recent payment for an order, scoped to its
// owner.
func (s *Store) GetByOrder(ctx context.Context, orderID, userID types.ID) (*Payment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE order_id = $1 AND user_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		string(orderID), string(userID))
	return scanPayment(row)
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Payment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE user_id = $1 ORDER BY created_at DESC`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Reconcile applies a webhook outcome to the payment matching intentID.
// Completed is a one-way door: a payment already completed is left untouched
// and the update reports applied=false, which makes redelivered events no-ops.
func (s *Store) Reconcile(ctx context.Context, intentID string, target Status, chargeID, errMsg string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE payments
		SET status = $1,
		    stripe_charge_id = COALESCE(NULLIF($2, ''), stripe_charge_id),
		    error_message = $3,
		    updated_at = NOW()
		WHERE stripe_payment_intent_id = $4
		  AND status <> 'completed'`,
		string(target), chargeID, errMsg, intentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var id, orderID, userID string
	err := row.Scan(
		&id, &orderID, &userID, &p.ChargeID, &p.IntentID,
		&p.Amount.Amount, &p.Amount.Currency, &p.Status, &p.PaymentMethod,
		&p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.ID = types.ID(id)
	p.OrderID = types.ID(orderID)
	p.UserID = types.ID(userID)
	return &p, nil
}
