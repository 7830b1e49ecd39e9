package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

const paymentColumns = `id, payer_id, amount, method, promo_code, status, claim_ref,
	screen_id, show_id, seat_codes, created_at, updated_at`

// PaymentRepo persists payments.  Status changes are conditional updates
// so a payment can never skip or repeat a transition.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.PayerID, &p.Amount, &p.Method, &p.PromoCode, &p.Status, &p.ClaimRef,
		&p.ScreenID, &p.ShowID, &p.SeatCodes, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a payment and populates its ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments
	           (payer_id, amount, method, promo_code, status, claim_ref, screen_id, show_id, seat_codes, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := insert(ctx, conn(ctx, r.db), q,
		p.PayerID, p.Amount.StringFixed(2), string(p.Method), p.PromoCode, string(p.Status), p.ClaimRef,
		p.ScreenID, p.ShowID, p.SeatCodes, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetByID fetches a payment.  ErrNotFound when absent.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	return queryOne(ctx, conn(ctx, r.db), scanPayment, q, id)
}

// GetForUpdate fetches a payment and row-locks it for the transaction in ctx.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ? FOR UPDATE`
	return queryOne(ctx, conn(ctx, r.db), scanPayment, q, id)
}

// UpdateStatus moves a payment from one status to another.  It returns
// ErrStaleStatus when the payment is missing or no longer in from, and
// refuses transitions the payment lifecycle does not allow.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.PaymentStatus, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return ErrStaleStatus
	}
	const q = `UPDATE payments SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	n, err := exec(ctx, conn(ctx, r.db), q, string(to), at.UTC(), id, string(from))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ListPendingBefore returns up to limit PENDING payments created before
// the given time, oldest first.
func (r *PaymentRepo) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments
	           WHERE status = 'PENDING' AND created_at < ?
	           ORDER BY created_at, id
	           LIMIT ?`
	return queryAll(ctx, conn(ctx, r.db), scanPayment, q, before.UTC(), limit)
}
