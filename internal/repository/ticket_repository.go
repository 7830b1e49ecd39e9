package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-booking/internal/model"
)

const ticketColumns = `id, payer_id, payment_id, screen_id, show_id, seat_codes, created_at`

// TicketRepo persists tickets.  tickets.payment_id is unique, so a second
// ticket for the same payment fails with ErrConflict.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

func scanTicket(row rowScanner) (model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.PayerID, &t.PaymentID, &t.ScreenID, &t.ShowID, &t.SeatCodes, &t.CreatedAt)
	return t, err
}

// Create inserts a ticket and populates its ID.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (payer_id, payment_id, screen_id, show_id, seat_codes, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	id, err := insert(ctx, conn(ctx, r.db), q, t.PayerID, t.PaymentID, t.ScreenID, t.ShowID, t.SeatCodes, t.CreatedAt.UTC())
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetByID fetches a ticket.  ErrNotFound when absent.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	return queryOne(ctx, conn(ctx, r.db), scanTicket, q, id)
}

// GetByPaymentID fetches the ticket issued for a payment.
func (r *TicketRepo) GetByPaymentID(ctx context.Context, paymentID uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE payment_id = ?`
	return queryOne(ctx, conn(ctx, r.db), scanTicket, q, paymentID)
}

// ListByPayer returns the payer's tickets, newest first.
func (r *TicketRepo) ListByPayer(ctx context.Context, payerID uint64) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE payer_id = ? ORDER BY created_at DESC, id DESC`
	return queryAll(ctx, conn(ctx, r.db), scanTicket, q, payerID)
}

// Delete removes a ticket.  ErrNotFound when nothing was deleted.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	n, err := exec(ctx, conn(ctx, r.db), `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
