package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

const promoColumns = `code, description, discount_percent, minimum_purchase, allowed_method, valid_from, valid_to`

// PromoRepo persists promo codes.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo constructs a PromoRepo.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

func scanPromo(row rowScanner) (model.Promo, error) {
	var p model.Promo
	err := row.Scan(&p.Code, &p.Description, &p.DiscountPercent, &p.MinimumPurchase,
		&p.AllowedMethod, &p.ValidFrom, &p.ValidTo)
	return p, err
}

// Create inserts a promo.  A taken code yields ErrConflict.
func (r *PromoRepo) Create(ctx context.Context, p *model.Promo) error {
	const q = `INSERT INTO promos (` + promoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, p.Code, p.Description,
		p.DiscountPercent.String(), p.MinimumPurchase.StringFixed(2),
		string(p.AllowedMethod), p.ValidFrom.UTC(), p.ValidTo.UTC())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// GetByCode fetches a promo by its code.  ErrNotFound when absent.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*model.Promo, error) {
	const q = `SELECT ` + promoColumns + ` FROM promos WHERE code = ? LIMIT 1`
	return queryOne(ctx, conn(ctx, r.db), scanPromo, q, code)
}

// ListActive returns promos whose validity window contains at.
func (r *PromoRepo) ListActive(ctx context.Context, at time.Time) ([]model.Promo, error) {
	const q = `SELECT ` + promoColumns + ` FROM promos
	           WHERE valid_from <= ? AND valid_to >= ?
	           ORDER BY valid_to, code`
	at = at.UTC()
	return queryAll(ctx, conn(ctx, r.db), scanPromo, q, at, at)
}
