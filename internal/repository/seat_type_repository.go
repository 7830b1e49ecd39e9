package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-booking/internal/model"
)

// SeatTypeRepo persists price tiers.  Prices are DECIMAL(10,2) columns
// scanned straight into decimal.Decimal.
type SeatTypeRepo struct {
	db *sql.DB
}

// NewSeatTypeRepo constructs a SeatTypeRepo.
func NewSeatTypeRepo(db *sql.DB) *SeatTypeRepo { return &SeatTypeRepo{db: db} }

func scanSeatType(row rowScanner) (model.SeatType, error) {
	var st model.SeatType
	err := row.Scan(&st.ID, &st.Name, &st.Price)
	return st, err
}

// Create inserts a seat type.  A taken name yields ErrConflict.
func (r *SeatTypeRepo) Create(ctx context.Context, st *model.SeatType) error {
	const q = `INSERT INTO seat_types (name, price) VALUES (?, ?)`
	id, err := insert(ctx, conn(ctx, r.db), q, st.Name, st.Price.StringFixed(2))
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

// GetByIDs returns the seat types among ids keyed by id.  Unknown ids are
// simply absent from the map.
func (r *SeatTypeRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.SeatType, error) {
	out := make(map[uint64]model.SeatType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT id, name, price FROM seat_types WHERE id IN (` + inClause(len(ids)) + `)`
	types, err := queryAll(ctx, conn(ctx, r.db), scanSeatType, q, uintArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, st := range types {
		out[st.ID] = st
	}
	return out, nil
}

// List returns all seat types ordered by price.
func (r *SeatTypeRepo) List(ctx context.Context) ([]model.SeatType, error) {
	const q = `SELECT id, name, price FROM seat_types ORDER BY price, name`
	return queryAll(ctx, conn(ctx, r.db), scanSeatType, q)
}
