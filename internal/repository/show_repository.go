// Package repository contains data access logic for Show domain operations.
// A Show is a scheduled screening of a movie on a screen; its end time
// decides when the seats it booked are freed for later shows.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo creates a new ShowRepo.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

func scanShow(row rowScanner) (model.Show, error) {
	var s model.Show
	err := row.Scan(&s.ID, &s.ScreenID, &s.MovieTitle, &s.StartsAt, &s.EndsAt, &s.CreatedAt)
	return s, err
}

// Create inserts a new show.  On success the generated ID is populated.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (screen_id, movie_title, starts_at, ends_at, created_at) VALUES (?, ?, ?, ?, ?)`
	id, err := insert(ctx, conn(ctx, r.db), q, s.ScreenID, s.MovieTitle, s.StartsAt.UTC(), s.EndsAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// GetByID retrieves a show by its ID.  ErrNotFound when absent.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, screen_id, movie_title, starts_at, ends_at, created_at FROM shows WHERE id = ?`
	return queryOne(ctx, conn(ctx, r.db), scanShow, q, id)
}

// ListByScreen lists shows on a screen that end after from, earliest first.
func (r *ShowRepo) ListByScreen(ctx context.Context, screenID uint64, from time.Time) ([]model.Show, error) {
	const q = `SELECT id, screen_id, movie_title, starts_at, ends_at, created_at
	           FROM shows
	           WHERE screen_id = ? AND ends_at > ?
	           ORDER BY starts_at`
	return queryAll(ctx, conn(ctx, r.db), scanShow, q, screenID, from.UTC())
}
