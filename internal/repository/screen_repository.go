package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-booking/internal/model"
)

// ScreenRepo encapsulates all database queries related to screens.
type ScreenRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewScreenRepo constructs a ScreenRepo with the provided DB handle.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

func scanScreen(row rowScanner) (model.Screen, error) {
	var s model.Screen
	err := row.Scan(&s.ID, &s.Name, &s.DisplayTech, &s.AudioTech, &s.IsActive, &s.CreatedAt)
	return s, err
}

// Create inserts a new screen.  A taken name yields ErrConflict.
func (r *ScreenRepo) Create(ctx context.Context, s *model.Screen) error {
	const q = `INSERT INTO screens (name, display_tech, audio_tech, is_active, created_at) VALUES (?, ?, ?, ?, ?)`
	id, err := insert(ctx, conn(ctx, r.db), q, s.Name, s.DisplayTech, s.AudioTech, s.IsActive, s.CreatedAt.UTC())
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// GetByID retrieves a screen by its id.  ErrNotFound when absent.
func (r *ScreenRepo) GetByID(ctx context.Context, id uint64) (*model.Screen, error) {
	const q = `SELECT id, name, display_tech, audio_tech, is_active, created_at FROM screens WHERE id = ?`
	return queryOne(ctx, conn(ctx, r.db), scanScreen, q, id)
}

// List returns all screens ordered by name.
func (r *ScreenRepo) List(ctx context.Context) ([]model.Screen, error) {
	const q = `SELECT id, name, display_tech, audio_tech, is_active, created_at FROM screens ORDER BY name`
	return queryAll(ctx, conn(ctx, r.db), scanScreen, q)
}
