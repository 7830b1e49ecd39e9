package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/utils"
)

const userColumns = `id, email, full_name, password_hash, role, is_active, created_at, updated_at`

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, fullName, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id, err := insert(ctx, conn(ctx, r.DB),
		"INSERT INTO users (email, full_name, password_hash, role) VALUES (?,?,?,?)",
		email, strings.TrimSpace(fullName), hash, role)
	if err == ErrConflict {
		return 0, ErrEmailExists
	}
	return id, err
}

// GetByEmail fetches a user by normalized email.  ErrNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := queryOne(ctx, conn(ctx, r.DB), scanUser,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// GetByID fetches a user by id.  ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := queryOne(ctx, conn(ctx, r.DB), scanUser,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}
