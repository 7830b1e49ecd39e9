package memory

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/utils"
)

// Users is the account table.
type Users struct{ s *Store }

// Create hashes the password and stores a new active account.
func (u Users) Create(ctx context.Context, email, fullName, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id uint64
	err = u.s.do(ctx, func(s *state) error {
		for _, existing := range s.users {
			if existing.Email == email {
				return repository.ErrEmailExists
			}
		}
		now := time.Now().UTC()
		id = s.id("users")
		s.users[id] = model.User{
			ID:           id,
			Email:        email,
			FullName:     strings.TrimSpace(fullName),
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return nil
	})
	return id, err
}

// GetByEmail fetches an account by normalized email.
func (u Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var out model.User
	err := u.s.do(ctx, func(s *state) error {
		for _, existing := range s.users {
			if existing.Email == email {
				out = existing
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

// GetByID fetches an account by id.
func (u Users) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var out model.User
	err := u.s.do(ctx, func(s *state) error {
		existing, ok := s.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = existing
		return nil
	})
	return out, err
}

// Tokens is the refresh token table.
type Tokens struct{ s *Store }

// StoreRefresh records a refresh token hash.
func (t Tokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return t.s.do(ctx, func(s *state) error {
		s.tokens[tokenHash] = refreshToken{userID: userID, expiresAt: exp.UTC()}
		return nil
	})
}

// ValidateRefresh returns the owner of a live token.
func (t Tokens) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var userID uint64
	err := t.s.do(ctx, func(s *state) error {
		tok, ok := s.tokens[tokenHash]
		if !ok || tok.revoked || !tok.expiresAt.After(now) {
			return repository.ErrNotFound
		}
		userID = tok.userID
		return nil
	})
	return userID, err
}

// RevokeByHash revokes one token.
func (t Tokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return t.s.do(ctx, func(s *state) error {
		if tok, ok := s.tokens[tokenHash]; ok {
			tok.revoked = true
			s.tokens[tokenHash] = tok
		}
		return nil
	})
}

// RevokeAllForUser revokes every token of the user.
func (t Tokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return t.s.do(ctx, func(s *state) error {
		for h, tok := range s.tokens {
			if tok.userID == userID {
				tok.revoked = true
				s.tokens[h] = tok
			}
		}
		return nil
	})
}
