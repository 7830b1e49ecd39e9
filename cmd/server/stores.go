package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/config"
	"github.com/iliyamo/movie-booking/internal/database"
	"github.com/iliyamo/movie-booking/internal/handler"
	"github.com/iliyamo/movie-booking/internal/repository"
	"github.com/iliyamo/movie-booking/internal/repository/memory"
	"github.com/iliyamo/movie-booking/internal/service"
)

// backend is the storage a deployment runs on.
type backend struct {
	stores service.Stores
	users  handler.UserStore
	tokens handler.TokenStore
	close  func() error
}

func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		st := memory.New()
		return backend{stores: st.Stores(), users: st.Users(), tokens: st.Tokens(), close: func() error { return nil }}, nil
	}

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return backend{}, fmt.Errorf("open mysql: %w", err)
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return backend{}, err
		}
		log.Info("database migrated")
	}
	return backend{
		stores: mysqlStores(db),
		users:  repository.NewUserRepo(db),
		tokens: repository.NewTokenRepo(db),
		close:  db.Close,
	}, nil
}

func mysqlStores(db *sql.DB) service.Stores {
	return service.Stores{
		Tx:        repository.NewTxManager(db),
		Seats:     repository.NewSeatRepo(db),
		SeatTypes: repository.NewSeatTypeRepo(db),
		Promos:    repository.NewPromoRepo(db),
		Payments:  repository.NewPaymentRepo(db),
		Tickets:   repository.NewTicketRepo(db),
		Shows:     repository.NewShowRepo(db),
		Screens:   repository.NewScreenRepo(db),
		Accounts:  repository.NewUserRepo(db),
	}
}
