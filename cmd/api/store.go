package main

import (
	"context"
	"fmt"

	"github.com/quickgram/auth-service/internal/api/handler"
	"github.com/quickgram/auth-service/internal/core/ports"
	"github.com/quickgram/auth-service/internal/infrastructure/db/memory"
	"github.com/quickgram/auth-service/internal/infrastructure/db/mongo"
	"github.com/quickgram/auth-service/internal/infrastructure/db/postgres"
	"github.com/quickgram/auth-service/internal/pkg/config"
)

// backingStore is the user repository selected by STORE_BACKEND together
// with its readiness check and shutdown hook. pinger and close are nil for
// the in-memory backend.
type backingStore struct {
	users  ports.UserRepository
	pinger handler.Pinger
	close  func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*backingStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return &backingStore{users: memory.NewUserRepository()}, nil

	case config.BackendMongo:
		st, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return &backingStore{users: st.Users, pinger: st, close: st.Close}, nil

	case config.BackendPostgres:
		st, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return &backingStore{users: st.Users, pinger: st, close: st.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
