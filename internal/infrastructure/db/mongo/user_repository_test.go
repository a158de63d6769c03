package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/quickgram/auth-service/internal/core/domain"
	"github.com/quickgram/auth-service/internal/core/ports"
)

func TestUserRepository_ImplementsPort(t *testing.T) {
	var _ ports.UserRepository = (*UserRepository)(nil)
}

func TestUserDocument_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	in := &domain.User{
		ID:           "5d0c9a1e-0000-4000-8000-000000000001",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$2a$12$abc",
		CreatedAt:    created,
	}

	out := toDocument(in).toDomain()
	if out.ID != in.ID || out.Email != in.Email || out.Username != in.Username ||
		out.PasswordHash != in.PasswordHash || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", out, in)
	}
}

func TestUnixToTime_Zero(t *testing.T) {
	if !unixToTime(0).IsZero() {
		t.Fatalf("expected zero time for 0")
	}
}

func usersNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + collectionUsers
}

func TestUserRepository_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	user := &domain.User{
		ID:           "5d0c9a1e-0000-4000-8000-000000000002",
		Email:        "bob@example.com",
		Username:     "bob",
		PasswordHash: "$2a$12$def",
		CreatedAt:    time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}

	mt.Run("success", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.Insert(context.Background(), user); err != nil {
			mt.Fatalf("insert: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "insert" {
			mt.Fatalf("expected an insert command, got %+v", evt)
		}
		doc := evt.Command.Lookup("documents").Array().Index(0).Value().Document()
		if got := doc.Lookup("email").StringValue(); got != user.Email {
			mt.Fatalf("inserted email %q, want %q", got, user.Email)
		}
		if got := doc.Lookup("created_at").Int64(); got != user.CreatedAt.Unix() {
			mt.Fatalf("inserted created_at %d, want %d", got, user.CreatedAt.Unix())
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: quickgram.users index: uniq_email",
		}))

		if err := repo.Insert(context.Background(), user); !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.Insert(context.Background(), user)
		if err == nil || errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected a wrapped server error, got %v", err)
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "5d0c9a1e-0000-4000-8000-000000000003"},
			{Key: "email", Value: "carol@example.com"},
			{Key: "username", Value: "carol"},
			{Key: "password_hash", Value: "$2a$12$ghi"},
			{Key: "created_at", Value: int64(1714979289)},
		}))

		user, err := repo.FindByEmail(context.Background(), "carol@example.com")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if user.ID != "5d0c9a1e-0000-4000-8000-000000000003" || user.Username != "carol" || user.PasswordHash != "$2a$12$ghi" {
			mt.Fatalf("unexpected user %+v", user)
		}
		if !user.CreatedAt.Equal(time.Unix(1714979289, 0)) {
			mt.Fatalf("unexpected created_at %v", user.CreatedAt)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected a find command, got %+v", evt)
		}
		if got := evt.Command.Lookup("filter", "email").StringValue(); got != "carol@example.com" {
			mt.Fatalf("filtered on %q", got)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace(mt), mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := repo.FindByEmail(context.Background(), "carol@example.com")
		if err == nil || errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected a wrapped server error, got %v", err)
		}
	})
}

func TestUserRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates unique email index", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("ensure indexes: %v", err)
		}
		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "createIndexes" {
			mt.Fatalf("expected createIndexes, got %+v", evt)
		}
		index := evt.Command.Lookup("indexes").Array().Index(0).Value().Document()
		if !index.Lookup("unique").Boolean() || index.Lookup("name").StringValue() != "uniq_email" {
			mt.Fatalf("unexpected index spec %v", index)
		}
	})
}
