package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgram/auth-service/internal/core/domain"
)

func TestUserRepository_InsertAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &domain.User{ID: "id-1", Email: "alice@example.com", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Insert(ctx, u))

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	// Returned value is a copy.
	got.Username = "mutated"
	again, _ := repo.FindByEmail(ctx, "alice@example.com")
	assert.Equal(t, "alice", again.Username)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.User{ID: "1", Email: "Alice@example.com"}))

	_, err := repo.FindByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DuplicateKeepsFirst(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.User{ID: "first", Email: "bob@example.com", PasswordHash: "h1"}))
	err := repo.Insert(ctx, &domain.User{ID: "second", Email: "bob@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	got, err := repo.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "first", got.ID)
	assert.Equal(t, "h1", got.PasswordHash)
}

func TestUserRepository_ConcurrentInsertSameEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Insert(ctx, &domain.User{ID: string(rune('a' + i)), Email: "race@example.com"})
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case domain.ErrUserExists:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, repo.Len())
}

func TestUserRepository_NotFound(t *testing.T) {
	_, err := NewUserRepository().FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
