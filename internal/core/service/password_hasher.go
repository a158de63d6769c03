package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quickgram/auth-service/internal/api/metrics"
	"github.com/quickgram/auth-service/internal/core/domain"
)

// DefaultBcryptCost is the adaptive cost used unless configured otherwise.
const DefaultBcryptCost = 12

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// Runner executes fn on a worker and waits for it. queue.WorkerPool satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
	Pending() int
}

// BcryptHasher implements ports.PasswordHasher.
type BcryptHasher struct {
	cost   int
	runner Runner
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range costs
// fall back to DefaultBcryptCost. runner may be nil, in which case work runs
// on the calling goroutine.
func NewBcryptHasher(cost int, runner Runner) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost, runner: runner}
}

// Hash returns a bcrypt hash with a fresh random salt embedded in it.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	var (
		hash []byte
		err  error
	)
	runErr := h.run(ctx, "hash", func() {
		hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if runErr != nil {
		return "", fmt.Errorf("hash password: %w", runErr)
	}
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. The comparison is constant
// time. An error is returned only when the work could not be scheduled, for
// example because ctx was cancelled or the pool has stopped.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var err error
	runErr := h.run(ctx, "verify", func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	})
	if runErr != nil {
		return false, fmt.Errorf("verify password: %w", runErr)
	}
	return err == nil, nil
}

func (h *BcryptHasher) run(ctx context.Context, op string, fn func()) error {
	start := time.Now()
	defer func() {
		metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if h.runner == nil {
		fn()
		return nil
	}
	metrics.HashQueueDepth.Set(float64(h.runner.Pending()))
	return h.runner.Do(ctx, fn)
}
