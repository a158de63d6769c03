package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickgram/auth-service/internal/core/domain"
	"github.com/quickgram/auth-service/internal/infrastructure/queue"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	ctx := context.Background()

	for _, p := range []string{"s3cret", "a", "pässwörd with spaces", strings.Repeat("x", 72)} {
		hash, err := h.Hash(ctx, p)
		if err != nil {
			t.Fatalf("Hash(%q) returned error: %v", p, err)
		}
		if hash == "" || hash == p {
			t.Fatalf("hash must be non-empty and differ from plaintext, got %q", hash)
		}
		if ok, err := h.Verify(ctx, p, hash); err != nil || !ok {
			t.Fatalf("Verify failed for %q: %v", p, err)
		}
		if ok, err := h.Verify(ctx, p+"!", hash); err != nil || ok {
			t.Fatalf("Verify accepted wrong password for %q: %v", p, err)
		}
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	ctx := context.Background()

	first, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected different hashes for the same password")
	}
	for _, hash := range []string{first, second} {
		if ok, err := h.Verify(ctx, "same-password", hash); err != nil || !ok {
			t.Fatalf("both hashes must verify: %v", err)
		}
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher(0, nil)
	if h.cost != DefaultBcryptCost {
		t.Fatalf("expected cost %d, got %d", DefaultBcryptCost, h.cost)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	_, err := h.Hash(context.Background(), strings.Repeat("x", 73))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBcryptHasher_VerifyGarbageHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	if ok, err := h.Verify(context.Background(), "pwd", "not-a-bcrypt-hash"); err != nil || ok {
		t.Fatalf("expected verify to reject a garbage hash without error, got %v, %v", ok, err)
	}
}

func TestBcryptHasher_OnWorkerPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewWorkerPool(2, zerolog.Nop())
	pool.Start(ctx)

	h := NewBcryptHasher(bcrypt.MinCost, pool)
	hash, err := h.Hash(ctx, "pooled")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := h.Verify(ctx, "pooled", hash); err != nil || !ok {
		t.Fatalf("expected pooled hash to verify: %v", err)
	}
}

func TestBcryptHasher_StoppedPoolIsAnError(t *testing.T) {
	runner := &switchableRunner{}
	h := NewBcryptHasher(bcrypt.MinCost, runner)
	hash, err := h.Hash(context.Background(), "pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	runner.stopped.Store(true)
	matched, err := h.Verify(context.Background(), "pw", hash)
	if !errors.Is(err, queue.ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
	if matched {
		t.Fatalf("verify must not report a match when it did not run")
	}
	if _, err := h.Hash(context.Background(), "pw"); !errors.Is(err, queue.ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped from Hash, got %v", err)
	}
}
