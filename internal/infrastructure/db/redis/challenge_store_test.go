package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

func setupStore(t *testing.T) (*ChallengeStore, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return NewChallengeStore(client), cleanup
}

func testChallenge(phone string) domain.Challenge {
	return domain.Challenge{
		Phone:     phone,
		Code:      "123456",
		Role:      domain.RoleFarmer,
		ExpiresAt: time.Now().Add(domain.ChallengeTTL).UTC(),
	}
}

func TestChallengeStore_PutTake(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	want := testChallenge("9000000001")
	if err := store.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Take(ctx, "9000000001")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.Code != want.Code || got.Role != want.Role || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestChallengeStore_TakeConsumes(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Put(ctx, testChallenge("9000000001")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Take(ctx, "9000000001"); err != nil {
		t.Fatalf("first take: %v", err)
	}
	if _, err := store.Take(ctx, "9000000001"); !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Fatalf("second take = %v, want ErrNoActiveChallenge", err)
	}
}

func TestChallengeStore_TakeMissing(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	if _, err := store.Take(context.Background(), "9000000009"); !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Fatalf("expected ErrNoActiveChallenge, got %v", err)
	}
}

func TestChallengeStore_PutOverwrites(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	first := testChallenge("9000000001")
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := first
	second.Code = "654321"
	second.Role = domain.RoleDistributor
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Take(ctx, "9000000001")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.Code != "654321" || got.Role != domain.RoleDistributor {
		t.Fatalf("last send did not win: %+v", got)
	}
}

func TestChallengeStore_ConcurrentTakeSingleWinner(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Put(ctx, testChallenge("9000000001")); err != nil {
		t.Fatalf("put: %v", err)
	}

	const takers = 8
	var wg sync.WaitGroup
	errs := make([]error, takers)
	for i := 0; i < takers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Take(ctx, "9000000001")
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrNoActiveChallenge):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}
