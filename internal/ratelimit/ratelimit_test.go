package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/testutil"
)

func TestMemoryStore_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := s.Increment(ctx, "k", 5, time.Minute)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d rejected, want allowed", i)
		}
		if res.Remaining != 5-i {
			t.Errorf("attempt %d Remaining = %d, want %d", i, res.Remaining, 5-i)
		}
	}

	res, _ := s.Increment(ctx, "k", 5, time.Minute)
	if res.Allowed {
		t.Error("6th attempt allowed, want rejected")
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}

	// Other keys are independent.
	if res, _ := s.Increment(ctx, "other", 5, time.Minute); !res.Allowed {
		t.Error("independent key rejected")
	}

	now = now.Add(time.Minute + time.Second)
	if res, _ := s.Increment(ctx, "k", 5, time.Minute); !res.Allowed || res.Remaining != 4 {
		t.Errorf("after window = %+v, want allowed with 4 remaining", res)
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Increment(ctx, "a", 1, time.Second)
	s.Increment(ctx, "b", 1, time.Second)
	now = now.Add(2 * time.Minute)
	s.Increment(ctx, "c", 1, time.Second)

	if n := s.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1 after prune", n)
	}
}

func TestRuleKey(t *testing.T) {
	if got := AdminLogin.Key("1.2.3.4"); got != "admin-login:1.2.3.4" {
		t.Errorf("Key() = %q", got)
	}
	if EditRead.Limit != 30 || EditWrite.Limit != 10 || AdminLogin.Window != 15*time.Minute {
		t.Error("rule limits changed")
	}
}

func TestRedisStore(t *testing.T) {
	client := testutil.RedisClient(t)

	s := NewRedisStore(client)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	defer client.Del(ctx, redisKeyPrefix+key)

	for i := 1; i <= 3; i++ {
		res, err := s.Increment(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d rejected", i)
		}
	}
	res, err := s.Increment(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if res.Allowed {
		t.Error("4th attempt allowed, want rejected")
	}
	if ttl := client.PTTL(ctx, redisKeyPrefix+key).Val(); ttl <= 0 || ttl > time.Minute {
		t.Errorf("PTTL = %v, want within window", ttl)
	}
}
