package redis

import (
	"context"
	"testing"
	"time"
)

type counterClient struct {
	RedisClient
	counts  map[string]int64
	expires map[string]time.Duration
}

func (c *counterClient) Incr(_ context.Context, key string) (int64, error) {
	c.counts[key]++
	return c.counts[key], nil
}

func (c *counterClient) Expire(_ context.Context, key string, d time.Duration) error {
	c.expires[key] = d
	return nil
}

func TestRateLimiter_Allow(t *testing.T) {
	cli := &counterClient{counts: map[string]int64{}, expires: map[string]time.Duration{}}
	rl := NewRateLimiter(cli)
	key := SubmitKey("user-1")

	for i := 1; i <= 3; i++ {
		ok, err := rl.Allow(context.Background(), key, 2, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := i <= 2; ok != want {
			t.Errorf("call %d: expected allowed=%v, got %v", i, want, ok)
		}
	}
	if cli.expires[key] != time.Minute {
		t.Errorf("expected window to be set on first hit, got %v", cli.expires[key])
	}
	if key != "rate_limit:user-1:submit" {
		t.Errorf("unexpected key %q", key)
	}
}
