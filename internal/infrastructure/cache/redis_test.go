package cache

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"
)

func TestRedis_DisabledIsNoop(t *testing.T) {
	r := NewRedisWithClient(nil, 0, log.New(io.Discard, "", 0))
	ctx := context.Background()

	if r.Available() {
		t.Fatalf("expected unavailable cache")
	}
	if err := r.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	var out []string
	hit, err := r.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if err := r.SetJSON(ctx, "k", []string{"a"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.SetIfNotExists(ctx, "k", "v", 0); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from SetIfNotExists, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRedis_TryLockWithoutRedisIsGranted(t *testing.T) {
	var r *Redis
	ok, release, err := r.TryLock(context.Background(), ResolveLockKey("job-1"), time.Second)
	if err != nil || !ok {
		t.Fatalf("expected lock granted without redis, got ok=%v err=%v", ok, err)
	}
	release()
}

func TestKeys(t *testing.T) {
	if got := JobListKey(" u-1 "); got != "scrape:jobs:u-1" {
		t.Fatalf("JobListKey = %q", got)
	}
	if got := RecipeListKey("u-1"); got != "scrape:recipes:u-1" {
		t.Fatalf("RecipeListKey = %q", got)
	}
	if got := ResolveLockKey("j-1"); got != "scrape:resolve:lock:j-1" {
		t.Fatalf("ResolveLockKey = %q", got)
	}
	if got := LaunchLockKey(" j-1 "); got != "scrape:launch:lock:j-1" {
		t.Fatalf("LaunchLockKey = %q", got)
	}
}
