package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func newTestLimiter(ev redisEvaler, window time.Duration, max int) *redisFrameRateLimiter {
	return &redisFrameRateLimiter{
		client:  ev,
		window:  window,
		max:     max,
		prefix:  "relay:rl:",
		timeout: time.Second,
	}
}

func TestRedisFrameRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisFrameRateLimiter
		if !l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("nil client returns nil limiter", func(t *testing.T) {
		if NewRedisFrameRateLimiter(nil, time.Minute, 3) != nil {
			t.Fatalf("expected nil limiter without redis client")
		}
	})

	t.Run("empty key is bucketed as anonymous", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 1}
		l := newTestLimiter(mock, time.Minute, 3)
		if !l.Allow(ctx, "   ") {
			t.Fatalf("expected allow")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "relay:rl:anonymous" {
			t.Fatalf("unexpected key, got %+v", mock.lastKeys)
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 3}
		l := newTestLimiter(mock, 2*time.Minute, 3)
		if !l.Allow(ctx, " User-1 ") {
			t.Fatalf("expected allow when count <= max")
		}
		if mock.lastKeys[0] != "relay:rl:user-1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisFrameAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{result: 4}, time.Minute, 3)
		if l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}
