package redis

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSlidingWindowHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		count, err := client.SlidingWindowHit(ctx, "bucket", start.Add(time.Duration(i)*time.Second), time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != int64(i+1) {
			t.Fatalf("expected count %d got %d", i+1, count)
		}
	}
	if got := mock.ttls["bucket"]; got != time.Minute {
		t.Fatalf("expected bucket ttl refreshed to window, got %v", got)
	}

	// first two hits fall out of the window
	count, err := client.SlidingWindowHit(ctx, "bucket", start.Add(61*time.Second+time.Millisecond), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected stale hits pruned, got %d", count)
	}

	if _, err := client.SlidingWindowHit(ctx, "bucket", start, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to win, ok=%v err=%v", ok, err)
	}
	ok, _ = client.SetNX(ctx, "k", "other", time.Minute)
	if ok {
		t.Fatalf("expected second setnx to lose")
	}
	if v, _ := client.Get(ctx, "k"); v != "v" {
		t.Fatalf("expected original value, got %q", v)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "hs:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("reserve:ip:10.0.0.1"); got != "hs:rate_limit:reserve:ip:10.0.0.1" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.LockKey("cron"); got != "hs:lock:cron" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "hs:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

type mockCmdable struct {
	data  map[string]string
	zsets map[string]map[string]float64
	ttls  map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		zsets: make(map[string]map[string]float64),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
		delete(m.zsets, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return nil, fn(&mockPipeline{m: m})
}

// mockPipeline applies sorted-set commands immediately; unimplemented methods panic via the nil embed.
type mockPipeline struct {
	redis.Pipeliner
	m *mockCmdable
}

func (p *mockPipeline) ZRemRangeByScore(ctx context.Context, key, min, max string) *redis.IntCmd {
	ceiling, _ := strconv.ParseFloat(max, 64)
	removed := int64(0)
	for member, score := range p.m.zsets[key] {
		if score <= ceiling {
			delete(p.m.zsets[key], member)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (p *mockPipeline) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	set, ok := p.m.zsets[key]
	if !ok {
		set = make(map[string]float64)
		p.m.zsets[key] = set
	}
	for _, z := range members {
		set[fmt.Sprint(z.Member)] = z.Score
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (p *mockPipeline) ZCard(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(p.m.zsets[key])), nil)
}

func (p *mockPipeline) PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}
