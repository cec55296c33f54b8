package guard

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/redis"
)

func TestVerdictMessage(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    string
	}{
		{Allow, ""},
		{LimitMinute, "Rate limit exceeded: please wait a minute before trying again."},
		{LimitDay, "Daily limit reached: the chatbot is unavailable until tomorrow."},
		{LimitRepeat, "You've asked the same question too many times. Please try something different."},
	}
	for _, tt := range tests {
		if got := tt.verdict.Message(); got != tt.want {
			t.Errorf("Verdict(%d).Message() = %q, want %q", tt.verdict, got, tt.want)
		}
	}
}

func TestVerdictKind(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    string
	}{
		{Allow, "allow"},
		{LimitMinute, "minute"},
		{LimitDay, "day"},
		{LimitRepeat, "repeat"},
	}
	for _, tt := range tests {
		if got := tt.verdict.Kind(); got != tt.want {
			t.Errorf("Verdict(%d).Kind() = %q, want %q", tt.verdict, got, tt.want)
		}
	}
}

func TestQuestionHash_Normalization(t *testing.T) {
	base := questionHash("What are your hours?")
	same := []string{
		"what are your hours?",
		"WHAT ARE YOUR HOURS?",
		"  what   are your\thours?  ",
	}
	for _, q := range same {
		if questionHash(q) != base {
			t.Errorf("expected %q to hash the same as the base question", q)
		}
	}
	if questionHash("what are your hours") == base {
		t.Error("punctuation differences should produce distinct hashes")
	}
	if len(base) != 32 {
		t.Errorf("expected a 32-hex-char hash, got %d chars", len(base))
	}
}

func TestCheck_DisabledAllowsEverything(t *testing.T) {
	g := New(nil, config.GuardConfig{Enabled: false})
	for i := 0; i < 100; i++ {
		if v := g.Check(context.Background(), "203.0.113.7", "hello"); v != Allow {
			t.Fatalf("disabled guard returned %v", v)
		}
	}
}

func TestCheck_NilClientAllowsEverything(t *testing.T) {
	g := New(nil, config.GuardConfig{Enabled: true, PerMinute: 1, PerDay: 1, RepeatConsecutive: 1, RepeatTotal: 1})
	if v := g.Check(context.Background(), "203.0.113.7", "hello"); v != Allow {
		t.Fatalf("guard without a client returned %v", v)
	}
}

func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := redis.NewClient(config.RedisConfig{Addr: addr, PoolSize: 5})
	if err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// uniqueCaller keeps counter keys from colliding across test runs.
func uniqueCaller(t *testing.T) string {
	return fmt.Sprintf("test:%s:%d", t.Name(), time.Now().UnixNano())
}

func TestCheck_MinuteLimit(t *testing.T) {
	client := testRedisClient(t)
	cfg := config.GuardConfig{Enabled: true, PerMinute: 3, PerDay: 1000, RepeatConsecutive: 100, RepeatTotal: 100}
	g := New(client, cfg)
	caller := uniqueCaller(t)
	ctx := context.Background()

	for i := 0; i < cfg.PerMinute; i++ {
		if v := g.Check(ctx, caller, fmt.Sprintf("question %d", i)); v != Allow {
			t.Fatalf("request %d under the limit returned %v", i+1, v)
		}
	}
	if v := g.Check(ctx, caller, "one more"); v != LimitMinute {
		t.Errorf("request over the minute limit returned %v, want LimitMinute", v)
	}
}

func TestCheck_DailyLimit(t *testing.T) {
	client := testRedisClient(t)
	cfg := config.GuardConfig{Enabled: true, PerMinute: 1000, PerDay: 2, RepeatConsecutive: 100, RepeatTotal: 100}
	g := New(client, cfg)
	caller := uniqueCaller(t)
	ctx := context.Background()

	for i := 0; i < cfg.PerDay; i++ {
		if v := g.Check(ctx, caller, fmt.Sprintf("question %d", i)); v != Allow {
			t.Fatalf("request %d under the limit returned %v", i+1, v)
		}
	}
	if v := g.Check(ctx, caller, "one more"); v != LimitDay {
		t.Errorf("request over the daily limit returned %v, want LimitDay", v)
	}
}

func TestCheck_ConsecutiveRepeatLimit(t *testing.T) {
	client := testRedisClient(t)
	cfg := config.GuardConfig{Enabled: true, PerMinute: 1000, PerDay: 1000, RepeatConsecutive: 3, RepeatTotal: 100}
	g := New(client, cfg)
	caller := uniqueCaller(t)
	ctx := context.Background()

	for i := 0; i < cfg.RepeatConsecutive; i++ {
		if v := g.Check(ctx, caller, "what are your hours"); v != Allow {
			t.Fatalf("repeat %d under the limit returned %v", i+1, v)
		}
	}
	if v := g.Check(ctx, caller, "what are your hours"); v != LimitRepeat {
		t.Errorf("consecutive repeat over the limit returned %v, want LimitRepeat", v)
	}

	// A different question resets the consecutive streak.
	if v := g.Check(ctx, caller, "where are you located"); v != Allow {
		t.Errorf("different question after the streak returned %v, want Allow", v)
	}
	if v := g.Check(ctx, caller, "what are your hours"); v != Allow {
		t.Errorf("repeat after the streak reset returned %v, want Allow", v)
	}
}

func TestCheck_TotalRepeatLimit(t *testing.T) {
	client := testRedisClient(t)
	cfg := config.GuardConfig{Enabled: true, PerMinute: 1000, PerDay: 1000, RepeatConsecutive: 2, RepeatTotal: 4}
	g := New(client, cfg)
	caller := uniqueCaller(t)
	ctx := context.Background()

	// Interleave a second question so the consecutive streak never trips,
	// exercising the total ceiling on its own.
	asked := 0
	for asked < cfg.RepeatTotal {
		if v := g.Check(ctx, caller, "what are your hours"); v != Allow {
			t.Fatalf("ask %d under the total limit returned %v", asked+1, v)
		}
		asked++
		if v := g.Check(ctx, caller, fmt.Sprintf("filler question %d", asked)); v != Allow {
			t.Fatalf("filler question returned %v", v)
		}
	}
	if v := g.Check(ctx, caller, "what are your hours"); v != LimitRepeat {
		t.Errorf("ask over the total limit returned %v, want LimitRepeat", v)
	}
}
