// Package guard enforces the per-caller request and repeat-question ceilings
// on Redis counters. Every limit maps to its own fixed user-facing message;
// a Redis outage fails open so the chatbot keeps answering.
package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/redis"
)

// Verdict is the outcome of a guard check.
type Verdict int

const (
	Allow Verdict = iota
	LimitMinute
	LimitDay
	LimitRepeat
)

// Fixed fallback messages per limit kind.
const (
	MessageMinute = "Rate limit exceeded: please wait a minute before trying again."
	MessageDay    = "Daily limit reached: the chatbot is unavailable until tomorrow."
	MessageRepeat = "You've asked the same question too many times. Please try something different."
)

// Message returns the user-facing text for a limiting verdict, or "" for
// Allow.
func (v Verdict) Message() string {
	switch v {
	case LimitMinute:
		return MessageMinute
	case LimitDay:
		return MessageDay
	case LimitRepeat:
		return MessageRepeat
	default:
		return ""
	}
}

// Kind returns a short label for metrics and logs.
func (v Verdict) Kind() string {
	switch v {
	case LimitMinute:
		return "minute"
	case LimitDay:
		return "day"
	case LimitRepeat:
		return "repeat"
	default:
		return "allow"
	}
}

// consecutiveScript compares the stored last-question hash against the new
// one in a single Redis round trip, so concurrent bursts from one caller
// cannot undercount. Returns the consecutive-ask count for the question.
const consecutiveScript = `
local last = redis.call('GET', KEYS[1])
if last == ARGV[1] then
  local n = redis.call('INCR', KEYS[2])
  redis.call('EXPIRE', KEYS[2], ARGV[2])
  return n
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
redis.call('SET', KEYS[2], 1, 'EX', ARGV[2])
return 1
`

// Guard checks one caller identity against all configured ceilings.
type Guard struct {
	client *redis.Client
	cfg    config.GuardConfig
	logger *slog.Logger
}

// New creates a Guard. A nil Redis client disables enforcement entirely.
func New(client *redis.Client, cfg config.GuardConfig) *Guard {
	return &Guard{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "guard"),
	}
}

// Check records one request for caller and returns the first exceeded limit,
// in the order minute → day → repeat. Redis errors are logged and the
// request is allowed through.
func (g *Guard) Check(ctx context.Context, caller, message string) Verdict {
	if !g.cfg.Enabled || g.client == nil {
		return Allow
	}

	minuteKey := "chat:rl:minute:" + caller
	count, err := g.client.WindowCount(ctx, minuteKey, time.Minute)
	if err != nil {
		g.logger.Error("minute window check failed, allowing request", "caller", caller, "error", err)
		return Allow
	}
	if count > int64(g.cfg.PerMinute) {
		return LimitMinute
	}

	dayKey := fmt.Sprintf("chat:rl:day:%s:%s", caller, time.Now().UTC().Format("2006-01-02"))
	daily, err := g.client.IncrWithTTL(ctx, dayKey, 48*time.Hour)
	if err != nil {
		g.logger.Error("daily counter check failed, allowing request", "caller", caller, "error", err)
		return Allow
	}
	if daily > int64(g.cfg.PerDay) {
		return LimitDay
	}

	qhash := questionHash(message)

	lastKey := "chat:rq:last:" + caller
	seqKey := "chat:rq:seq:" + caller
	res, err := g.client.Eval(ctx, consecutiveScript, []string{lastKey, seqKey}, qhash, int64((24 * time.Hour).Seconds()))
	if err != nil {
		g.logger.Error("consecutive-repeat check failed, allowing request", "caller", caller, "error", err)
		return Allow
	}
	if n, ok := res.(int64); ok && n > int64(g.cfg.RepeatConsecutive) {
		return LimitRepeat
	}

	totalKey := fmt.Sprintf("chat:rq:total:%s:%s", caller, qhash)
	total, err := g.client.IncrWithTTL(ctx, totalKey, 24*time.Hour)
	if err != nil {
		g.logger.Error("total-repeat check failed, allowing request", "caller", caller, "error", err)
		return Allow
	}
	if total > int64(g.cfg.RepeatTotal) {
		return LimitRepeat
	}

	return Allow
}

// questionHash normalizes a question so trivial case and spacing variations
// count as the same repeated ask.
func questionHash(message string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}
