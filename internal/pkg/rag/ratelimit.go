package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// leakyBucketScript runs atomically inside Redis.
// KEYS[1] = bucket key
// ARGV[1] = max tokens (burst)
// ARGV[2] = refill rate (tokens per second)
// ARGV[3] = current timestamp (float seconds)
// Returns 1 if the request is allowed, 0 if rejected.
const leakyBucketScript = `
local key         = KEYS[1]
local max_tokens  = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now         = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens      = tonumber(bucket[1])
local last_refill = tonumber(bucket[2])

if tokens == nil then
    tokens = max_tokens
    last_refill = now
end

local elapsed = math.max(0, now - last_refill)
tokens = math.min(max_tokens, tokens + elapsed * refill_rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('EXPIRE', key, 120)
return allowed
`

// Limiter is a Redis-backed leaky-bucket rate limiter shared by all engine
// calls that reach the retrieval backend. Each bucket holds up to burst
// tokens and refills at rpm/60 tokens per second. When Redis is unreachable
// the limiter fails open rather than blocking users.
type Limiter struct {
	client *redis.Client
	rpm    int
	burst  int
	log    *logrus.Logger
	now    func() time.Time
}

func NewLimiter(client *redis.Client, rpm, burst int, log *logrus.Logger) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		client: client,
		rpm:    rpm,
		burst:  burst,
		log:    log,
		now:    time.Now,
	}
}

// UserBucket derives the bucket key for an authenticated student.
func UserBucket(userID string) string {
	return "rl:rag:u:" + userID
}

// IPBucket derives the bucket key for an anonymous caller.
func IPBucket(ip string) string {
	return "rl:rag:ip:" + ip
}

// Allow reports whether one request on the given bucket may proceed.
func (l *Limiter) Allow(ctx context.Context, bucketKey string) bool {
	if l == nil || l.rpm <= 0 {
		return true
	}
	if l.client == nil {
		return true
	}

	refillRate := float64(l.rpm) / 60.0
	now := float64(l.now().UnixNano()) / float64(time.Second)

	res, err := l.client.Eval(ctx, leakyBucketScript, []string{bucketKey},
		l.burst, fmt.Sprintf("%f", refillRate), fmt.Sprintf("%f", now)).Int()
	if err != nil {
		l.log.Warnf("rate limiter redis error (allowing request): %v", err)
		return true
	}
	if res != 1 {
		l.log.Infof("rate limited: %s", bucketKey)
		return false
	}
	return true
}
