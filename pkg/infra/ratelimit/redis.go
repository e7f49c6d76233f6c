package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const redisKeyPattern = "ratelimit:moderator:%s"

// slidingWindowSource prunes, counts and records in one step so concurrent
// requests for a key cannot pass the quota check together. Scores are unix
// milliseconds and an entry exactly one window old is already outside it.
//
// KEYS[1] window key
// ARGV: window start, now, limit, member, ttl in ms
// Reply: {allowed, count, oldest score}
const slidingWindowSource = `
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[5])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local score = ARGV[2]
if oldest[2] then
	score = oldest[2]
end
return {allowed, count, score}
`

var slidingWindowScript = redis.NewScript(slidingWindowSource)

// RedisLimiter shares the sliding window between replicas through a sorted set per client.
type RedisLimiter struct {
	redis        *redis.Client
	limit        int
	window       time.Duration
	logger       *logrus.Logger
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
}

type RedisLimiterOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

func NewRedisLimiter(
	redisClient *redis.Client,
	limit int,
	window time.Duration,
	logger *logrus.Logger,
	opts ...RedisLimiterOpts,
) *RedisLimiter {
	l := &RedisLimiter{
		redis:        redisClient,
		limit:        limit,
		window:       window,
		logger:       logger,
		timeProvider: time.Now,
		uuidProvider: uuid.New,
	}
	for _, o := range opts {
		if o.TimeProvider != nil {
			l.timeProvider = o.TimeProvider
		}
		if o.UuidProvider != nil {
			l.uuidProvider = o.UuidProvider
		}
	}
	return l
}

// Allow fails open: a redis error admits the request and is returned to the caller.
func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (Decision, error) {
	key := fmt.Sprintf(redisKeyPattern, clientID)
	now := l.timeProvider()
	nowMs := now.UnixMilli()
	decision := Decision{Limit: l.limit, Reset: now.Add(l.window)}

	res, err := slidingWindowScript.Run(ctx, l.redis, []string{key},
		strconv.FormatInt(nowMs-l.window.Milliseconds(), 10),
		strconv.FormatInt(nowMs, 10),
		strconv.Itoa(l.limit),
		fmt.Sprintf("%d:%s", nowMs, l.uuidProvider().String()),
		strconv.FormatInt(l.window.Milliseconds(), 10),
	).Slice()
	if err != nil {
		l.logger.WithError(err).Debug("rate limit script failed, admitting request")
		decision.Allowed = true
		decision.Remaining = l.limit
		return decision, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	allowed, count, oldestMs, err := parseWindowResult(res)
	if err != nil {
		decision.Allowed = true
		decision.Remaining = l.limit
		return decision, err
	}

	decision.Reset = time.UnixMilli(oldestMs).Add(l.window)
	if !allowed {
		decision.RetryAfter = decision.Reset.Sub(now)
		return decision, nil
	}
	decision.Allowed = true
	decision.Remaining = max(l.limit-int(count), 0)
	return decision, nil
}

func parseWindowResult(res []interface{}) (bool, int64, int64, error) {
	if len(res) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}
	allowed, ok := res[0].(int64)
	if !ok {
		return false, 0, 0, fmt.Errorf("unexpected rate limit verdict: %v", res[0])
	}
	count, ok := res[1].(int64)
	if !ok {
		return false, 0, 0, fmt.Errorf("unexpected rate limit count: %v", res[1])
	}
	var oldest int64
	switch v := res[2].(type) {
	case int64:
		oldest = v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, 0, 0, fmt.Errorf("unexpected rate limit score %q: %w", v, err)
		}
		oldest = int64(parsed)
	default:
		return false, 0, 0, fmt.Errorf("unexpected rate limit score: %v", res[2])
	}
	return allowed == 1, count, oldest, nil
}
