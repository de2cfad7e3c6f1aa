package usage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

// Counter is a Redis backed entitlement.UsageCounter.
//
// Each user and unit pair owns one sorted set. Members are scored by their
// timestamp in milliseconds, so a day window is a ZCOUNT over a score range.
// Entries older than the retention window are trimmed on write.
type Counter struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ entitlement.LimitedUsageCounter = (*Counter)(nil)

// recordWithinScript counts the window and adds the member only below the
// limit, in one server side step.
//
//	KEYS[1] set key
//	ARGV    window min, window max, limit, score, member, trim cutoff, ttl ms
var recordWithinScript = redis.NewScript(`
local n = redis.call('ZCOUNT', KEYS[1], ARGV[1], ARGV[2])
if n >= tonumber(ARGV[3]) then
  return {n, 0}
end
redis.call('ZADD', KEYS[1], ARGV[4], ARGV[5])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[6])
redis.call('PEXPIRE', KEYS[1], ARGV[7])
return {n + 1, 1}
`)

// New creates a Counter. It panics if client is nil.
func New(client redis.UniversalClient, cfg Config) *Counter {
	if client == nil {
		panic("usage: redis client cannot be nil")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "focusflow:usage"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 48 * time.Hour
	}
	return &Counter{client: client, prefix: cfg.KeyPrefix, retention: cfg.Retention}
}

func (c *Counter) key(userID uuid.UUID, unit entitlement.UnitType) string {
	return c.prefix + ":" + string(unit) + ":" + userID.String()
}

// CountUnitsForDay counts units recorded in [start, end).
func (c *Counter) CountUnitsForDay(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, start, end time.Time) (int64, error) {
	minScore := strconv.FormatInt(start.UnixMilli(), 10)
	maxScore := "(" + strconv.FormatInt(end.UnixMilli(), 10)

	n, err := c.client.ZCount(ctx, c.key(userID, unit), minScore, maxScore).Result()
	if err != nil {
		return 0, storeError("count units", err)
	}
	return n, nil
}

// RecordUnit adds one unit at the given time and trims entries past retention.
func (c *Counter) RecordUnit(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, at time.Time) error {
	key := c.key(userID, unit)
	cutoff := strconv.FormatInt(at.Add(-c.retention).UnixMilli(), 10)

	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{
			Score:  float64(at.UnixMilli()),
			Member: member(at),
		})
		p.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
		p.Expire(ctx, key, c.retention)
		return nil
	})
	if err != nil {
		return storeError("record unit", err)
	}
	return nil
}

// RecordUnitWithin adds one unit at the given time unless [start, end) already
// holds limit units.
func (c *Counter) RecordUnitWithin(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, at, start, end time.Time, limit int64) (int64, bool, error) {
	res, err := recordWithinScript.Run(ctx, c.client, []string{c.key(userID, unit)},
		start.UnixMilli(),
		"("+strconv.FormatInt(end.UnixMilli(), 10),
		limit,
		at.UnixMilli(),
		member(at),
		"("+strconv.FormatInt(at.Add(-c.retention).UnixMilli(), 10),
		c.retention.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, false, storeError("record unit within limit", err)
	}
	if len(res) != 2 {
		return 0, false, storeError("record unit within limit", errors.New("unexpected script reply"))
	}
	return res[0], res[1] == 1, nil
}

// member is unique per call so units at the same instant are all kept.
func member(at time.Time) string {
	return strconv.FormatInt(at.UnixNano(), 36) + ":" + uuid.NewString()
}

func storeError(op string, err error) error {
	se := &entitlement.StoreError{Code: "redis", Message: op + ": " + err.Error(), Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		se.Code = "timeout"
	case errors.Is(err, context.Canceled):
		se.Code = "canceled"
	}
	return se
}
