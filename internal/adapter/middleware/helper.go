package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idemp:coop"

func buildKey(method, path, actorID, requestID string) string {
	return strings.Join([]string{keyPrefix, strings.ToLower(method), path, actorID, requestID}, ":")
}

func bodyHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func nowUTC() time.Time { return time.Now().UTC() }

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validReqID accepts a uuid (any case) or a 32-char hex token.
func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt reads the request timestamp in any of the accepted shapes:
// epoch seconds, epoch milliseconds, or RFC3339/RFC3339Nano carrying an
// explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return fromEpoch(n), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// Values above 1e12 cannot be plausible second counts, treat them as ms.
func fromEpoch(n int64) time.Time {
	if n > 1_000_000_000_000 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// store wraps the redis operations the middleware needs.
type store struct {
	rdb *redis.Client
}

// tryLock writes a provisional in-progress entry; false means the key exists.
func (s store) tryLock(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, _ := json.Marshal(e)
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s store) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	_ = json.Unmarshal(raw, &e)
	return e, nil
}

// finish replaces the provisional entry with the recorded response.
func (s store) finish(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(e)
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}
