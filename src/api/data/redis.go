package data

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// EvidenceCache keeps search snippets keyed by a hash of the claim text.
// Evidence changes slowly; a day of caching saves repeat search quota when
// the same claim shows up across runs. Cache trouble degrades to a live
// search, never to a failed request.
type EvidenceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEvidenceCache(rdb *redis.Client) *EvidenceCache {
	return &EvidenceCache{rdb: rdb, ttl: 24 * time.Hour}
}

func evidenceKey(claim string) string {
	return "evidence:" + strconv.FormatUint(xxhash.ChecksumString64(claim), 16)
}

func (c *EvidenceCache) Get(ctx context.Context, claim string) (string, bool) {
	v, err := c.rdb.Get(ctx, evidenceKey(claim)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *EvidenceCache) Set(ctx context.Context, claim, snippets string) {
	if err := c.rdb.Set(ctx, evidenceKey(claim), snippets, c.ttl).Err(); err != nil {
		log.Printf("evidence cache set: %v", err)
	}
}
