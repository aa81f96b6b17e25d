package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/config"
	"github.com/iliyamo/allclear/internal/metrics"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) overflowed() bool { return cw.limit > 0 && cw.size > cw.limit }

// userPrefix is the key namespace of one user's cached responses.
func userPrefix(cfg config.CacheConfig, uid string) string {
	return cfg.Prefix + ":" + uid + ":"
}

// cacheKeyFrom builds <prefix>:<userId>:<sha1(route, query)>.
func cacheKeyFrom(cfg config.CacheConfig, uid string, c echo.Context) string {
	sum := sha1.Sum([]byte("route:" + c.Path() + ":q:" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s%x", userPrefix(cfg, uid), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// userCache is the Redis-backed per-user response cache.
type userCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	log zerolog.Logger
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache caches successful GET responses per authenticated user.
// Any other method that succeeds drops every cached response of that
// user, so a client never reads its own stale list.  It must run after
// SessionAuth.  Disabled when cfg.Enabled is false or rdb is nil.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	uc := &userCache{cfg: cfg, rdb: rdb, log: log}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := userID(c)
			if uid == "" {
				return next(c)
			}
			if c.Request().Method != http.MethodGet {
				return uc.invalidateAfter(next, c, uid)
			}
			return uc.serve(next, c, uid)
		}
	}
}

// NewCacheInvalidator only performs the invalidation half of
// NewRedisCache.  It guards routes whose responses are not cached but
// whose success changes what the user's cached lists should contain.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	uc := &userCache{cfg: cfg, rdb: rdb, log: log}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := userID(c)
			if uid == "" || c.Request().Method == http.MethodGet {
				return next(c)
			}
			return uc.invalidateAfter(next, c, uid)
		}
	}
}

func (uc *userCache) serve(next echo.HandlerFunc, c echo.Context, uid string) error {
	ctx := c.Request().Context()
	key := cacheKeyFrom(uc.cfg, uid, c)

	if bs, err := uc.rdb.Get(ctx, key).Bytes(); err == nil {
		if status, hdr, body, ok := decodePayload(bs); ok {
			metrics.RecordCacheLookup(true)
			for k, vals := range hdr {
				if strings.EqualFold(k, echo.HeaderContentLength) {
					continue
				}
				for _, v := range vals {
					c.Response().Header().Add(k, v)
				}
			}
			c.Response().Header().Set("X-Cache", "HIT")
			c.Response().WriteHeader(status)
			if len(body) > 0 {
				_, _ = c.Response().Write(body)
			}
			return nil
		}
	}
	metrics.RecordCacheLookup(false)

	cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(uc.cfg.MaxBodyBytes)}
	c.Response().Writer = cw
	c.Response().Header().Set("X-Cache", "MISS")

	if err := next(c); err != nil {
		return err
	}
	if cw.status != http.StatusOK || cw.overflowed() {
		return nil
	}

	hdr := make(http.Header, len(c.Response().Header()))
	for k, vals := range c.Response().Header() {
		if strings.EqualFold(k, "X-Cache") {
			continue
		}
		hdr[k] = append([]string(nil), vals...)
	}
	payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
	if err != nil {
		return nil
	}
	if err := uc.rdb.SetEx(context.Background(), key, payload, uc.cfg.TTL).Err(); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("response cache write failed")
	}
	return nil
}

func (uc *userCache) invalidateAfter(next echo.HandlerFunc, c echo.Context, uid string) error {
	err := next(c)
	if err == nil && c.Response().Status < http.StatusMultipleChoices {
		if derr := uc.dropUser(context.Background(), uid); derr != nil {
			uc.log.Warn().Err(derr).Str("user_id", uid).Msg("response cache invalidation failed")
		}
	}
	return err
}

// dropUser deletes every cached response of uid.
func (uc *userCache) dropUser(ctx context.Context, uid string) error {
	iter := uc.rdb.Scan(ctx, 0, userPrefix(uc.cfg, uid)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return uc.rdb.Del(ctx, keys...).Err()
}
