package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// SeatMapCache caches seat map responses in Redis.  Entries are keyed by
// a per-screen version counter, so Invalidate drops every cached map of a
// screen with one INCR.  A nil *SeatMapCache, a disabled config or a nil
// client make every method a no-op.
type SeatMapCache struct {
	cfg   config.CacheConfig
	rdb   *redis.Client
	param string
	log   *zap.Logger
}

// NewSeatMapCache returns a cache for routes whose screen id is the path
// parameter param.
func NewSeatMapCache(cfg config.CacheConfig, rdb *redis.Client, param string, log *zap.Logger) *SeatMapCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &SeatMapCache{cfg: cfg, rdb: rdb, param: param, log: log}
}

func (m *SeatMapCache) versionKey(screenID string) string {
	return fmt.Sprintf("%s:screen:%s:ver", m.cfg.Prefix, screenID)
}

// Invalidate bumps the version of screenID so cached maps are no longer read.
func (m *SeatMapCache) Invalidate(ctx context.Context, screenID uint64) {
	if m == nil {
		return
	}
	key := m.versionKey(strconv.FormatUint(screenID, 10))
	if err := m.rdb.Incr(ctx, key).Err(); err != nil {
		m.log.Warn("seat map cache invalidation failed", zap.Uint64("screen_id", screenID), zap.Error(err))
	}
}

func (m *SeatMapCache) entryKey(ctx context.Context, c echo.Context) (string, error) {
	screen := c.Param(m.param)
	ver, err := m.rdb.Get(ctx, m.versionKey(screen)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	sum := sha1.Sum([]byte(c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:screen:%s:v%d:%x", m.cfg.Prefix, screen, ver, sum[:8]), nil
}

// Middleware serves cached GET responses and stores fresh 200 responses.
func (m *SeatMapCache) Middleware() echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(m.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key, err := m.entryKey(ctx, c)
			if err != nil {
				m.log.Warn("seat map cache unavailable", zap.Error(err))
				return next(c)
			}

			if bs, err := m.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if k == echo.HeaderContentLength {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				_ = m.rdb.SetEx(context.WithoutCancel(ctx), key, payload, m.cfg.TTL).Err()
			}
			return nil
		}
	}
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
	copy(out[8:], hdrJSON)
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
