package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the optional header clients send to make a POST replayable.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"

	// How long the in-progress lock lives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	maxIdempotencyKey  = 255
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

// bodyRecorder tees everything written to the client into buf.
type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// idempotencyScope identifies the caller: the session user when authenticated,
// else a hash of the Authorization header, else the client IP.
func idempotencyScope(c *gin.Context) string {
	if userID := c.GetString(ContextUserID); userID != "" {
		return "user:" + userID
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		return "auth:" + bodyHash([]byte(auth))[:16]
	}
	return "ip:" + c.ClientIP()
}

func buildKey(method, route, scope, key string) string {
	return "idemp:" + strings.ToLower(method) + ":" + route + ":" + scope + ":" + key
}

// Idempotency replays the stored response when a request is retried with the same
// Idempotency-Key and body. Requests without the header pass straight through.
// A nil client disables the middleware.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if idemKey == "" {
			c.Next()
			return
		}
		if len(idemKey) > maxIdempotencyKey {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Idempotency-Key is too long"))
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read request body"))
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		bhash := bodyHash(body)

		key := buildKey(c.Request.Method, c.FullPath(), idempotencyScope(c), idemKey)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		payload, _ := json.Marshal(idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: time.Now().UTC()})
		ok, err := rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
		if err != nil {
			log.Error("idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Idempotency store unavailable"))
			return
		}
		if !ok {
			replay(ctx, c, rdb, key, bhash, log)
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		// Detached from the request so a disconnecting client still releases the key.
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer saveCancel()

		code := rec.Status()
		if code >= http.StatusInternalServerError {
			if err := rdb.Del(saveCtx, key).Err(); err != nil {
				log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}
		final, _ := json.Marshal(idempEntry{
			Code:        code,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
			BodySHA256:  bhash,
			CreatedAt:   time.Now().UTC(),
		})
		if err := rdb.Set(saveCtx, key, final, ttl).Err(); err != nil {
			log.Warn("failed to store idempotent response", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(ctx context.Context, c *gin.Context, rdb *redis.Client, key, bhash string, log *zap.Logger) {
	var cur idempEntry
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn("failed to load idempotency entry", zap.String("key", key), zap.Error(err))
	}
	if err == nil {
		_ = json.Unmarshal(raw, &cur)
	}

	if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
		c.AbortWithStatusJSON(http.StatusConflict, response.Error(http.StatusConflict, "Idempotency-Key reused with a different body"))
		return
	}
	if !cur.InProgress && cur.Code != 0 {
		contentType := cur.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Header(ReplayedHeader, "true")
		c.Data(cur.Code, contentType, cur.Body)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusConflict, response.Error(http.StatusConflict, "Request is already in progress"))
}
