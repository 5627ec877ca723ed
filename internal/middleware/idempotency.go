package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	processingMarker = "PROCESSING"
	lockTTL          = 10 * time.Second
	resultTTL        = 24 * time.Hour
)

// IdempotencyClient is the subset of *redis.Client the middleware needs
type IdempotencyClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the authenticated user. Only successful responses are
// kept; a failed attempt releases the key so the client can retry.
func Idempotency(client IdempotencyClient, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			owner := "anonymous"
			if user, ok := UserFromContext(r.Context()); ok {
				owner = user.ID
			}
			idemKey := fmt.Sprintf("%sidempotency:%s:%s", prefix, owner, key)
			ctx := r.Context()

			val, err := client.Get(ctx, idemKey).Result()
			switch {
			case err == nil:
				replay(w, val)
				return
			case !errors.Is(err, redis.Nil):
				slog.Warn("idempotency: redis unavailable, passing through", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := client.SetNX(ctx, idemKey, processingMarker, lockTTL).Result()
			if err != nil {
				slog.Warn("idempotency: redis unavailable, passing through", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "concurrent request"})
				return
			}

			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if cw.status < 200 || cw.status >= 300 {
				client.Del(context.WithoutCancel(ctx), idemKey)
				return
			}

			stored, err := json.Marshal(storedResponse{Status: cw.status, Body: json.RawMessage(cw.body.Bytes())})
			if err != nil {
				client.Del(context.WithoutCancel(ctx), idemKey)
				return
			}
			if err := client.Set(context.WithoutCancel(ctx), idemKey, stored, resultTTL).Err(); err != nil {
				slog.Warn("idempotency: failed to store response", "key", idemKey, "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, val string) {
	if val == processingMarker {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "concurrent request"})
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "request already processed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Hit", "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}
