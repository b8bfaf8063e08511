package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// How long the "in-progress" lock holds before the handler must finish.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for X-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
)

// Idempotency headers protect mutating endpoints against double submission:
// a retried decision, payment or disbursement replays the stored response
// instead of running twice.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderRequestAt = "X-Request-At"
	HeaderActorID   = "X-Actor-ID"
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// readHeaders validates the three idempotency headers. A non-empty msg means
// the request must be rejected with 400.
func readHeaders(req *http.Request) (reqID string, reqAt time.Time, actor, msg string) {
	reqID = strings.TrimSpace(req.Header.Get(HeaderRequestID))
	switch {
	case reqID == "":
		return "", time.Time{}, "", "missing " + HeaderRequestID
	case !validReqID(reqID):
		return "", time.Time{}, "", "invalid " + HeaderRequestID + " format"
	}

	var err error
	reqAt, err = parseRequestAt(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return "", time.Time{}, "", err.Error()
	}
	if d := nowUTC().Sub(reqAt); d > maxClockSkew || d < -maxClockSkew {
		return "", time.Time{}, "", HeaderRequestAt + " too skewed"
	}

	actor = strings.TrimSpace(req.Header.Get(HeaderActorID))
	switch {
	case actor == "":
		return "", time.Time{}, "", "missing " + HeaderActorID
	case !reUUID.MatchString(strings.ToLower(actor)):
		return "", time.Time{}, "", "invalid " + HeaderActorID
	}
	return reqID, reqAt, actor, ""
}

// Idempotency builds the middleware. Key = method + route + actor id +
// request id. X-Request-At must be epoch (seconds or ms) or RFC3339 with an
// explicit timezone.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	st := store{rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !mutating(req.Method) {
				return next(c)
			}

			reqID, reqAt, actor, msg := readHeaders(req)
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}

			// Buffer the body so the handler can still read it, and hash it
			// so a reused request id with a different payload is detectable.
			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), actor, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			locked, err := st.tryLock(ctx, key, idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !locked {
				cur, errLoad := st.load(ctx, key)
				if errLoad != nil {
					log.Warn("idempotency entry load failed", zap.String("key", key), zap.Error(errLoad))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			_ = st.finish(context.Background(), key, idempEntry{
				InProgress:  false,
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}, ttl)
			return nil
		}
	}
}
