package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
)

// RoutePattern returns the matched chi pattern, or the raw path before routing.
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

type logCtxKey int

const requestInfoKey logCtxKey = 5

// requestInfo lets inner middleware report back to AccessLog.
type requestInfo struct {
	sessionID string
}

func noteSession(r *http.Request, sid string) {
	if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
		info.sessionID = sid
	}
}

// AccessLog writes one entry per request. Client errors log at info,
// server errors at error.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	log = logger.WithFields(log).Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", RoutePattern(r)),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if info.sessionID != "" {
				fields = append(fields, logger.SessionField(info.sessionID))
			}
			switch {
			case status >= 500:
				log.Error("request", fields...)
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				log.Debug("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}
