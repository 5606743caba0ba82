package api

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type metrics struct {
	start      time.Time
	total      atomic.Uint64
	inProgress atomic.Int64
	failed     atomic.Uint64
}

func newMetrics() *metrics {
	return &metrics{start: time.Now()}
}

func (m *metrics) snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return map[string]any{
		"requests_total":       m.total.Load(),
		"requests_in_progress": m.inProgress.Load(),
		"requests_failed":      m.failed.Load(),
		"uptime_seconds":       time.Since(m.start).Seconds(),
		"goroutines":           runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"num_gc":      mem.NumGC,
		},
	}
}

// requestLogger logs each request once it completes and feeds the counters.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.metrics.total.Add(1)
		s.metrics.inProgress.Add(1)
		defer func() {
			s.metrics.inProgress.Add(-1)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				s.metrics.failed.Add(1)
			}
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
