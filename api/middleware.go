package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"taskhub/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader    = "X-Request-ID"
	limiterIdleTimeout = time.Hour
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogMiddleware tags each request with an ID, logs it and records metrics
func (a *API) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.Observe(elapsed.Seconds())

		a.logger.Debugw("HTTP request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed)
	})
}

// rateLimitMiddleware applies a token bucket per client IP
func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		a.rateLimitersMu.Lock()
		entry, exists := a.rateLimiters[ip]
		if !exists {
			entry = &rateLimiterEntry{
				limiter:  rate.NewLimiter(rate.Limit(a.config.Server.RateLimit.RequestsPerSecond), a.config.Server.RateLimit.Burst),
				lastSeen: time.Now(),
			}
			a.rateLimiters[ip] = entry
		} else {
			entry.lastSeen = time.Now()
		}
		// Capture limiter reference while holding lock to prevent race with cleanup
		limiter := entry.limiter
		a.rateLimitersMu.Unlock()

		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests", nil, a.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanupRateLimiters periodically removes inactive rate limiters
func (a *API) cleanupRateLimiters() {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.pruneRateLimiters(time.Now())
		case <-a.stopCh:
			return
		}
	}
}

func (a *API) pruneRateLimiters(now time.Time) {
	a.rateLimitersMu.Lock()
	defer a.rateLimitersMu.Unlock()
	for ip, entry := range a.rateLimiters {
		if now.Sub(entry.lastSeen) > limiterIdleTimeout {
			delete(a.rateLimiters, ip)
		}
	}
}

// clientIP returns the peer address of the request
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
