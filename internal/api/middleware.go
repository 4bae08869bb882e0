package api

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"avroute/internal/metrics"
)

// statusWriter captures the response code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LogMiddleware logs each request and records HTTP metrics.
func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		status := strconv.Itoa(sw.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
		log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, sw.status, dur)
	})
}

// clientLimiter hands out one token bucket per client address.
type clientLimiter struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	seen  map[string]*rate.Limiter
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{rps: rate.Limit(rps), burst: burst, seen: map[string]*rate.Limiter{}}
}

func (c *clientLimiter) get(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.seen[host]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.seen[host] = l
	}
	return l
}

// RateLimitMiddleware rejects clients that exceed the configured rate.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.get(r.RemoteAddr).Allow() {
				writeProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded", "slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
