package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/qes/quotation-api/internal/auth"
	"github.com/qes/quotation-api/internal/config"
	"github.com/qes/quotation-api/internal/domain"
	"go.uber.org/zap"
)

const rateWindow = time.Minute

// RateLimiter applies two fixed-window budgets: one per client IP in front of
// authentication and one per principal behind it. Probe and docs paths can be
// exempted with exact paths or "/prefix/*" patterns.
type RateLimiter struct {
	enabled  bool
	logger   *zap.Logger
	byIP     func(http.Handler) http.Handler
	byUser   func(http.Handler) http.Handler
	exact    map[string]struct{}
	prefixes []string
}

func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled: cfg.Enabled,
		logger:  logger,
		exact:   make(map[string]struct{}),
	}
	for _, p := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			rl.prefixes = append(rl.prefixes, prefix+"/")
			continue
		}
		rl.exact[p] = struct{}{}
	}

	rl.byIP = httprate.Limit(cfg.RequestsPerMinute, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rl.reject),
	)
	rl.byUser = httprate.Limit(cfg.RequestsPerMinuteAuth, rateWindow,
		httprate.WithKeyFuncs(keyByPrincipal),
		httprate.WithLimitHandler(rl.reject),
	)

	if cfg.Enabled {
		logger.Info("Rate limiter initialized",
			zap.Int("requests_per_minute", cfg.RequestsPerMinute),
			zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
			zap.Strings("whitelist_paths", cfg.WhitelistPaths),
		)
	}
	return rl
}

// LimitByIP is the budget for every request, mounted before authentication
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	limited := rl.byIP(next)
	return rl.exempting(next, limited)
}

// Limit is the per-principal budget, mounted after authentication. Requests
// without a principal fall back to the IP budget.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	byUser := rl.byUser(next)
	byIP := rl.byIP(next)
	return rl.exempting(next, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); ok {
			byUser.ServeHTTP(w, r)
			return
		}
		byIP.ServeHTTP(w, r)
	}))
}

func (rl *RateLimiter) exempting(next, limited http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) isExempt(path string) bool {
	if _, ok := rl.exact[path]; ok {
		return true
	}
	for _, prefix := range rl.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func keyByPrincipal(r *http.Request) (string, error) {
	if p, ok := auth.FromContext(r.Context()); ok {
		return "user:" + p.ID.String(), nil
	}
	ip, err := httprate.KeyByRealIP(r)
	return "ip:" + ip, err
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("request_id", r.Header.Get(RequestIDHeader)),
	}
	if p, ok := auth.FromContext(r.Context()); ok {
		fields = append(fields, zap.String("user_id", p.ID.String()))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   "rate_limited",
		Title:  http.StatusText(http.StatusTooManyRequests),
		Status: http.StatusTooManyRequests,
		Detail: "Too many requests, retry after the current one-minute window",
	})
}
