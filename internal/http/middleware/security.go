package middleware

import (
	"net/http"
	"strconv"

	"github.com/qes/quotation-api/internal/config"
)

// SecurityHeaders sets the configured hardening headers. Responses are never
// cached because they carry per-principal quotation data.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	static := http.Header{}
	set := func(key, value string) {
		if value != "" {
			static.Set(key, value)
		}
	}
	if cfg.ContentTypeNosniff {
		set("X-Content-Type-Options", "nosniff")
	}
	set("X-Frame-Options", cfg.FrameOptions)
	set("Content-Security-Policy", cfg.ContentSecurityPolicy)
	set("Referrer-Policy", cfg.ReferrerPolicy)
	if cfg.EnableHSTS {
		set("Strict-Transport-Security", "max-age="+strconv.Itoa(cfg.HSTSMaxAge)+"; includeSubDomains")
	}
	set("Cache-Control", "no-store")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for key, values := range static {
				h[key] = append([]string(nil), values...)
			}
			next.ServeHTTP(w, r)
		})
	}
}
