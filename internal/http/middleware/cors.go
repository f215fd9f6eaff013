package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/qes/quotation-api/internal/config"
	"go.uber.org/zap"
)

type originPolicy string

const (
	originsListed originPolicy = "listed"
	originsAny    originPolicy = "any"
	originsNone   originPolicy = "none"
)

// alwaysExposed are response headers browser clients of the quotation API
// need to read: the created resource and the correlation id.
var alwaysExposed = []string{"Location", RequestIDHeader}

// CORS builds the cross-origin policy. A "*" entry or an empty list in a
// local environment allows any origin; an empty list elsewhere denies all.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   mergeHeaders(cfg.AllowedHeaders, RequestIDHeader),
		ExposedHeaders:   mergeHeaders(cfg.ExposedHeaders, alwaysExposed...),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	policy := resolveOriginPolicy(cfg.AllowedOrigins, environment)
	switch policy {
	case originsListed:
		options.AllowedOrigins = cfg.AllowedOrigins
	case originsAny:
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return origin != "" }
	case originsNone:
		// an empty AllowedOrigins would mean "*" to go-chi/cors
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
	}

	fields := []zap.Field{
		zap.String("policy", string(policy)),
		zap.Strings("origins", cfg.AllowedOrigins),
		zap.String("environment", environment),
	}
	if policy == originsAny && !isLocalEnvironment(environment) {
		logger.Warn("CORS allows any origin outside development", fields...)
	} else {
		logger.Info("CORS configured", fields...)
	}

	return cors.Handler(options)
}

func resolveOriginPolicy(origins []string, environment string) originPolicy {
	for _, o := range origins {
		if o == "*" {
			return originsAny
		}
	}
	if len(origins) > 0 {
		return originsListed
	}
	if isLocalEnvironment(environment) {
		return originsAny
	}
	return originsNone
}

func isLocalEnvironment(environment string) bool {
	return environment == "" || environment == "development" || environment == "local"
}

func mergeHeaders(configured []string, required ...string) []string {
	out := append([]string(nil), configured...)
	for _, h := range required {
		found := false
		for _, c := range configured {
			if http.CanonicalHeaderKey(c) == http.CanonicalHeaderKey(h) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, h)
		}
	}
	return out
}
