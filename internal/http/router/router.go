package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/qes/quotation-api/internal/auth"
	"github.com/qes/quotation-api/internal/config"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/http/handler"
	"github.com/qes/quotation-api/internal/http/middleware"
	"github.com/qes/quotation-api/internal/observability"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/qes/quotation-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	metrics          *observability.Metrics
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	healthHandler    *handler.HealthHandler
	quotationHandler *handler.QuotationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	quotationHandler *handler.QuotationHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		metrics:          metrics,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		healthHandler:    healthHandler,
		quotationHandler: quotationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(rt.metrics.Middleware)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	if rt.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeoutDuration()))
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Route("/quotations", func(r chi.Router) {
				read := rt.authMiddleware.RequirePermission(domain.ModuleQuotation, domain.ActionRead)
				create := rt.authMiddleware.RequirePermission(domain.ModuleQuotation, domain.ActionCreate)
				update := rt.authMiddleware.RequirePermission(domain.ModuleQuotation, domain.ActionUpdate)
				remove := rt.authMiddleware.RequirePermission(domain.ModuleQuotation, domain.ActionDelete)

				r.With(read).Get("/", rt.quotationHandler.List)
				r.With(create).Post("/", rt.quotationHandler.Create)
				r.With(read).Get("/deleted", rt.quotationHandler.ListDeleted)
				r.With(read).Get("/{id}", rt.quotationHandler.GetByID)
				r.With(update).Put("/{id}", rt.quotationHandler.Update)
				r.With(remove).Delete("/{id}", rt.quotationHandler.Delete)
				r.With(read).Get("/{id}/history", rt.quotationHandler.History)
				r.With(update).Put("/{id}/restore", rt.quotationHandler.Restore)
				r.With(remove, rt.authMiddleware.RequireAdmin).Delete("/{id}/permanent", rt.quotationHandler.DeletePermanently)
			})
		})
	})

	return r
}
