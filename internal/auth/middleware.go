package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/config"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLookup loads the account a token subject refers to
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Middleware resolves bearer tokens into principals
type Middleware struct {
	jwtValidator       *JWTValidator
	users              UserLookup
	defaultPermissions domain.PermissionMatrix
	logger             *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, users UserLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator:       NewJWTValidator(&cfg.Auth),
		users:              users,
		defaultPermissions: cfg.Permissions.DefaultUserPermissions(),
		logger:             logger,
	}
}

// Authenticate requires a valid bearer token for an active account
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userID, err := m.jwtValidator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		principal, err := m.resolvePrincipal(r.Context(), userID)
		if err != nil {
			m.logger.Warn("principal resolution failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: unknown or inactive account", http.StatusUnauthorized)
			return
		}

		logger.WithUser(m.logger, principal.ID.String(), principal.Name).Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.String("role", string(principal.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

var errInactiveAccount = errors.New("account is inactive")

func (m *Middleware) resolvePrincipal(ctx context.Context, userID uuid.UUID) (*Principal, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errInactiveAccount
	}

	permissions, err := domain.DecodePermissionMatrix(user.Permissions)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		permissions = m.defaultPermissions.Merge(permissions)
	}

	return &Principal{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: permissions,
	}, nil
}

// RequirePermission rejects principals whose capability table lacks module/action
func (m *Middleware) RequirePermission(module domain.Module, action domain.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no principal", http.StatusForbidden)
				return
			}
			if !Authorize(principal, module, action) {
				m.logger.Info("permission denied",
					zap.String("user_id", principal.ID.String()),
					zap.String("module", string(module)),
					zap.String("action", string(action)),
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects non-admin principals
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := FromContext(r.Context())
		if !ok || !principal.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
