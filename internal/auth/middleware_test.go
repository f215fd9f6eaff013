package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/config"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type userMap map[uuid.UUID]*domain.User

func (m userMap) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func newUser(name string, role domain.Role, active bool, permissions string) *domain.User {
	u := &domain.User{Name: name, Email: name + "@qes.example", Role: role, IsActive: active}
	u.ID = uuid.New()
	if permissions != "" {
		u.Permissions = datatypes.JSON(permissions)
	}
	return u
}

func newTestMiddleware(users userMap) *Middleware {
	cfg := &config.Config{
		Auth: *testAuthConfig(),
		Permissions: config.PermissionsConfig{DefaultUser: map[string]map[string]bool{
			"quotation": {"read": true},
		}},
	}
	return NewMiddleware(cfg, users, zap.NewNop())
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := SignToken(testSecret, "qes-auth", userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMiddleware_Authenticate(t *testing.T) {
	alice := newUser("alice", domain.RoleUser, true, "")
	bob := newUser("bob", domain.RoleUser, true, `{"quotation":{"read":true,"update":true}}`)
	carol := newUser("carol", domain.RoleUser, false, "")
	dave := newUser("dave", domain.RoleUser, true, `{"quotation":{"create":true}}`)
	erin := newUser("erin", domain.RoleUser, true, `{"quotation":{"read":false}}`)
	admin := newUser("admin", domain.RoleAdmin, true, "")
	m := newTestMiddleware(userMap{
		alice.ID: alice, bob.ID: bob, carol.ID: carol,
		dave.ID: dave, erin.ID: erin, admin.ID: admin,
	})

	var seen *Principal
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(header string) int {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(""))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Basic dXNlcjpwYXNz"))
	})

	t.Run("unknown account", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(bearer(t, uuid.New())))
	})

	t.Run("inactive account", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(bearer(t, carol.ID)))
	})

	t.Run("default permissions", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(bearer(t, alice.ID)))
		require.NotNil(t, seen)
		assert.Equal(t, alice.ID, seen.ID)
		assert.True(t, Authorize(seen, domain.ModuleQuotation, domain.ActionRead))
		assert.False(t, Authorize(seen, domain.ModuleQuotation, domain.ActionUpdate))
	})

	t.Run("account permissions", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(bearer(t, bob.ID)))
		assert.True(t, Authorize(seen, domain.ModuleQuotation, domain.ActionUpdate))
	})

	t.Run("account permissions extend the defaults", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(bearer(t, dave.ID)))
		assert.True(t, Authorize(seen, domain.ModuleQuotation, domain.ActionRead), "default read kept")
		assert.True(t, Authorize(seen, domain.ModuleQuotation, domain.ActionCreate))
		assert.False(t, Authorize(seen, domain.ModuleQuotation, domain.ActionDelete))
	})

	t.Run("account permissions can revoke a default", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(bearer(t, erin.ID)))
		assert.False(t, Authorize(seen, domain.ModuleQuotation, domain.ActionRead))
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		token, err := SignToken(testSecret, "qes-auth", admin.ID, time.Hour)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, serve("bearer "+token))
		assert.True(t, seen.IsAdmin())
	})
}

func TestMiddleware_RequirePermission(t *testing.T) {
	m := newTestMiddleware(userMap{})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	guarded := m.RequirePermission(domain.ModuleQuotation, domain.ActionDelete)(ok)

	serve := func(p *Principal) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/quotations/x", nil)
		if p != nil {
			req = req.WithContext(WithPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		return rec.Code
	}

	reader := &Principal{ID: uuid.New(), Role: domain.RoleUser, Permissions: domain.PermissionMatrix{
		domain.ModuleQuotation: {domain.ActionRead: true},
	}}
	deleter := &Principal{ID: uuid.New(), Role: domain.RoleUser, Permissions: domain.PermissionMatrix{
		domain.ModuleQuotation: {domain.ActionDelete: true},
	}}
	admin := &Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	assert.Equal(t, http.StatusForbidden, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(reader))
	assert.Equal(t, http.StatusOK, serve(deleter))
	assert.Equal(t, http.StatusOK, serve(admin))
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	m := newTestMiddleware(userMap{})
	guarded := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, tt := range []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdmin, http.StatusNoContent},
		{domain.RoleUser, http.StatusForbidden},
	} {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{ID: uuid.New(), Role: tt.role}))
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, string(tt.role))
	}
}

func TestPrincipal_CanAccess(t *testing.T) {
	owner := uuid.New()
	assert.True(t, (&Principal{ID: owner, Role: domain.RoleUser}).CanAccess(owner))
	assert.False(t, (&Principal{ID: uuid.New(), Role: domain.RoleUser}).CanAccess(owner))
	assert.True(t, (&Principal{ID: uuid.New(), Role: domain.RoleAdmin}).CanAccess(owner))
	assert.False(t, Authorize(nil, domain.ModuleQuotation, domain.ActionRead))
}
