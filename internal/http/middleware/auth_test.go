package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
)

// fakeVerifier — подмена TokenVerifier: единственный валидный токен.
type fakeVerifier struct {
	token    string
	identity *models.Identity
}

func (v *fakeVerifier) VerifyToken(_ context.Context, accessToken string) (*models.Identity, error) {
	if accessToken == v.token {
		return v.identity, nil
	}

	return nil, service.ErrInvalidToken
}

func newAuthHandler(v TokenVerifier) http.Handler {
	return Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), AuthBearer(v))
}

func TestAuthBearer_OK(t *testing.T) {
	identity := &models.Identity{UserID: uuid.New(), Email: "a@b.c", Role: models.RoleUser}
	v := &fakeVerifier{token: "good-token", identity: identity}

	var got *models.Identity
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}), AuthBearer(v))

	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	require.Equal(t, identity.UserID, got.UserID)
}

// Все дефекты Authorization дают одинаковый 401.
func TestAuthBearer_Rejections(t *testing.T) {
	v := &fakeVerifier{token: "good-token", identity: &models.Identity{}}
	h := newAuthHandler(v)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"bare bearer", "Bearer "},
		{"no prefix", "good-token"},
		{"bad token", "Bearer bad-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Contains(t, w.Body.String(), `"code":"unauthenticated"`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withIdentity := func(role models.Role) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		identity := &models.Identity{UserID: uuid.New(), Role: role}
		return r.WithContext(context.WithValue(r.Context(), ctxIdentity, identity))
	}

	t.Run("matching role", func(t *testing.T) {
		h := Chain(okHandler, RequireRole(models.RoleAdmin))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, withIdentity(models.RoleAdmin))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		h := Chain(okHandler, RequireRole(models.RoleAdmin))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, withIdentity(models.RoleUser))
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		h := Chain(okHandler, RequireRole(models.RoleAdmin))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBearerToken(t *testing.T) {
	get := func(v string) string {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if v != "" {
			r.Header.Set("Authorization", v)
		}
		return bearerToken(r)
	}

	require.Equal(t, "abc", get("Bearer abc"))
	require.Equal(t, "", get(""))
	require.Equal(t, "", get("Bearer"))
	require.Equal(t, "", get("Bearer "))
	require.Equal(t, "", get("bearer abc")) // схема чувствительна к регистру
	require.Equal(t, "", get("Basic abc"))
}
