package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Chain применяет мидлвары в порядке перечисления: первый — внешний.
func TestChain_Order(t *testing.T) {
	var trace []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		trace = append(trace, "handler")
		w.WriteHeader(http.StatusOK)
	}), mark("outer"), mark("middle"), mark("inner"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "middle", "inner", "handler"}, trace)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStatusWriter(t *testing.T) {
	t.Run("explicit status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sw := newStatusWriter(rec)

		sw.WriteHeader(http.StatusTeapot)
		n, err := sw.Write([]byte("body"))
		require.NoError(t, err)
		require.Equal(t, 4, n)

		require.Equal(t, http.StatusTeapot, sw.status)
		require.Equal(t, 4, sw.count)
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sw := newStatusWriter(rec)

		_, err := sw.Write([]byte("ok"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, sw.status)
	})
}
