package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), tag("inner"), tag("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoggingSetsRequestId(t *testing.T) {
	var seen string
	h := Logging(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestId(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIdHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIdHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestAuth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwt := config.NewJWTWithKeys(key, &key.PublicKey, time.Hour)
	cookies := &config.Cookies{SameSite: http.SameSiteStrictMode}

	var claims *config.PlayerClaims
	var ok bool
	h := Auth(quietLogger(), cookies, jwt)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok = PlayerClaims(r.Context())
	}))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwt.Sign(config.NewPlayerClaims(7, "alice"))
		require.NoError(t, err)
		signer := httptest.NewRecorder()
		require.NoError(t, cookies.Refresh(signer, token, time.Now().Add(time.Hour)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range signer.Result().Cookies() {
			req.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.True(t, ok)
		assert.Equal(t, int64(7), claims.PlayerId)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "a.b"})
		req.AddCookie(&http.Cookie{Name: "sign", Value: "c"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.False(t, ok)
		assert.Len(t, rec.Result().Cookies(), 2)
	})
}
