package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/ctxkeys"
	"github.com/templui/thumbnailer/internal/model"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/service"
	"github.com/templui/thumbnailer/internal/testutil"
)

func newAuthService(t *testing.T) (*service.AuthService, func() error) {
	t.Helper()

	conn := testutil.NewDB(t)
	auth := service.NewAuthService(
		repository.NewUserRepository(conn),
		repository.NewTierRepository(conn),
		repository.NewTokenRepository(conn),
		"test-secret-that-is-long-enough-for-hs256",
		time.Hour,
	)
	return auth, conn.Close
}

// serve runs TokenAuth and reports the user the next handler saw.
func serve(auth *service.AuthService, header string) (*httptest.ResponseRecorder, *model.User, bool) {
	var (
		seen   *model.User
		called bool
	)
	h := TokenAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = ctxkeys.User(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/images/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen, called
}

func TestTokenAuth(t *testing.T) {
	auth, _ := newAuthService(t)
	user, token, err := auth.Register("alice", "correct-horse-battery", model.TierPremium)
	require.NoError(t, err)

	rec, seen, called := serve(auth, "Token "+token.Key)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
	assert.Nil(t, seen.PasswordHash)
	require.NotNil(t, seen.Tier)
	assert.Equal(t, model.TierPremium, seen.Tier.Name)
}

func TestTokenAuthContinuesAnonymously(t *testing.T) {
	auth, _ := newAuthService(t)

	for _, header := range []string{"", "Token unknown", "Bearer not-a-jwt", "Basic abc"} {
		rec, seen, called := serve(auth, header)
		assert.Equal(t, http.StatusNoContent, rec.Code, header)
		assert.True(t, called, header)
		assert.Nil(t, seen, header)
	}
}

func TestTokenAuthLookupFailure(t *testing.T) {
	auth, closeDB := newAuthService(t)
	require.NoError(t, closeDB())

	rec, _, called := serve(auth, "Token 0123456789abcdef0123456789abcdef01234567")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/images/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/images/", nil)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "u1"}))
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
