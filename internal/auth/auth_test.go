package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-at-least-16-chars!!")

// =========================================================================
// LINK SIGNER TESTS
// =========================================================================

func newTestSigner(t *testing.T) *LinkSigner {
	t.Helper()
	s, err := NewLinkSigner(testSecret, time.Minute)
	require.NoError(t, err)
	return s
}

func TestNewLinkSigner_ShortSecret(t *testing.T) {
	_, err := NewLinkSigner([]byte("short"), time.Minute)
	assert.Error(t, err)
}

func TestLinkSigner_RoundTrip(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.Sign("cq1v2b3n4m5k6j7h8g9f.pdf")
	require.NoError(t, err)

	name, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "cq1v2b3n4m5k6j7h8g9f.pdf", name)
}

func TestLinkSigner_Expired(t *testing.T) {
	s := newTestSigner(t)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, err := s.Sign("a.pdf")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestLinkSigner_WrongSecret(t *testing.T) {
	s := newTestSigner(t)
	other, err := NewLinkSigner([]byte("another-secret-of-16+-chars"), time.Minute)
	require.NoError(t, err)

	token, err := other.Sign("a.pdf")
	require.NoError(t, err)
	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestLinkSigner_RejectsNoneAlgorithm(t *testing.T) {
	s := newTestSigner(t)
	forged := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a.pdf",
		Issuer:    linkIssuer,
		Audience:  jwt.ClaimStrings{linkAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := forged.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestLinkSigner_RejectsEmptyName(t *testing.T) {
	_, err := newTestSigner(t).Sign("")
	assert.Error(t, err)
}

// =========================================================================
// MIDDLEWARE TESTS
// =========================================================================

type fakeSessions struct {
	userID int64
	ok     bool
}

func (f fakeSessions) UserID(*http.Request) (int64, bool) { return f.userID, f.ok }

func TestRequireAuth(t *testing.T) {
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		seen = 0
		w := httptest.NewRecorder()
		RequireAuth(fakeSessions{})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/my/jobs", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication required"}`, w.Body.String())
		assert.Zero(t, seen)
	})

	t.Run("logged in passes user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAuth(fakeSessions{userID: 5, ok: true})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/my/jobs", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, int64(5), seen)
	})
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
