package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/repository/sqlstore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newMemoryStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	store, err := NewStore(backend, Config{Secret: testSecret})
	require.NoError(t, err)
	return store, backend
}

// login runs Store.Login and returns the cookie it set.
func login(t *testing.T, store *Store, userID int64) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	require.NoError(t, store.Login(w, r, userID))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestNewStore_RequiresSecret(t *testing.T) {
	_, err := NewStore(NewMemoryBackend(), Config{})
	assert.Error(t, err)
}

func TestLoginThenUserID(t *testing.T) {
	store, backend := newMemoryStore(t)
	cookie := login(t, store, 42)

	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, DefaultMaxAge, cookie.MaxAge)
	assert.Equal(t, 1, backend.Len())

	id, ok := store.UserID(requestWith(cookie))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestCookieCarriesOnlyAnID(t *testing.T) {
	store, _ := newMemoryStore(t)
	cookie := login(t, store, 42)

	// The value is a signed xid, not the encoded session values.
	assert.Less(t, len(cookie.Value), 200)
}

func TestNoCookieIsAnonymous(t *testing.T) {
	store, _ := newMemoryStore(t)
	_, ok := store.UserID(requestWith(nil))
	assert.False(t, ok)
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	store, _ := newMemoryStore(t)
	cookie := login(t, store, 42)
	cookie.Value = strings.ToUpper(cookie.Value)

	_, ok := store.UserID(requestWith(cookie))
	assert.False(t, ok)
}

func TestCookieFromAnotherSecretIsAnonymous(t *testing.T) {
	store, backend := newMemoryStore(t)
	other, err := NewStore(backend, Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	require.NoError(t, err)

	cookie := login(t, other, 42)
	_, ok := store.UserID(requestWith(cookie))
	assert.False(t, ok)
}

func TestLogoutDestroysSession(t *testing.T) {
	store, backend := newMemoryStore(t)
	cookie := login(t, store, 7)

	w := httptest.NewRecorder()
	require.NoError(t, store.Logout(w, requestWith(cookie)))

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
	assert.Equal(t, 0, backend.Len())

	_, ok := store.UserID(requestWith(cookie))
	assert.False(t, ok, "old cookie must not work after logout")
}

func TestLoginRotatesSessionID(t *testing.T) {
	store, backend := newMemoryStore(t)
	first := login(t, store, 1)

	w := httptest.NewRecorder()
	require.NoError(t, store.Login(w, requestWith(first), 2))
	second := w.Result().Cookies()[0]

	assert.NotEqual(t, first.Value, second.Value)
	assert.Equal(t, 1, backend.Len())
	_, ok := store.UserID(requestWith(first))
	assert.False(t, ok)
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Save(ctx, "a", []byte("x"), now.Add(time.Hour)))
	require.NoError(t, b.Save(ctx, "b", []byte("y"), now.Add(2*time.Hour)))

	now = now.Add(90 * time.Minute)
	_, err := b.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := b.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), data)

	now = now.Add(time.Hour)
	n, err := b.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, b.Len())
}

func TestSQLBackend(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backend, err := NewSQLBackend(ctx, db)
	require.NoError(t, err)

	t.Run("save load overwrite delete", func(t *testing.T) {
		exp := time.Now().Add(time.Hour)
		require.NoError(t, backend.Save(ctx, "sid1", []byte("one"), exp))
		require.NoError(t, backend.Save(ctx, "sid1", []byte("two"), exp))

		data, err := backend.Load(ctx, "sid1")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), data)

		require.NoError(t, backend.Delete(ctx, "sid1"))
		_, err = backend.Load(ctx, "sid1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired rows are not returned", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, "old", []byte("x"), time.Now().Add(-time.Minute)))
		_, err := backend.Load(ctx, "old")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store round trip", func(t *testing.T) {
		store, err := NewStore(backend, Config{Secret: testSecret, Secure: true})
		require.NoError(t, err)

		cookie := login(t, store, 99)
		assert.True(t, cookie.Secure)

		id, ok := store.UserID(requestWith(cookie))
		assert.True(t, ok)
		assert.Equal(t, int64(99), id)
	})
}

func TestSQLBackend_ExpiredDeleteFailureIsReported(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	b := &SQLBackend{conn: conn, dialect: sqlstore.Postgres, now: func() time.Time { return now }}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT sess, expire FROM sessions WHERE sid = $1`)).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"sess", "expire"}).AddRow("x", now.Add(-time.Minute)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE sid = $1`)).
		WithArgs("stale").
		WillReturnError(errors.New("connection reset"))

	_, err = b.Load(context.Background(), "stale")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())

	// A request carrying that session is simply anonymous.
	store, err := NewStore(b, Config{Secret: testSecret})
	require.NoError(t, err)
	encoded, err := securecookie.EncodeMulti(CookieName, "stale", store.Codecs...)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT sess, expire FROM sessions WHERE sid = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"sess", "expire"}).AddRow("x", now.Add(-time.Minute)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE sid = $1`)).
		WillReturnError(errors.New("connection reset"))

	_, ok := store.UserID(requestWith(&http.Cookie{Name: CookieName, Value: encoded}))
	assert.False(t, ok)
}
