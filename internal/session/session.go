// Package session keeps franchisee logins on the server.
//
// The browser only ever holds a signed, random session ID. Everything else
// (today just the user ID) lives in a Backend:
//
//	MemoryBackend  single process, lost on restart
//	SQLBackend     the "sessions" table next to the application data
//
// Store implements gorilla/sessions.Store, so handlers use the usual
// Get / Save flow and the session registry.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/xid"
)

// CookieName is the name of the session cookie.
const CookieName = "jobboard.sid"

// DefaultMaxAge is how long a login lasts: 24 hours.
const DefaultMaxAge = 24 * 60 * 60

const userIDKey = "user_id"

// ErrNotFound is returned by a Backend for an unknown or expired session.
var ErrNotFound = errors.New("session: not found")

// Backend stores encoded session values by ID.
type Backend interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, expires time.Time) error
	Delete(ctx context.Context, id string) error
	// Prune removes expired sessions and reports how many went.
	Prune(ctx context.Context) (int64, error)
}

// Config controls cookie signing and attributes.
type Config struct {
	// Secret signs the cookie and the stored values. At least 32 bytes
	// in production.
	Secret []byte
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// MaxAge in seconds. Zero means DefaultMaxAge.
	MaxAge int
}

// Store is a gorilla/sessions.Store backed by a Backend.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	backend Backend
	now     func() time.Time
}

var _ sessions.Store = (*Store)(nil)

// NewStore builds a Store over backend.
func NewStore(backend Backend, cfg Config) (*Store, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session: secret is empty")
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}

	codecs := securecookie.CodecsFromPairs(cfg.Secret)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(maxAge)
		}
	}

	return &Store{
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		backend: backend,
		now:     time.Now,
	}, nil
}

// Get returns the named session from the request registry, loading it
// on first use.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request's cookie, or starts an empty
// one. A missing, forged or expired cookie yields a new session; decode
// errors are returned alongside it the way gorilla's own stores do.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &sess.ID, s.Codecs...); err != nil {
		sess.ID = ""
		return sess, err
	}

	data, err := s.backend.Load(r.Context(), sess.ID)
	if errors.Is(err, ErrNotFound) {
		sess.ID = ""
		return sess, nil
	}
	if err != nil {
		sess.ID = ""
		return sess, fmt.Errorf("session: loading: %w", err)
	}
	if err := securecookie.DecodeMulti(name, string(data), &sess.Values, s.Codecs...); err != nil {
		sess.ID = ""
		return sess, err
	}
	sess.IsNew = false
	return sess, nil
}

// Save persists the session and writes its cookie. A negative MaxAge
// deletes it from the backend and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	ctx := r.Context()

	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.backend.Delete(ctx, sess.ID); err != nil {
				return fmt.Errorf("session: deleting: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = xid.New().String()
	}
	data, err := securecookie.EncodeMulti(sess.Name(), sess.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("session: encoding values: %w", err)
	}
	expires := s.now().Add(time.Duration(sess.Options.MaxAge) * time.Second)
	if err := s.backend.Save(ctx, sess.ID, []byte(data), expires); err != nil {
		return fmt.Errorf("session: saving: %w", err)
	}

	cookie, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("session: encoding id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), cookie, sess.Options))
	return nil
}

// Login starts a fresh session for userID. Any session the request already
// carried is discarded so a pre-login ID is never promoted.
func (s *Store) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := s.Get(r, CookieName)
	if sess.ID != "" {
		if err := s.backend.Delete(r.Context(), sess.ID); err != nil {
			return fmt.Errorf("session: rotating: %w", err)
		}
	}
	sess.ID = ""
	sess.IsNew = true
	sess.Values = map[any]any{userIDKey: userID}
	sess.Options.MaxAge = s.Options.MaxAge
	return sess.Save(r, w)
}

// Logout destroys the request's session, if any.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.Get(r, CookieName)
	sess.Options.MaxAge = -1
	sess.Values = map[any]any{}
	return sess.Save(r, w)
}

// UserID returns the logged-in user, if any.
func (s *Store) UserID(r *http.Request) (int64, bool) {
	sess, err := s.Get(r, CookieName)
	if err != nil || sess.IsNew {
		return 0, false
	}
	id, ok := sess.Values[userIDKey].(int64)
	return id, ok && id > 0
}

// RunCleanup prunes expired sessions every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.backend.Prune(ctx)
			if err != nil {
				logger.Error("pruning sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("pruned sessions", "count", n)
			}
		}
	}
}
