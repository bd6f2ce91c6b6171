package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Uploaded resumes are not public. A logged-in owner asks for one and gets
// redirected to /uploads/resumes/{name}?token=<jwt>, where the token is an
// HS256 JWT whose subject is the stored file name:
//
//	HEADER.PAYLOAD.SIGNATURE
//	{"alg":"HS256"}.{"sub":"cq1v…pdf","aud":["resume"],"exp":…}.HMAC
//
// The file route checks the token and nothing else, so links can be opened
// in a new tab or a PDF viewer without the session cookie.

const (
	linkIssuer   = "jobboard"
	linkAudience = "resume"

	// DefaultLinkTTL is how long a resume link stays valid.
	DefaultLinkTTL = 5 * time.Minute
)

// ErrLinkExpired is returned by LinkSigner.Verify for a stale link.
var ErrLinkExpired = errors.New("auth: link expired")

// LinkSigner creates and checks signed file links.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner creates a LinkSigner. The secret is shared with the
// session store and must be at least 16 bytes.
func NewLinkSigner(secret []byte, ttl time.Duration) (*LinkSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: link secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &LinkSigner{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Sign returns a token granting access to the named file.
func (s *LinkSigner) Sign(name string) (string, error) {
	if name == "" {
		return "", errors.New("auth: cannot sign an empty file name")
	}
	now := s.now()
	c := jwt.RegisteredClaims{
		Subject:   name,
		Audience:  jwt.ClaimStrings{linkAudience},
		Issuer:    linkIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing link: %w", err)
	}
	return signed, nil
}

// Verify checks the token and returns the file name it grants.
//
// jwt.WithValidMethods pins HS256 so a token claiming "none" or an RSA
// algorithm is refused before the signature is looked at.
func (s *LinkSigner) Verify(token string) (string, error) {
	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(linkIssuer),
		jwt.WithAudience(linkAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrLinkExpired
		}
		return "", fmt.Errorf("auth: invalid link: %w", err)
	}
	if c.Subject == "" {
		return "", errors.New("auth: link has no subject")
	}
	return c.Subject, nil
}
