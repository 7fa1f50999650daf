package middleware

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

type sessionCtxKey int

const sessionKey sessionCtxKey = 3

const (
	sessionIssuer  = "recruiting-demo"
	sessionKeyInfo = "recruiting-demo session cookie v1"
)

// SessionOptions configure the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Sessions issues and verifies the signed cookie that identifies a
// questionnaire session. The cookie carries only the session id.
type Sessions struct {
	opts  SessionOptions
	key   []byte
	now   func() time.Time
	newID func() string
}

// NewSessions derives the HS256 signing key from secret with HKDF-SHA256.
func NewSessions(secret string, opts SessionOptions) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if opts.CookieName == "" {
		opts.CookieName = "recruiting_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sessionKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &Sessions{
		opts:  opts,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Sign returns a token for sid valid for the configured TTL.
func (s *Sessions) Sign(sid string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies tok and returns the session id and the time it was issued.
func (s *Sessions) Parse(tok string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", time.Time{}, err
	}
	if !t.Valid {
		return "", time.Time{}, errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, fmt.Errorf("session subject: %w", err)
	}
	var issued time.Time
	if claims.IssuedAt != nil {
		issued = claims.IssuedAt.Time
	}
	return claims.Subject, issued, nil
}

// Middleware attaches the session id to the request context. Requests
// without a valid cookie get a new session; cookies past half their TTL are
// re-issued so active sessions do not expire mid-questionnaire.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sid    string
			issued time.Time
		)
		if c, err := r.Cookie(s.opts.CookieName); err == nil {
			if id, iat, err := s.Parse(c.Value); err == nil {
				sid, issued = id, iat
			}
		}
		if sid == "" || s.now().Sub(issued) > s.opts.TTL/2 {
			if sid == "" {
				sid = s.newID()
			}
			if tok, err := s.Sign(sid); err == nil {
				http.SetCookie(w, s.cookie(tok))
			}
		}
		noteSession(r, sid)
		ctx := context.WithValue(r.Context(), sessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) cookie(tok string) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(s.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionIDFromContext returns the id stored by Sessions.Middleware.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionKey).(string)
	return sid, ok && sid != ""
}

// WithSessionID stores sid in ctx, for handlers exercised without the middleware.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionKey, sid)
}
