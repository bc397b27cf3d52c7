// Package session gives every visitor an opaque token, carried in a cookie,
// that keys a small bag of JSON values kept in Redis or in memory.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the per-request view of one visitor's values. It is not safe
// for concurrent use; two requests on the same token each get their own copy
// and the last Save wins.
type Session struct {
	token  string
	values Values
	isNew  bool
}

func (s *Session) Token() string { return s.token }

// IsNew reports whether the session was started by this request.
func (s *Session) IsNew() bool { return s.isNew }

// Get decodes the value stored under key into dst. It reports false when
// the key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("session: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key. Nothing is persisted until Manager.Save.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", key, err)
	}
	s.values[key] = raw
	return nil
}

func (s *Session) Delete(key string) {
	delete(s.values, key)
}

type ctxKey struct{}

// FromContext returns the session attached by Manager.Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewContext attaches s to ctx.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Options configure the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds sessions to requests.
type Manager struct {
	store  Store
	opts   Options
	logger *zap.Logger
}

func NewManager(store Store, opts Options, logger *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "storefront_sid"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, logger: logger}
}

// Load returns the session for token, or a new one under a fresh token when
// token is empty or unknown.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token != "" {
		values, ok, err := m.store.Load(ctx, token)
		if err != nil {
			return nil, err
		}
		if ok {
			if values == nil {
				values = Values{}
			}
			return &Session{token: token, values: values}, nil
		}
	}
	return &Session{token: uuid.NewString(), values: Values{}, isNew: true}, nil
}

// Save persists s and extends its lifetime.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s.token, s.values, m.opts.TTL)
}

// Destroy removes s from the store. The cookie is left to expire.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	return m.store.Delete(ctx, s.token)
}

// Middleware loads the caller's session, refreshes the cookie and stores the
// session in the request context. Handlers that change it must call Save.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(m.opts.CookieName); err == nil {
			token = c.Value
		}

		s, err := m.Load(r.Context(), token)
		if err != nil {
			m.logger.Error("failed to load session", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"An internal server error occurred","reason":"internal_error"}`))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     m.opts.CookieName,
			Value:    s.token,
			Path:     "/",
			MaxAge:   int(m.opts.TTL / time.Second),
			HttpOnly: true,
			Secure:   m.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}
