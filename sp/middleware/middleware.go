package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bertrandmartel/yummy/sp/application"
	"github.com/bertrandmartel/yummy/sp/codec"
	"github.com/bertrandmartel/yummy/sp/config"
	"github.com/bertrandmartel/yummy/sp/kdf"
	"github.com/bertrandmartel/yummy/sp/session"
	"github.com/rs/zerolog"
)

// ContextKey is the echo/gin context key holding the *session.Handle.
const ContextKey = "session"

// weakSecretScore is the zxcvbn score under which a warning is logged.
const weakSecretScore = 2

var ErrInvalidCookieName = errors.New("invalid session cookie name")

type Option func(*Middleware)

// WithDeriveFunc replaces the configured key derivation. The function result
// is used as the key as is.
func WithDeriveFunc(fn kdf.DeriveFunc) Option {
	return func(m *Middleware) {
		m.derive = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Middleware) {
		m.logger = l
	}
}

// Middleware holds the derived key and cookie defaults. It is immutable after
// New and shared by all requests.
type Middleware struct {
	codec  *codec.Codec
	cookie session.CookieOptions
	logger zerolog.Logger
	derive kdf.DeriveFunc
}

// New validates cfg and derives the key. This is the only place the key
// derivation runs.
func New(cfg *config.Config, opts ...Option) (*Middleware, error) {
	if cfg == nil {
		return nil, kdf.ErrMissingSecret
	}
	c := *cfg
	if c.Key == "" {
		c.Key = codec.DefaultCookieName
	}
	if c.Secret == "" {
		return nil, kdf.ErrMissingSecret
	}
	if err := (&http.Cookie{Name: c.Key, Value: "x"}).Valid(); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCookieName, c.Key, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	m := &Middleware{
		cookie: c.Cookie.WithDefaults(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	derive := m.derive
	if derive == nil {
		derive = c.DeriveFunc()
	}
	key, err := kdf.Derive(c.Secret, derive)
	if err != nil {
		return nil, err
	}
	if m.derive == nil && kdf.Strength(c.Secret) < weakSecretScore {
		m.logger.Warn().Str("cookie", c.Key).Msg("session secret is weak, use a longer passphrase")
	}
	m.codec, err = codec.New(c.Key, key, c.IV)
	if err != nil {
		return nil, err
	}
	m.codec.SetLogger(m.logger)
	return m, nil
}

func (m *Middleware) Codec() *codec.Codec {
	return m.codec
}

// DefaultCookie returns the options given to sessions that carry none.
func (m *Middleware) DefaultCookie() session.CookieOptions {
	return m.cookie
}

// Decode reads a session out of a raw Cookie header, outside of any request.
func (m *Middleware) Decode(header string) *session.Session {
	return m.codec.DecodeHeader(header)
}

func (m *Middleware) DecodeCookies(cookies map[string]string) *session.Session {
	return m.codec.Decode(cookies)
}

// start decodes the inbound cookie and takes the change-detection baseline.
func (m *Middleware) start(t application.Transport) *session.Handle {
	s := session.New()
	if raw, err := t.GetCookie(m.codec.Name()); err == nil {
		s = m.codec.Decode(map[string]string{m.codec.Name(): raw})
	}
	return session.NewHandle(s, m.cookie)
}

// finalize runs once, right before the response headers are written.
// Failures are logged and end with no cookie being set.
func (m *Middleware) finalize(t application.Transport, h *session.Handle) {
	decision, err := h.Decide()
	if err != nil {
		m.logger.Error().Err(err).Str("cookie", m.codec.Name()).Msg("cannot serialize session, cookie not sent")
		return
	}
	switch decision {
	case session.DecisionClear:
		t.SetCookie(h.CookieOptions().ExpiredCookie(m.codec.Name()))
	case session.DecisionEmit:
		s := h.Session()
		val, err := m.codec.Encode(s)
		if err != nil {
			m.logger.Error().Err(err).Str("cookie", m.codec.Name()).Msg("cannot encode session, cookie not sent")
			return
		}
		t.SetCookie(h.CookieOptions().ToCookie(m.codec.Name(), val))
	}
	m.logger.Debug().Str("cookie", m.codec.Name()).Stringer("decision", decision).Bool("touched", h.Touched()).Msg("session finalized")
}

// Handler wraps next for net/http. The session handle is available to next
// through FromContext.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := &application.HTTPTransport{Request: r, Writer: w}
		h := m.start(t)
		hw := &hookWriter{ResponseWriter: w}
		hw.before = func() { m.finalize(t, h) }
		next.ServeHTTP(hw, r.WithContext(NewContext(r.Context(), h)))
		// nothing was written, headers go out when we return
		hw.fire()
	})
}
