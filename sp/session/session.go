package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CookieKey is the reserved session key holding the cookie options.
const CookieKey = "cookie"

const DefaultCookiePath = "/"

var errNotObject = errors.New("session is not a json object")

// CookieOptions are the attributes of the session cookie. They travel inside
// the encrypted session so a handler can change them for one client.
type CookieOptions struct {
	Path     string     `json:"path,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	MaxAge   int        `json:"max_age,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"`
	Secure   bool       `json:"secure,omitempty"`
	HttpOnly bool       `json:"http_only,omitempty"`
	SameSite string     `json:"same_site,omitempty" validate:"omitempty,oneof=lax strict none"`
}

// WithDefaults returns a copy with an empty path replaced by "/".
func (o CookieOptions) WithDefaults() CookieOptions {
	if o.Path == "" {
		o.Path = DefaultCookiePath
	}
	return o
}

func (o CookieOptions) sameSite() http.SameSite {
	switch strings.ToLower(o.SameSite) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	}
	return 0
}

// ToCookie builds the Set-Cookie value for name=value with these options.
func (o CookieOptions) ToCookie(name, value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.sameSite(),
	}
	if o.Expires != nil {
		cookie.Expires = *o.Expires
	}
	return cookie
}

// ExpiredCookie builds a cookie that removes name from the client.
func (o CookieOptions) ExpiredCookie(name string) *http.Cookie {
	cookie := o.ToCookie(name, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

// Session is the application state carried in the cookie.
//
// Values holds arbitrary JSON data. Cookie is nil until the session has been
// persisted once or the middleware attached its defaults.
type Session struct {
	Values map[string]interface{}
	Cookie *CookieOptions
}

// New returns an empty session.
func New() *Session {
	return &Session{Values: map[string]interface{}{}}
}

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores v under key. The reserved "cookie" key is ignored, use Cookie.
func (s *Session) Set(key string, v interface{}) {
	if key == CookieKey {
		return
	}
	if s.Values == nil {
		s.Values = map[string]interface{}{}
	}
	s.Values[key] = v
}

func (s *Session) Delete(key string) {
	delete(s.Values, key)
}

func (s *Session) Len() int {
	return len(s.Values)
}

// Keys returns the value keys in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value for key if it is a string.
func (s *Session) String(key string) (string, bool) {
	v, ok := s.Values[key].(string)
	return v, ok
}

// Int64 returns the value for key as an integer. Decoded numbers are
// json.Number, values set during the request may be any Go integer.
func (s *Session) Int64(key string) (int64, bool) {
	switch v := s.Values[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), float64(int64(v)) == v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// MarshalJSON writes the values and the cookie options as one object.
// Map keys are sorted, so the output is canonical for a given session.
func (s Session) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(s.Values)+1)
	for k, v := range s.Values {
		flat[k] = v
	}
	delete(flat, CookieKey)
	if s.Cookie != nil {
		flat[CookieKey] = s.Cookie
	}
	return json.Marshal(flat)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errNotObject
	}

	values := make(map[string]interface{}, len(raw))
	var cookie *CookieOptions
	for k, msg := range raw {
		if k == CookieKey {
			if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
				continue
			}
			var opts CookieOptions
			if err := json.Unmarshal(msg, &opts); err != nil {
				return err
			}
			cookie = &opts
			continue
		}
		vdec := json.NewDecoder(bytes.NewReader(msg))
		vdec.UseNumber()
		var v interface{}
		if err := vdec.Decode(&v); err != nil {
			return err
		}
		values[k] = v
	}
	s.Values = values
	s.Cookie = cookie
	return nil
}

// Canonical returns the serialized form used for change detection and
// encryption.
func (s *Session) Canonical() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Session) MarshalZerologObject(e *zerolog.Event) {
	e.Int("keys", len(s.Values)).Bool("cookie_options", s.Cookie != nil)
}
