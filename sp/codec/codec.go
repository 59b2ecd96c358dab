// Package codec encrypts sessions into cookie values and back.
//
// Values are base64(AES-CBC(json(session))). There is no MAC: anyone able to
// produce a ciphertext that decrypts to a JSON object controls the session
// contents. Decode never fails, a cookie that cannot be read is an empty
// session.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bertrandmartel/yummy/sp/session"
	"github.com/rs/zerolog"
)

const DefaultCookieName = "connect.sess"

// Reason classifies why a cookie value could not be opened.
type Reason string

const (
	ReasonBase64  Reason = "base64"
	ReasonCipher  Reason = "cipher"
	ReasonPadding Reason = "padding"
	ReasonParse   Reason = "parse"
)

type DecodeError struct {
	Reason Reason
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode session (%s): %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Codec struct {
	name   string
	cipher *blockCipher
	logger zerolog.Logger
}

// New builds a codec for the cookie called name. key must be a valid AES key.
func New(name string, key []byte, iv IVStrategy) (*Codec, error) {
	if name == "" {
		name = DefaultCookieName
	}
	if iv == "" {
		iv = IVRandom
	}
	bc, err := newBlockCipher(key, iv)
	if err != nil {
		return nil, err
	}
	return &Codec{name: name, cipher: bc, logger: zerolog.Nop()}, nil
}

// SetLogger sets where decode failures are reported. Not safe to call once
// the codec is in use.
func (c *Codec) SetLogger(l zerolog.Logger) {
	c.logger = l
}

func (c *Codec) Name() string {
	return c.name
}

// Encode serializes and encrypts s.
func (c *Codec) Encode(s *session.Session) (string, error) {
	if s == nil {
		return "", errors.New("nil session")
	}
	plaintext, err := s.Canonical()
	if err != nil {
		return "", fmt.Errorf("serialize session: %w", err)
	}
	ct, err := c.cipher.seal(plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt session: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Open decrypts a cookie value and reports why it failed.
func (c *Codec) Open(value string) (*session.Session, error) {
	ct, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, &DecodeError{Reason: ReasonBase64, Err: err}
	}
	plaintext, err := c.cipher.open(ct)
	if err != nil {
		if errors.Is(err, errPadding) {
			return nil, &DecodeError{Reason: ReasonPadding, Err: err}
		}
		return nil, &DecodeError{Reason: ReasonCipher, Err: err}
	}
	s := session.New()
	if err := json.Unmarshal(plaintext, s); err != nil {
		return nil, &DecodeError{Reason: ReasonParse, Err: err}
	}
	return s, nil
}

// Decode looks the session cookie up in cookies. A missing or unreadable
// cookie gives an empty session.
func (c *Codec) Decode(cookies map[string]string) *session.Session {
	raw, ok := cookies[c.name]
	if !ok || raw == "" {
		return session.New()
	}
	s, err := c.Open(raw)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			c.logger.Debug().Str("cookie", c.name).Str("reason", string(de.Reason)).Err(de.Err).Msg("discarding unreadable session cookie")
		}
		return session.New()
	}
	return s
}

// DecodeHeader parses a raw Cookie header and decodes the session from it.
func (c *Codec) DecodeHeader(header string) *session.Session {
	return c.Decode(ParseCookieHeader(header))
}

func (c *Codec) DecodeRequest(r *http.Request) *session.Session {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return session.New()
	}
	return c.Decode(map[string]string{c.name: cookie.Value})
}

// ParseCookieHeader splits a Cookie header into name/value pairs. The first
// occurrence of a name wins.
func ParseCookieHeader(header string) map[string]string {
	r := &http.Request{Header: http.Header{"Cookie": {header}}}
	out := make(map[string]string)
	for _, cookie := range r.Cookies() {
		if _, ok := out[cookie.Name]; !ok {
			out[cookie.Name] = cookie.Value
		}
	}
	return out
}
