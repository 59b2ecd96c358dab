package application

import (
	"net/http"
)

// Transport is the cookie surface of one request/response pair. Each HTTP
// framework front-end provides its own implementation.
type Transport interface {
	GetCookie(name string) (string, error)
	SetCookie(cookie *http.Cookie)
}

// HTTPTransport implements Transport for plain net/http.
type HTTPTransport struct {
	Request *http.Request
	Writer  http.ResponseWriter
}

func (t *HTTPTransport) GetCookie(name string) (string, error) {
	cookie, err := t.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (t *HTTPTransport) SetCookie(cookie *http.Cookie) {
	http.SetCookie(t.Writer, cookie)
}
