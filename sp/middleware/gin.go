package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

type ginTransport struct {
	c *gin.Context
}

// GetCookie reads the raw value. gin's own Cookie helper query-unescapes,
// which would turn '+' of the base64 payload into spaces.
func (t *ginTransport) GetCookie(name string) (string, error) {
	cookie, err := t.c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (t *ginTransport) SetCookie(cookie *http.Cookie) {
	http.SetCookie(t.c.Writer, cookie)
}

// ginWriter fires before when gin is about to send the headers.
type ginWriter struct {
	gin.ResponseWriter
	before func()
}

func (w *ginWriter) WriteHeaderNow() {
	w.before()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *ginWriter) Write(b []byte) (int, error) {
	w.before()
	return w.ResponseWriter.Write(b)
}

func (w *ginWriter) WriteString(s string) (int, error) {
	w.before()
	return w.ResponseWriter.WriteString(s)
}

func (w *ginWriter) Flush() {
	w.before()
	w.ResponseWriter.Flush()
}

// Gin returns the session middleware for gin. Handlers get the session with
// FromGin(c).
func (m *Middleware) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := &ginTransport{c: c}
		h := m.start(t)
		c.Set(ContextKey, h)
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), h))

		var once sync.Once
		finalize := func() {
			once.Do(func() { m.finalize(t, h) })
		}
		c.Writer = &ginWriter{ResponseWriter: c.Writer, before: finalize}

		c.Next()
		finalize()
	}
}
