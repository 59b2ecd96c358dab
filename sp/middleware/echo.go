package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

type echoTransport struct {
	c echo.Context
}

func (t *echoTransport) GetCookie(name string) (string, error) {
	cookie, err := t.c.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (t *echoTransport) SetCookie(cookie *http.Cookie) {
	t.c.SetCookie(cookie)
}

// Echo returns the session middleware for echo. Handlers get the session
// with FromEcho(c).
func (m *Middleware) Echo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := &echoTransport{c: c}
			h := m.start(t)
			c.Set(ContextKey, h)
			c.SetRequest(c.Request().WithContext(NewContext(c.Request().Context(), h)))

			var once sync.Once
			finalize := func() {
				once.Do(func() { m.finalize(t, h) })
			}
			c.Response().Before(finalize)

			err := next(c)
			// on error the error handler writes the response and fires the hook
			if err == nil && !c.Response().Committed {
				finalize()
			}
			return err
		}
	}
}
