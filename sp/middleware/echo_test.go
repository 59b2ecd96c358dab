package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoApp(m *Middleware) *echo.Echo {
	e := echo.New()
	e.Use(m.Echo())
	e.GET("/read", func(c echo.Context) error {
		_, _ = FromEcho(c).Session().Get("foo")
		return c.String(http.StatusOK, "read only\n")
	})
	e.GET("/increment", func(c echo.Context) error {
		s := FromEcho(c).Session()
		n, _ := s.Int64("count")
		n++
		s.Set("count", n)
		return c.String(http.StatusOK, strconv.FormatInt(n, 10))
	})
	e.GET("/touch", func(c echo.Context) error {
		FromContext(c.Request().Context()).Touch()
		return c.NoContent(http.StatusOK)
	})
	e.GET("/logout", func(c echo.Context) error {
		FromEcho(c).Clear()
		return c.Redirect(http.StatusFound, "/login")
	})
	e.GET("/silent", func(c echo.Context) error {
		FromEcho(c).Session().Set("foo", "bar")
		return nil
	})
	e.GET("/fail", func(c echo.Context) error {
		FromEcho(c).Session().Set("error_message", "bad request")
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})
	return e
}

func TestEchoReadOnly(t *testing.T) {
	res := serve(echoApp(foobar(t)), "/read")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "read only\n", body(t, res))
	assert.Empty(t, res.Header.Get("Set-Cookie"))
}

func TestEchoCounter(t *testing.T) {
	e := echoApp(foobar(t))
	res := serve(e, "/increment")
	assert.Equal(t, "1", body(t, res))
	c := sessionCookie(res, "connect.sess")
	require.NotNil(t, c)

	res = serve(e, "/increment", c)
	assert.Equal(t, "2", body(t, res))
}

func TestEchoTouchAndLogout(t *testing.T) {
	e := echoApp(foobar(t))
	c := sessionCookie(serve(e, "/increment"), "connect.sess")
	require.NotNil(t, c)

	assert.NotNil(t, sessionCookie(serve(e, "/touch", c), "connect.sess"))

	res := serve(e, "/logout", c)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	gone := sessionCookie(res, "connect.sess")
	require.NotNil(t, gone)
	assert.Equal(t, -1, gone.MaxAge)
}

func TestEchoNoBody(t *testing.T) {
	res := serve(echoApp(foobar(t)), "/silent")
	assert.NotNil(t, sessionCookie(res, "connect.sess"))
}

func TestEchoErrorResponseCarriesCookie(t *testing.T) {
	m := foobar(t)
	res := serve(echoApp(m), "/fail")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	c := sessionCookie(res, "connect.sess")
	require.NotNil(t, c)
	msg, _ := m.DecodeCookies(map[string]string{"connect.sess": c.Value}).String("error_message")
	assert.Equal(t, "bad request", msg)
}

func TestFromEchoWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())
	assert.Nil(t, FromEcho(c))
}
