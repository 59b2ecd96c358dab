package middleware

import (
	"context"

	"github.com/bertrandmartel/yummy/sp/session"
	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
)

type ctxKey struct{}

func NewContext(ctx context.Context, h *session.Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext returns the session handle of the request, or nil when the
// middleware did not run.
func FromContext(ctx context.Context) *session.Handle {
	h, _ := ctx.Value(ctxKey{}).(*session.Handle)
	return h
}

func FromEcho(c echo.Context) *session.Handle {
	h, _ := c.Get(ContextKey).(*session.Handle)
	return h
}

func FromGin(c *gin.Context) *session.Handle {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	h, _ := v.(*session.Handle)
	return h
}
