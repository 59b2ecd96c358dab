package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = CookieOptions{Path: "/", HttpOnly: true}

func decide(t *testing.T, h *Handle) Decision {
	t.Helper()
	d, err := h.Decide()
	require.Nil(t, err)
	return d
}

func TestUntouchedSessionIsSkipped(t *testing.T) {
	h := NewHandle(New(), defaults)
	assert.Equal(t, &defaults, h.Session().Cookie)
	_, _ = h.Session().Get("foo")
	assert.Equal(t, DecisionSkip, decide(t, h))
}

func TestNilSessionGetsDefaults(t *testing.T) {
	h := NewHandle(nil, defaults)
	require.NotNil(t, h.Session())
	assert.Equal(t, defaults, h.CookieOptions())
}

func TestMutationIsEmitted(t *testing.T) {
	h := NewHandle(New(), defaults)
	h.Session().Set("foo", "bar")
	assert.Equal(t, DecisionEmit, decide(t, h))
}

func TestCookieOptionChangeIsEmitted(t *testing.T) {
	h := NewHandle(New(), defaults)
	h.Session().Cookie.MaxAge = 60
	assert.Equal(t, DecisionEmit, decide(t, h))
}

func TestMutateAndRevertIsSkipped(t *testing.T) {
	s := New()
	s.Set("foo", "bar")
	h := NewHandle(s, defaults)
	h.Session().Set("foo", "baz")
	h.Session().Set("foo", "bar")
	assert.Equal(t, DecisionSkip, decide(t, h))
}

func TestTouchForcesEmit(t *testing.T) {
	h := NewHandle(New(), defaults)
	assert.False(t, h.Touched())
	h.Touch()
	assert.True(t, h.Touched())
	assert.Equal(t, DecisionEmit, decide(t, h))

	// the flag belongs to one request
	next := NewHandle(h.Session(), defaults)
	assert.False(t, next.Touched())
	assert.Equal(t, DecisionSkip, decide(t, next))
}

func TestResetKeepsCookieOptions(t *testing.T) {
	s := New()
	s.Set("user", "alice")
	s.Cookie = &CookieOptions{Path: "/app", MaxAge: 120}
	h := NewHandle(s, defaults)

	h.Reset()
	assert.Equal(t, 0, h.Session().Len())
	assert.Equal(t, &CookieOptions{Path: "/app", MaxAge: 120}, h.Session().Cookie)
	assert.Equal(t, DecisionEmit, decide(t, h))
}

func TestResetOfEmptySessionIsSkipped(t *testing.T) {
	h := NewHandle(New(), defaults)
	h.Reset()
	assert.Equal(t, DecisionSkip, decide(t, h))
}

func TestClearRemovesCookie(t *testing.T) {
	s := New()
	s.Cookie = &CookieOptions{Path: "/app"}
	h := NewHandle(s, defaults)
	h.Clear()
	assert.True(t, h.Cleared())
	assert.Nil(t, h.Session())
	assert.Equal(t, "/app", h.CookieOptions().Path)
	assert.Equal(t, DecisionClear, decide(t, h))

	// reset after clear starts over with the last known options
	h.Reset()
	assert.False(t, h.Cleared())
	assert.Equal(t, "/app", h.Session().Cookie.Path)
}

func TestUnserializableSession(t *testing.T) {
	h := NewHandle(New(), defaults)
	h.Session().Set("ch", make(chan int))
	d, err := h.Decide()
	assert.NotNil(t, err)
	assert.Equal(t, DecisionEmit, d)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "skip", DecisionSkip.String())
	assert.Equal(t, "emit", DecisionEmit.String())
	assert.Equal(t, "clear", DecisionClear.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
