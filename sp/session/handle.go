package session

// Handle is the request-scoped view of a session. Handlers mutate the session
// it returns and use Reset, Touch and Clear instead of writing control data
// into the session itself.
//
// A Handle belongs to one request and is not safe for concurrent use.
type Handle struct {
	session  *Session
	defaults CookieOptions
	touched  bool
	tracker  Tracker
}

// NewHandle attaches s to a request. When s carries no cookie options the
// defaults are used, and the baseline for change detection is taken after
// that so a fresh session with defaults counts as unchanged.
func NewHandle(s *Session, defaults CookieOptions) *Handle {
	if s == nil {
		s = New()
	}
	if s.Cookie == nil {
		opts := defaults
		s.Cookie = &opts
	}
	h := &Handle{
		session:  s,
		defaults: *s.Cookie,
	}
	h.tracker = NewTracker(s)
	return h
}

// Session returns the live session, or nil after Clear.
func (h *Handle) Session() *Session {
	return h.session
}

// Reset replaces the session with an empty one. The cookie options in effect
// at the time of the call are kept, including changes made during the request.
func (h *Handle) Reset() {
	opts := h.defaults
	if h.session != nil && h.session.Cookie != nil {
		opts = *h.session.Cookie
	}
	h.session = &Session{
		Values: map[string]interface{}{},
		Cookie: &opts,
	}
}

// Touch forces the cookie to be sent again even when nothing changed.
// Useful to roll the expiry of a session.
func (h *Handle) Touch() {
	h.touched = true
}

// Clear drops the session. The client cookie is removed on response.
func (h *Handle) Clear() {
	h.session = nil
}

func (h *Handle) Touched() bool {
	return h.touched
}

func (h *Handle) Cleared() bool {
	return h.session == nil
}

// CookieOptions returns the options the response cookie will use.
func (h *Handle) CookieOptions() CookieOptions {
	if h.session != nil && h.session.Cookie != nil {
		return *h.session.Cookie
	}
	return h.defaults
}

// Decide runs the change tracker against the current state.
func (h *Handle) Decide() (Decision, error) {
	return h.tracker.Decide(h.session, h.touched)
}
