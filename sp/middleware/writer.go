package middleware

import (
	"net/http"
	"sync"
)

// hookWriter calls before exactly once, ahead of the final response header.
type hookWriter struct {
	http.ResponseWriter
	before func()
	once   sync.Once
}

func (w *hookWriter) fire() {
	w.once.Do(w.before)
}

func (w *hookWriter) WriteHeader(code int) {
	// 1xx headers are not the final ones
	if code >= 200 {
		w.fire()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *hookWriter) Write(b []byte) (int, error) {
	w.fire()
	return w.ResponseWriter.Write(b)
}

// Flush is a no-op on the wrapped writer when it cannot flush.
func (w *hookWriter) Flush() {
	w.fire()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *hookWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
