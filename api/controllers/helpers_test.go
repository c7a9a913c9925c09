package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// newParamRouter mounts a handler on a chi router so URL parameters resolve
// in handler-level tests.
func newParamRouter(pattern, method string, handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Method(method, pattern, handler)
	return r
}
