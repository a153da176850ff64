package middleware

import (
	"context"
	"net/http"
)

type routeKey struct{}

// routeHolder receives the pattern the mux matched. The mux only sets
// Request.Pattern on the request it is handed, which outer middleware never
// sees once the request has been copied with WithContext.
type routeHolder struct {
	pattern string
}

// withRouteHolder attaches a holder to r unless an outer middleware already did
func withRouteHolder(r *http.Request) (*http.Request, *routeHolder) {
	if h, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
		return r, h
	}
	h := &routeHolder{}
	return r.WithContext(context.WithValue(r.Context(), routeKey{}, h)), h
}

// route returns the matched pattern, or a fixed label for unmatched requests
func (h *routeHolder) route() string {
	if h.pattern == "" {
		return "unmatched"
	}
	return h.pattern
}

// CaptureRoute must wrap the ServeMux directly
func CaptureRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if h, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			h.pattern = r.Pattern
		}
	})
}
