// Package requesttime provides middleware for request-scoped time. All
// operations within a single request observe the same "now", so a record's
// registration date and its audit trail never disagree by a tick.
package requesttime

import (
	"net/http"
	"time"

	"evidgate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
