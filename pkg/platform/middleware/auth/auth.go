// Package auth binds requests to the wallet session they were issued for.
package auth

import (
	"net/http"
	"strings"

	"evidgate/pkg/platform/httputil"
	"evidgate/pkg/requestcontext"

	dErrors "evidgate/pkg/domain-errors"
)

// TokenValidator resolves a session token to the wallet address it carries.
type TokenValidator interface {
	Address(token string) (string, error)
}

// Optional extracts the wallet address from a Bearer token when one is
// present. Invalid tokens are ignored rather than rejected; handlers that
// need a bound session use Required.
func Optional(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if address, err := tokens.Address(token); err == nil {
					r = r.WithContext(requestcontext.WithWalletAddress(r.Context(), address))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Required rejects requests without a valid session token.
func Required(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session token required"))
				return
			}
			address, err := tokens.Address(token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithWalletAddress(r.Context(), address)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
