package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"evidgate/internal/session"
	"evidgate/pkg/requestcontext"
)

const testAddress = "0xAA00000000000000000000000000000000000001"

func issueToken(t *testing.T, svc *session.TokenService) string {
	t.Helper()
	token, err := svc.Issue(testAddress, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func addressEcho() (http.Handler, *string) {
	var got string
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.WalletAddress(r.Context())
	}), &got
}

func TestOptional(t *testing.T) {
	tokens := session.NewTokenService("test-key", time.Hour)

	t.Run("binds a valid token", func(t *testing.T) {
		echo, got := addressEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, tokens))

		Optional(tokens)(echo).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, testAddress, *got)
	})

	t.Run("passes through without a token", func(t *testing.T) {
		echo, got := addressEcho()
		Optional(tokens)(echo).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, *got)
	})

	t.Run("ignores an invalid token", func(t *testing.T) {
		echo, got := addressEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		w := httptest.NewRecorder()
		Optional(tokens)(echo).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, *got)
	})
}

func TestRequired(t *testing.T) {
	tokens := session.NewTokenService("test-key", time.Hour)

	t.Run("binds a valid token", func(t *testing.T) {
		echo, got := addressEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, tokens))

		w := httptest.NewRecorder()
		Required(tokens)(echo).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testAddress, *got)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		echo, _ := addressEcho()
		w := httptest.NewRecorder()
		Required(tokens)(echo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		stale, err := tokens.Issue(testAddress, time.Now().Add(-2*time.Hour))
		assert.NoError(t, err)

		echo, _ := addressEcho()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+stale)

		w := httptest.NewRecorder()
		Required(tokens)(echo).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
