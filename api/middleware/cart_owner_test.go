package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMin: 60}

func ownerHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = CartOwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestCartOwnerRejectsAnonymousRequest(t *testing.T) {
	var owner string
	handler := CartOwner(testJWT, nil)(ownerHandler(&owner))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if owner != "" {
		t.Fatalf("handler should not run")
	}
}

func TestCartOwnerUsesSessionHeader(t *testing.T) {
	var owner string
	handler := CartOwner(testJWT, nil)(ownerHandler(&owner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CartSessionHeader, " 3f2a-b_9 ")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if owner != "session:3f2a-b_9" {
		t.Fatalf("unexpected owner %q", owner)
	}
}

func TestCartOwnerRejectsMalformedSession(t *testing.T) {
	var owner string
	handler := CartOwner(testJWT, nil)(ownerHandler(&owner))

	for _, id := range []string{"a:b", "has space", strings.Repeat("x", maxSessionIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CartSessionHeader, id)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("session %q: expected 400 got %d", id, resp.Code)
		}
	}
}

func TestCartOwnerPrefersBearerToken(t *testing.T) {
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: "u-42"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var owner, userID string
	handler := CartOwner(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner = CartOwnerFromContext(r.Context())
		userID = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(CartSessionHeader, "anon")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if owner != "user:u-42" || userID != "u-42" {
		t.Fatalf("unexpected owner=%q user=%q", owner, userID)
	}
}

func TestCartOwnerRejectsInvalidToken(t *testing.T) {
	var owner string
	handler := CartOwner(testJWT, nil)(ownerHandler(&owner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	req.Header.Set(CartSessionHeader, "anon")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
