package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	cartIDKey    contextKey = "cart_id"
	authTokenKey contextKey = "auth_token"
	userIDKey    contextKey = "user_id"
)

const cartCookieName = "cart_id"

// CartIDMiddleware resolves the client's cart slot: an explicit X-Cart-ID
// header wins, then the cart cookie, otherwise a fresh ID is issued and set
// as a cookie so subsequent requests land on the same slot.
func CartIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cartID := r.Header.Get("X-Cart-ID")
		if cartID == "" {
			if c, err := r.Cookie(cartCookieName); err == nil {
				cartID = c.Value
			}
		}
		if cartID == "" {
			cartID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cartCookieName,
				Value:    cartID,
				Path:     "/",
				HttpOnly: true,
			})
		}

		ctx := context.WithValue(r.Context(), cartIDKey, cartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware lifts the bearer token and the upstream-verified user ID
// into the request context. Authentication itself is an external concern.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			ctx = context.WithValue(ctx, authTokenKey, strings.TrimPrefix(auth, "Bearer "))
		}
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getCartID(ctx context.Context) string {
	if id, ok := ctx.Value(cartIDKey).(string); ok {
		return id
	}
	return ""
}

func getAuthToken(ctx context.Context) string {
	if token, ok := ctx.Value(authTokenKey).(string); ok {
		return token
	}
	return ""
}

func getUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
