package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jmcamacho/auth-portal/internal/apperr"
	"github.com/jmcamacho/auth-portal/internal/auth"
	"github.com/jmcamacho/auth-portal/internal/response"
)

// claimsKey is the context key for verified token claims.
type claimsKey struct{}

// ClaimsFromContext returns the verified claims for the request, or
// nil outside an authenticated route.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

// BearerAuth rejects requests without a valid bearer token: 401 when
// the token is missing, 403 when it is invalid or expired. Verified
// claims are stored in the request context.
func BearerAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				e := apperr.Unauthorized("token not provided")
				response.WriteJSON(w, response.Error(e.Code, e.Message, e.Status, r.URL.Path))
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "token has expired"
				}
				e := apperr.Forbidden(message)
				response.WriteJSON(w, response.Error(e.Code, e.Message, e.Status, r.URL.Path))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
