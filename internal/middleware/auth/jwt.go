package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"pluckandpay/internal/httpapi"
)

type ctxKey struct{}

// Identity is the verified caller placed into the request context.
type Identity struct {
	UserID int64
	Role   string
}

// JWT verifies a Bearer token on every request. Missing, malformed,
// badly signed or expired tokens are rejected with 401.
func JWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpapi.Unauthorized(w, r, "No token, authorization denied")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				httpapi.Unauthorized(w, r, "No token, authorization denied")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				httpapi.Unauthorized(w, r, "Token is not valid")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				httpapi.Unauthorized(w, r, "Token is not valid")
				return
			}
			uid, ok := claims["uid"].(float64)
			if !ok {
				httpapi.Unauthorized(w, r, "Token is not valid")
				return
			}
			role, _ := claims["role"].(string)

			ident := Identity{UserID: int64(uid), Role: role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}
