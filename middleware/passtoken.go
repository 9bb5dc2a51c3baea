package middleware

import (
	"context"
	"net/http"
	"strings"

	goCaptcha "github.com/hearsum/goCaptcha"
	"github.com/hearsum/goCaptcha/jwt"
)

type passClaimsContextKey struct{}

func PassClaimsFromContext(ctx context.Context) (*jwt.PassClaims, bool) {
	claims, ok := ctx.Value(passClaimsContextKey{}).(*jwt.PassClaims)
	return claims, ok
}

func RequirePassToken(engine *goCaptcha.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.ValidatePass(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), passClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
