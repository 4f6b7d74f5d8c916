package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/techmart/backend/internal/auth"
	"github.com/techmart/backend/pkg/e"
)

type ctxKey int

const claimsKey ctxKey = iota

// authMiddleware проверяет bearer-токен и кладёт claims в контекст запроса.
func authMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				WriteError(w, e.ErrInvalidToken)
				return
			}

			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				WriteError(w, e.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// adminOnly пускает дальше только пользователей с правами администратора.
// Вешается после authMiddleware.
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromCtx(r.Context())
		if claims == nil || !claims.IsAdmin {
			WriteError(w, e.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func claimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
