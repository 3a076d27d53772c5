package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/services"
)

type TokenVerifier interface {
	Verify(token string) (*services.TokenClaims, error)
}

type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, profileID string) (models.Principal, error)
}

// Authenticate проверяет Bearer-токен и кладет Principal в контекст запроса.
// is_admin берется из профиля, а не из токена.
func Authenticate(tokens TokenVerifier, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, services.ErrAuthenticationFailed) {
					writeError(w, http.StatusUnauthorized, "unknown profile")
					return
				}
				slog.ErrorContext(r.Context(), "failed to resolve principal", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin пропускает только администраторов. Ставится после Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !principal.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
