package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/praxis-hq/praxis/internal/shared"
)

// IdentityMiddleware resolves the bearer token on each request and attaches
// the caller identity to the request context. Requests without a usable
// token continue without identity; whether that matters is decided by the
// authorization middleware downstream.
func IdentityMiddleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := service.ResolveIdentity(r.Context(), token)
			if err != nil {
				if logger != nil && !errors.Is(err, shared.ErrUnauthenticated) {
					logger.Error("resolve identity", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), ident)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
