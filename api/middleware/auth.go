package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/responses"
	pkgAuth "github.com/angelmondragon/salonflow-backend/pkg/auth"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/logger"
)

// IdentityResolver turns validated claims into a live identity, rejecting
// deactivated accounts. Resolution happens once per request; downstream
// handlers read the result from the context.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims *pkgAuth.AccessTokenClaims) (*Identity, error)
}

// Auth validates a bearer token and seeds the request context with the
// resolved identity.
func Auth(cfg config.JWTConfig, resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if resolver == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity resolver not configured"))
				return
			}

			identity, err := resolver.Resolve(r.Context(), claims)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), *identity)

			if logg != nil {
				fields := map[string]any{
					"actor_id":   identity.ActorIDString(),
					"actor_type": string(identity.ActorType),
				}
				if !identity.IsAdmin() {
					fields["business_id"] = identity.BusinessID
					fields["actor_role"] = string(identity.Role)
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
