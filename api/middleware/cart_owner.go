package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	pkgAuth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	CartSessionHeader = "X-Cart-Session"

	userOwnerPrefix    = "user:"
	sessionOwnerPrefix = "session:"
	maxSessionIDLength = 128
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CartOwner resolves the cart owner from a bearer token, falling back to the anonymous session header.
// A present but invalid bearer token is rejected rather than downgraded to the session.
func CartOwner(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
				token := raw
				if strings.HasPrefix(strings.ToLower(token), "bearer ") {
					token = strings.TrimSpace(token[7:])
				}
				if token == "" {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				claims, err := pkgAuth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}

				owner := userOwnerPrefix + claims.Subject
				ctx = WithUserID(WithCartOwner(ctx, owner), claims.Subject)
				if logg != nil {
					ctx = logg.WithCartOwner(logg.WithUserID(ctx, claims.Subject), owner)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionID := validators.SanitizeString(r.Header.Get(CartSessionHeader))
			if sessionID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token or "+CartSessionHeader+" header required"))
				return
			}
			if len(sessionID) > maxSessionIDLength || !sessionIDPattern.MatchString(sessionID) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session id").
					WithDetails(map[string]string{CartSessionHeader: "must be 1-128 url-safe characters"}))
				return
			}

			owner := sessionOwnerPrefix + sessionID
			ctx = WithCartOwner(ctx, owner)
			if logg != nil {
				ctx = logg.WithCartOwner(ctx, owner)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
