package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/calebmoran/tunewave-backend/api/responses"
	pkgAuth "github.com/calebmoran/tunewave-backend/pkg/auth"
	"github.com/calebmoran/tunewave-backend/pkg/config"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Rejections are 401.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return authWithCode(cfg, logg, pkgerrors.CodeUnauthorized)
}

// AuthForbidden is Auth with 403 rejections, for surfaces whose contract
// reports missing credentials as access denial (the billing session routes).
func AuthForbidden(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return authWithCode(cfg, logg, pkgerrors.CodeForbidden)
}

func authWithCode(cfg config.JWTConfig, logg *logger.Logger, rejectCode pkgerrors.Code) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(rejectCode, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(rejectCode, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(rejectCode, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			if claims.Email != "" {
				ctx = context.WithValue(ctx, ctxUserEmail, claims.Email)
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
