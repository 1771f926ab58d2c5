package middlewares

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Authenticate rejects the request unless it carries a valid, unrevoked bearer token.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticate(r)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate runs anonymous requests as the system actor. A token
// that is present but invalid is still rejected.
func (m *Middlewares) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearerToken(r) == "" {
			ctx := context.WithValue(r.Context(), constvars.CONTEXT_ACTOR_KEY, models.SystemActor)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx, err := m.authenticate(r)
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles lets through actors whose role is one of roles. It must run
// after Authenticate or OptionalAuthenticate.
func (m *Middlewares) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := utils.GetActor(r.Context())
			if err != nil {
				utils.BuildErrorResponse(m.Log, w, err)
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.Log.Warn("Middlewares.RequireRoles role not allowed",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
				zap.String(constvars.LoggingUserRoleKey, actor.Role),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrRoleNotAllowed(nil, actor.Role))
		})
	}
}

func (m *Middlewares) authenticate(r *http.Request) (context.Context, error) {
	ctx := r.Context()
	requestID := utils.GetRequestID(ctx)

	claims, err := m.TokenVerifier.VerifyToken(ctx, bearerToken(r))
	if err != nil {
		m.Log.Info("Middlewares.authenticate token rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	revoked, err := m.UserUsecase.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		m.Log.Error("Middlewares.authenticate error checking token revocation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if revoked {
		return nil, exceptions.ErrTokenRevoked(nil)
	}

	actor, err := claims.Actor()
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, constvars.CONTEXT_ACTOR_KEY, actor)
	ctx = context.WithValue(ctx, constvars.CONTEXT_TOKEN_ID_KEY, claims.ID)
	if claims.ExpiresAt != nil {
		ctx = context.WithValue(ctx, constvars.CONTEXT_TOKEN_EXPIRY_KEY, claims.ExpiresAt.Time)
	}
	return ctx, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(constvars.HeaderAuthorization))
	if !strings.HasPrefix(header, constvars.AuthorizationBearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, constvars.AuthorizationBearerPrefix))
}
