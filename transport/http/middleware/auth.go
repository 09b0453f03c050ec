package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"shear/infras/jwt"
	"shear/infras/otel"
	"shear/shared/constant"
	"shear/shared/failure"
	"shear/transport/http/response"
)

const bearerPrefix = "Bearer "

// Auth validates bearer tokens and loads the caller's identity into the
// request context. RequireRole gates a subtree to specific roles; it assumes
// Auth already ran.
type Auth interface {
	Auth(next http.Handler) http.Handler
	RequireRole(roles ...string) func(next http.Handler) http.Handler
}

type authImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
}

func NewAuthMiddleware(jwtService jwt.JWT, otel otel.Otel) Auth {
	return &authImpl{
		jwtService: jwtService,
		otel:       otel,
	}
}

func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == constant.Empty {
			err := failure.Unauthorized("missing authorization header")
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			err := failure.Unauthorized("invalid authorization header format")
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		claims, err := m.jwtService.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			var message string

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "token has expired"
			case errors.Is(err, jwt.ErrInvalidToken):
				message = "invalid token"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "invalid token claims"
			default:
				message = "token validation failed"
			}

			failErr := failure.Unauthorized(message)
			scope.TraceError(failErr)
			response.WithError(writer, failErr)

			return
		}

		if claims.UserID == constant.Empty {
			log.Error().Msg("token claims carry no user id")

			response.WithError(writer, failure.Unauthorized("invalid token claims"))

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authImpl) RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			role, _ := request.Context().Value(constant.ContextKeyUserRole).(string)

			if !slices.Contains(roles, role) {
				response.WithError(writer, failure.ForbiddenError)

				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
