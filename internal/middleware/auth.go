package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/controller"
	"github.com/lshigami/vaikuntha/internal/service"
)

type AuthMiddleware struct {
	authService service.AuthService
}

func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			controller.RespondError(ctx, apierr.Unauthorized("unauthorized", "missing bearer token"))
			return
		}
		actor, err := m.authService.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			controller.RespondError(ctx, err)
			return
		}
		controller.SetActor(ctx, actor)
		ctx.Next()
	}
}

// OptionalAuth attaches the caller when a token is present. A bad token is
// still rejected so clients notice expired sessions.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.Next()
			return
		}
		actor, err := m.authService.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			controller.RespondError(ctx, err)
			return
		}
		controller.SetActor(ctx, actor)
		ctx.Next()
	}
}

// RequireRoles must run after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := controller.Actor(ctx)
		for _, role := range roles {
			if actor.Role == role {
				ctx.Next()
				return
			}
		}
		controller.RespondError(ctx, apierr.Forbidden("forbidden", "your role may not access this resource"))
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
