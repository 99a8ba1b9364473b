package middleware

import (
	"strings"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token and stores its claims in the
// request context as "token_data".
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "Authorization header is required")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "Authorization header must be a Bearer token")
			}

			claims, err := utils.ValidateAndParseToken(parts[1])
			if err != nil {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "Invalid or expired token")
			}

			c.Set("token_data", claims)
			return next(c)
		}
	}
}

// AdminMiddleware requires AuthMiddleware to have run and the token to
// carry the admin flag.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("token_data").(*utils.TokenClaims)
			if !ok || claims == nil {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "Authentication required")
			}
			if !claims.IsAdmin {
				return controller.NewErrorResponse(403, errors.ErrForbidden, "Moderator access required")
			}
			return next(c)
		}
	}
}
