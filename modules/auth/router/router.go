package router

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	AuthController *controller.AuthController
}

func NewAuthRouter(authController *controller.AuthController) *AuthRouter {
	return &AuthRouter{AuthController: authController}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", r.AuthController.Register)
	v1.POST("/auth/login", r.AuthController.Login)

	auth := v1.Group("", mw.AuthMiddleware())
	auth.GET("/me", r.AuthController.GetProfile)
	auth.PUT("/me", r.AuthController.UpdateProfile)
}
