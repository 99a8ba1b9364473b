package auth

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth/service"

	"github.com/labstack/echo/v4"
)

// Init wires the auth module. The service is returned because admission
// reads profile gender through it.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) service.AuthServiceInterface {
	repo := repository.NewAuthRepository(db)
	svc := service.NewAuthService(repo)
	ctrl := controller.NewAuthController(svc)
	router.NewAuthRouter(ctrl).Setup(e, mw)
	return svc
}
