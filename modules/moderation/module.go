package moderation

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/service"

	"github.com/labstack/echo/v4"
)

// Init wires the moderation module. The returned service doubles as the
// block gate consulted by event creation and admission.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware, notifier queue.Notifier, clk clock.Clock) service.ModerationServiceInterface {
	repo := repository.NewModerationRepository(db)
	svc := service.NewModerationService(repo, notifier, clk)
	ctrl := controller.NewModerationController(svc, clk)
	router.NewModerationRouter(ctrl).Setup(e, mw)
	return svc
}
