package participation

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/service"

	"github.com/labstack/echo/v4"
)

// Init wires the participation module. The repository is returned for the
// notification worker, which fans event cancellations out to participants.
func Init(
	e *echo.Echo,
	db database.Database,
	mw *middleware.Middleware,
	events service.EventGetter,
	blocks service.BlockChecker,
	users service.GenderProvider,
	notifier queue.Notifier,
	clk clock.Clock,
) (service.AdmissionServiceInterface, *repository.ParticipationRepository) {
	repo := repository.NewParticipationRepository(db)
	svc := service.NewAdmissionService(repo, events, blocks, users, notifier, clk)
	ctrl := controller.NewParticipationController(svc)
	router.NewParticipationRouter(ctrl).Setup(e, mw)
	return svc, repo
}
