package event

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/storage"
	categoryService "github.com/AndyVoronov/ObschiySbor-sub000/modules/category/service"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init wires the event module and returns its service and repository for
// the participation module and the background jobs.
func Init(
	e *echo.Echo,
	db database.Database,
	mw *middleware.Middleware,
	categories categoryService.CategoryServiceInterface,
	blocks service.BlockChecker,
	notifier queue.Notifier,
	store *storage.Storage,
	clk clock.Clock,
) (service.EventServiceInterface, *repository.EventRepository) {
	repo := repository.NewEventRepository(db)
	svc := service.NewEventService(repo, categories, blocks, notifier, store, clk)
	ctrl := controller.NewEventController(svc)
	router.NewEventRouter(ctrl).Setup(e, mw)
	return svc, repo
}
