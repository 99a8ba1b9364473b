package notification

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/service"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification/worker"

	"github.com/labstack/echo/v4"
)

// Init wires the notification module and builds the task worker.
func Init(
	e *echo.Echo,
	db database.Database,
	mw *middleware.Middleware,
	participants worker.ParticipantLister,
	events worker.StatusSyncer,
) (service.NotificationServiceInterface, *worker.Worker) {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)
	router.NewNotificationRouter(ctrl).Setup(e, mw)

	return svc, worker.New(svc, participants, events)
}
