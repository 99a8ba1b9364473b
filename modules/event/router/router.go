package router

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	EventController *controller.EventController
}

func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{EventController: eventController}
}

func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// Public reads
	v1.GET("/events", r.EventController.ListEvents)
	v1.GET("/events/:id", r.EventController.GetEvent)
	v1.GET("/events/:id/occurrences", r.EventController.GetOccurrences)
	v1.GET("/events/:id/calendar.ics", r.EventController.ExportICS)

	// Organizer actions
	auth := v1.Group("", mw.AuthMiddleware())
	auth.POST("/events", r.EventController.CreateEvent)
	auth.PUT("/events/:id", r.EventController.UpdateEvent)
	auth.POST("/events/:id/cancel", r.EventController.CancelEvent)
	auth.POST("/events/:id/expand", r.EventController.RetryExpansion)
	auth.POST("/events/:id/cover-upload-url", r.EventController.PresignCoverUpload)
	auth.GET("/me/created-events", r.EventController.GetMyEvents)
}
