package router

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/controller"

	"github.com/labstack/echo/v4"
)

type ParticipationRouter struct {
	ParticipationController *controller.ParticipationController
}

func NewParticipationRouter(participationController *controller.ParticipationController) *ParticipationRouter {
	return &ParticipationRouter{ParticipationController: participationController}
}

func (r *ParticipationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	v1.GET("/events/:id/participants", r.ParticipationController.ListParticipants)

	auth := v1.Group("", mw.AuthMiddleware())
	auth.POST("/events/:id/join", r.ParticipationController.Join)
	auth.POST("/events/:id/leave", r.ParticipationController.Leave)
	auth.DELETE("/events/:id/participants/:userId", r.ParticipationController.RemoveParticipant)
	auth.GET("/me/events", r.ParticipationController.GetMyJoinedEvents)
}
