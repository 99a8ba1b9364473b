package router

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/controller"

	"github.com/labstack/echo/v4"
)

type ModerationRouter struct {
	ModerationController *controller.ModerationController
}

func NewModerationRouter(moderationController *controller.ModerationController) *ModerationRouter {
	return &ModerationRouter{ModerationController: moderationController}
}

func (r *ModerationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	auth := v1.Group("", mw.AuthMiddleware())
	auth.GET("/me/block", r.ModerationController.GetMyBlock)
	auth.POST("/me/block/self-unblock", r.ModerationController.SelfUnblock)
	auth.POST("/me/appeals", r.ModerationController.SubmitAppeal)
	auth.GET("/me/appeals", r.ModerationController.GetMyAppeals)

	admin := v1.Group("/admin", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.GET("/blocks", r.ModerationController.ListBlocks)
	admin.POST("/blocks/:userId", r.ModerationController.BlockUser)
	admin.DELETE("/blocks/:userId", r.ModerationController.UnblockUser)
	admin.GET("/appeals", r.ModerationController.ListPendingAppeals)
	admin.POST("/appeals/:id/resolve", r.ModerationController.ResolveAppeal)
}
