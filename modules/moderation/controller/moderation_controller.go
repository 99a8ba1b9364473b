package controller

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/utils"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/dto"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ModerationController struct {
	controller.BaseController
	service service.ModerationServiceInterface
	clock   clock.Clock
}

func NewModerationController(service service.ModerationServiceInterface, clk clock.Clock) *ModerationController {
	return &ModerationController{
		BaseController: controller.NewBaseController(),
		service:        service,
		clock:          clk,
	}
}

func (c *ModerationController) GetUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get("token_data")
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Token data not found in context", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data format", nil)
	}
	return claims.UserID, nil
}

// GetMyBlock returns the caller's active block, including the expiry flag
// the self-unblock button keys off.
func (c *ModerationController) GetMyBlock(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	block, appErr := c.service.GetMyBlock(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToBlockResponse(block, c.clock.Now()), "Block retrieved")
}

func (c *ModerationController) SelfUnblock(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	if appErr := c.service.SelfUnblock(ctx.Request().Context(), userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Unblocked")
}

func (c *ModerationController) SubmitAppeal(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := &dto.SubmitAppealRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	appeal, appErr := c.service.SubmitAppeal(ctx.Request().Context(), userID, req.Reason)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appeal, "Appeal submitted")
}

func (c *ModerationController) GetMyAppeals(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	appeals, appErr := c.service.GetMyAppeals(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appeals, "Appeals retrieved")
}

// Admin endpoints.

func (c *ModerationController) BlockUser(ctx echo.Context) error {
	targetID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid user ID")
	}

	req := &dto.BlockUserRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	block, appErr := c.service.Block(ctx.Request().Context(), targetID, req.Reason, req.Until)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToBlockResponse(block, c.clock.Now()), "User blocked")
}

func (c *ModerationController) UnblockUser(ctx echo.Context) error {
	moderatorID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	targetID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid user ID")
	}

	req := &dto.UnblockUserRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	if appErr := c.service.Unblock(ctx.Request().Context(), targetID, moderatorID.String(), req.Reason); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "User unblocked")
}

func (c *ModerationController) ListBlocks(ctx echo.Context) error {
	activeOnly := ctx.QueryParam("active") == "true"

	blocks, appErr := c.service.ListBlocks(ctx.Request().Context(), activeOnly)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	now := c.clock.Now()
	resp := make([]dto.BlockResponse, 0, len(blocks))
	for i := range blocks {
		resp = append(resp, *dto.ToBlockResponse(&blocks[i], now))
	}
	return c.SuccessResponse(ctx, resp, "Blocks retrieved")
}

func (c *ModerationController) ListPendingAppeals(ctx echo.Context) error {
	appeals, appErr := c.service.ListPendingAppeals(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appeals, "Appeals retrieved")
}

func (c *ModerationController) ResolveAppeal(ctx echo.Context) error {
	moderatorID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	appealID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid appeal ID")
	}

	req := &dto.ResolveAppealRequest{}
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	appeal, appErr := c.service.ResolveAppeal(ctx.Request().Context(), appealID, moderatorID, req.Approve)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, appeal, "Appeal resolved")
}
