package controller

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/utils"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/dto"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ParticipationController struct {
	controller.BaseController
	service service.AdmissionServiceInterface
}

func NewParticipationController(service service.AdmissionServiceInterface) *ParticipationController {
	return &ParticipationController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *ParticipationController) GetUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

func (c *ParticipationController) Join(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	if appErr := c.service.Join(ctx.Request().Context(), eventID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Joined event")
}

func (c *ParticipationController) Leave(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	if appErr := c.service.Leave(ctx.Request().Context(), eventID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Left event")
}

func (c *ParticipationController) RemoveParticipant(ctx echo.Context) error {
	organizerID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}
	targetID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid user ID")
	}

	if appErr := c.service.RemoveParticipant(ctx.Request().Context(), eventID, organizerID, targetID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Participant removed")
}

func (c *ParticipationController) ListParticipants(ctx echo.Context) error {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	participants, appErr := c.service.ListParticipants(ctx.Request().Context(), eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		resp = append(resp, *dto.ToParticipantResponse(&participants[i]))
	}
	return c.SuccessResponse(ctx, resp, "Participants retrieved")
}

func (c *ParticipationController) GetMyJoinedEvents(ctx echo.Context) error {
	userID, err := c.GetUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	events, appErr := c.service.GetMyJoinedEvents(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, events, "Joined events retrieved")
}
