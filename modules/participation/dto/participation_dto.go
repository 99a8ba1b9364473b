package dto

import (
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation/entity"

	"github.com/google/uuid"
)

type ParticipantResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

func ToParticipantResponse(p *entity.Participation) *ParticipantResponse {
	return &ParticipantResponse{
		UserID:   p.UserID,
		Status:   string(p.Status),
		JoinedAt: p.JoinedAt,
	}
}
