package dto

type MarkAsReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}
