package dto

// AccessCheckRequest captures POST /access/check payload.
type AccessCheckRequest struct {
	Resource   string `json:"resource" validate:"required"`
	Action     string `json:"action" validate:"required"`
	ResourceID string `json:"resource_id,omitempty"`
}
