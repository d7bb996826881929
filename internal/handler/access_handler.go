package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/sis-core-api/internal/dto"
	"github.com/campushq/sis-core-api/internal/service"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/response"
)

// AccessHandler exposes the permission check endpoint.
type AccessHandler struct {
	service  *service.AccessService
	platform *service.PlatformService
}

// NewAccessHandler constructs the handler. The platform service is optional.
func NewAccessHandler(svc *service.AccessService, platform *service.PlatformService) *AccessHandler {
	return &AccessHandler{service: svc, platform: platform}
}

// Check godoc
// @Summary Evaluate an access request
// @Description Returns the decision for the authenticated user against a resource/action pair
// @Tags Access
// @Accept json
// @Produce json
// @Param payload body dto.AccessCheckRequest true "Access check payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /access/check [post]
func (h *AccessHandler) Check(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid access check payload"))
		return
	}

	decision, err := h.service.Check(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.platform.RecordAccessDecision(decision.Granted)

	response.JSON(c, http.StatusOK, decision, nil)
}
