package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/sis-core-api/internal/service"
	appErrors "github.com/campushq/sis-core-api/pkg/errors"
	"github.com/campushq/sis-core-api/pkg/response"
)

// PlatformHandler exposes the read-only platform report snapshot endpoints.
type PlatformHandler struct {
	service *service.PlatformService
}

// NewPlatformHandler constructs the handler.
func NewPlatformHandler(svc *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{service: svc}
}

func (h *PlatformHandler) available(c *gin.Context) bool {
	if h.service.Enabled() {
		return true
	}
	response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "platform reports are disabled"))
	return false
}

// OLAP godoc
// @Summary Warehouse report snapshot
// @Tags Platform
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /platform/olap [get]
func (h *PlatformHandler) OLAP(c *gin.Context) {
	if !h.available(c) {
		return
	}
	response.JSON(c, http.StatusOK, h.service.OLAPSnapshot(), nil)
}

// AIOps godoc
// @Summary Automation report snapshot
// @Tags Platform
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /platform/aiops [get]
func (h *PlatformHandler) AIOps(c *gin.Context) {
	if !h.available(c) {
		return
	}
	response.JSON(c, http.StatusOK, h.service.AIOpsSnapshot(), nil)
}

// Quantum godoc
// @Summary Key management profile snapshot
// @Tags Platform
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /platform/quantum [get]
func (h *PlatformHandler) Quantum(c *gin.Context) {
	if !h.available(c) {
		return
	}
	response.JSON(c, http.StatusOK, h.service.QuantumSnapshot(), nil)
}

// ZeroTrust godoc
// @Summary Access posture snapshot
// @Tags Platform
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /platform/zero-trust [get]
func (h *PlatformHandler) ZeroTrust(c *gin.Context) {
	if !h.available(c) {
		return
	}
	response.JSON(c, http.StatusOK, h.service.ZeroTrustSnapshot(), nil)
}

// SystemMetrics godoc
// @Summary Instrumentation snapshot
// @Tags Platform
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /platform/system [get]
func (h *PlatformHandler) SystemMetrics(c *gin.Context) {
	if !h.available(c) {
		return
	}
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}
