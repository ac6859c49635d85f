package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	provider  commerce.ProviderCode
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(provider commerce.ProviderCode) *SystemHandler {
	return &SystemHandler{
		provider:  provider,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"EasyMart Chat Backend"`
	Version   string `json:"version" example:"1.0.0"`
	Provider  string `json:"provider" example:"shopify"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including the active commerce provider
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "EasyMart Chat Backend",
		Version:   "1.0.0",
		Provider:  h.provider.String(),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	h.Success(c, info)
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	h.Success(c, response)
}
