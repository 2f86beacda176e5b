package handlers

import (
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	devices *services.DeviceService
	notices *services.NoticeService
}

func NewDeviceHandler(devices *services.DeviceService, notices *services.NoticeService) *DeviceHandler {
	return &DeviceHandler{devices: devices, notices: notices}
}

type DeviceRequest struct {
	Name                string `json:"name"`
	IPAddress           string `json:"ip_address"`
	LocationDescription string `json:"location_description"`
	IsActive            *bool  `json:"is_active"`
}

func (r DeviceRequest) input() services.DeviceInput {
	return services.DeviceInput{
		Name:                r.Name,
		IPAddress:           r.IPAddress,
		LocationDescription: r.LocationDescription,
		IsActive:            r.IsActive,
	}
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.devices.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"devices": devices})
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	device, err := h.devices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, device)
}

func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	device, err := h.devices.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, device)
}

func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	device, err := h.devices.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, device)
}

func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.devices.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Device deleted successfully"})
}

// Heartbeat is called periodically by a display player
func (h *DeviceHandler) Heartbeat(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.devices.Heartbeat(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "active"})
}

// Display returns what a player should show: the device and its notices
func (h *DeviceHandler) Display(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	device, err := h.devices.Lookup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !device.IsActive {
		c.JSON(404, gin.H{"error": "device is not active"})
		return
	}

	notices, err := h.notices.ForDevice(c.Request.Context(), device.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"device": device, "notices": notices})
}
