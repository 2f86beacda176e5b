package handlers

import (
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type CharterHandler struct {
	charters *services.CharterService
}

func NewCharterHandler(charters *services.CharterService) *CharterHandler {
	return &CharterHandler{charters: charters}
}

type CharterRequest struct {
	ServiceName        string `json:"service_name"`
	RequiredDocs       string `json:"required_docs"`
	ServiceTime        string `json:"service_time"`
	ServiceFee         string `json:"service_fee"`
	ResponsibleOfficer string `json:"responsible_officer"`
}

func (r CharterRequest) input() services.CharterInput {
	return services.CharterInput(r)
}

func (h *CharterHandler) ListCharters(c *gin.Context) {
	charters, err := h.charters.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"charters": charters})
}

func (h *CharterHandler) GetCharter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	charter, err := h.charters.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, charter)
}

func (h *CharterHandler) CreateCharter(c *gin.Context) {
	var req CharterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	charter, err := h.charters.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, charter)
}

func (h *CharterHandler) UpdateCharter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CharterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	charter, err := h.charters.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, charter)
}

func (h *CharterHandler) DeleteCharter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.charters.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Citizen charter deleted successfully"})
}
