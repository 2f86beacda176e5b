package handlers

import (
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type ActionRequestHandler struct {
	requests *services.ActionRequestService
}

func NewActionRequestHandler(requests *services.ActionRequestService) *ActionRequestHandler {
	return &ActionRequestHandler{requests: requests}
}

type CreateActionRequest struct {
	ModelName   string `json:"model_name" binding:"required"`
	ObjectID    uint   `json:"object_id" binding:"required"`
	RequestType string `json:"request_type" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// CreateRequest files an edit or delete request for an admin to act on
func (h *ActionRequestHandler) CreateRequest(c *gin.Context) {
	var req CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.requests.Create(c.Request.Context(), services.ActionRequestInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, created)
}

// ListRequests returns requests newest first, optionally filtered by ?status=
func (h *ActionRequestHandler) ListRequests(c *gin.Context) {
	requests, err := h.requests.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"requests": requests})
}

func (h *ActionRequestHandler) CompleteRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := h.requests.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, req)
}

func (h *ActionRequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.requests.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Request deleted successfully"})
}
