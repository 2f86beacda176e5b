package handlers

import (
	"context"
	"time"

	"office-panel/internal/models"
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type NoticeHandler struct {
	notices *services.NoticeService
}

func NewNoticeHandler(notices *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

type NoticeRequest struct {
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Priority        string  `json:"priority"`
	Status          string  `json:"status"`
	TargetDeviceIDs *[]uint `json:"target_device_ids"`
	// ExpiryDate is a calendar date, YYYY-MM-DD. An empty string clears it on
	// update; absent or null leaves it unchanged.
	ExpiryDate *string `json:"expiry_date"`
}

func (r NoticeRequest) input() (services.NoticeInput, error) {
	in := services.NoticeInput{
		Title:    r.Title,
		Content:  r.Content,
		Priority: r.Priority,
		Status:   r.Status,
	}
	if r.TargetDeviceIDs != nil {
		in.TargetDeviceIDs = append([]uint{}, *r.TargetDeviceIDs...)
	}
	switch {
	case r.ExpiryDate == nil:
	case *r.ExpiryDate == "":
		in.ClearExpiry = true
	default:
		d, err := time.Parse(dateLayout, *r.ExpiryDate)
		if err != nil {
			return in, err
		}
		in.ExpiryDate = &d
	}
	return in, nil
}

// ListNotices returns notices newest first, optionally filtered by ?status=
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	notices, err := h.notices.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"notices": notices})
}

// Published returns the notices currently shown on the displays
func (h *NoticeHandler) Published(c *gin.Context) {
	notices, err := h.notices.Published(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"notices": notices})
}

func (h *NoticeHandler) GetNotice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	notice, err := h.notices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, notice)
}

func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}

	notice, err := h.notices.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, notice)
}

func (h *NoticeHandler) UpdateNotice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}

	notice, err := h.notices.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, notice)
}

func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.notices.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Notice deleted successfully"})
}

func (h *NoticeHandler) Recommend(c *gin.Context) {
	h.transition(c, h.notices.Recommend)
}

func (h *NoticeHandler) Approve(c *gin.Context) {
	h.transition(c, h.notices.Approve)
}

func (h *NoticeHandler) Publish(c *gin.Context) {
	h.transition(c, h.notices.Publish)
}

func (h *NoticeHandler) transition(c *gin.Context, step func(ctx context.Context, id uint) (*models.Notice, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	notice, err := step(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, notice)
}
