package services

import (
	"context"
	"fmt"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

// requestTargets maps the model names an action request may point at to a loader
// returning the target's display title.
var requestTargets = map[string]func(ctx context.Context, db *gorm.DB, id uint) (string, error){
	"Notice": func(ctx context.Context, db *gorm.DB, id uint) (string, error) {
		n, err := findByID[models.Notice](ctx, db, id, "notice")
		if err != nil {
			return "", err
		}
		return n.String(), nil
	},
	"Contact": func(ctx context.Context, db *gorm.DB, id uint) (string, error) {
		c, err := findByID[models.Contact](ctx, db, id, "contact")
		if err != nil {
			return "", err
		}
		return c.String(), nil
	},
	"Gallery": func(ctx context.Context, db *gorm.DB, id uint) (string, error) {
		g, err := findByID[models.Gallery](ctx, db, id, "gallery")
		if err != nil {
			return "", err
		}
		return g.String(), nil
	},
	"CitizenCharter": func(ctx context.Context, db *gorm.DB, id uint) (string, error) {
		c, err := findByID[models.CitizenCharter](ctx, db, id, "citizen charter")
		if err != nil {
			return "", err
		}
		return c.String(), nil
	},
}

type ActionRequestService struct {
	db *gorm.DB
	w  *writer
}

func NewActionRequestService(db *gorm.DB, w *writer) *ActionRequestService {
	return &ActionRequestService{db: db, w: w}
}

type ActionRequestInput struct {
	ModelName   string
	ObjectID    uint
	RequestType string
	Reason      string
}

// Create files a request against an existing record, capturing its current title.
func (s *ActionRequestService) Create(ctx context.Context, in ActionRequestInput) (*models.ActionRequest, error) {
	if err := authorize(ctx, policy.ActionRequests, policy.Create, nil); err != nil {
		return nil, err
	}
	actor := requestcontext.Actor(ctx)

	load, ok := requestTargets[in.ModelName]
	if !ok {
		return nil, invalidf("unsupported model %q", in.ModelName)
	}
	if in.RequestType != models.RequestTypeEdit && in.RequestType != models.RequestTypeDelete {
		return nil, invalidf("request type must be %s or %s", models.RequestTypeEdit, models.RequestTypeDelete)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, invalidf("reason is required")
	}

	title, err := load(ctx, s.db, in.ObjectID)
	if err != nil {
		return nil, err
	}
	if runes := []rune(title); len(runes) > 255 {
		title = string(runes[:255])
	}

	req := &models.ActionRequest{
		UserID:      actor.ID,
		ModelName:   in.ModelName,
		ObjectID:    in.ObjectID,
		ObjectTitle: title,
		RequestType: in.RequestType,
		Reason:      reason,
		Status:      models.RequestStatusPending,
	}
	if err := s.w.create(ctx, req); err != nil {
		return nil, err
	}
	req.User = actor
	return req, nil
}

// List returns requests newest first, optionally filtered by status.
func (s *ActionRequestService) List(ctx context.Context, status string) ([]models.ActionRequest, error) {
	if err := authorize(ctx, policy.ActionRequests, policy.Read, nil); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Preload("User").Order("created_at DESC").Order("id DESC")
	if status != "" {
		if status != models.RequestStatusPending && status != models.RequestStatusCompleted {
			return nil, invalidf("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}

	var requests []models.ActionRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Complete marks a request as handled. The requested change itself is applied
// by the admin through the regular endpoints.
func (s *ActionRequestService) Complete(ctx context.Context, id uint) (*models.ActionRequest, error) {
	if err := authorize(ctx, policy.ActionRequests, policy.Complete, nil); err != nil {
		return nil, err
	}

	req, err := findByID[models.ActionRequest](ctx, s.db, id, "action request", "User")
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestStatusCompleted {
		return req, nil
	}
	req.Status = models.RequestStatusCompleted
	if err := s.w.update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *ActionRequestService) Delete(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.ActionRequests, policy.Delete, nil); err != nil {
		return err
	}

	req, err := findByID[models.ActionRequest](ctx, s.db, id, "action request")
	if err != nil {
		return err
	}
	return s.w.delete(ctx, req)
}

func (s *ActionRequestService) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ActionRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}
