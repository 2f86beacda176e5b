package services

import (
	"context"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

type CharterService struct {
	db *gorm.DB
	w  *writer
}

func NewCharterService(db *gorm.DB, w *writer) *CharterService {
	return &CharterService{db: db, w: w}
}

type CharterInput struct {
	ServiceName        string
	RequiredDocs       string
	ServiceTime        string
	ServiceFee         string
	ResponsibleOfficer string
}

func (s *CharterService) List(ctx context.Context) ([]models.CitizenCharter, error) {
	var charters []models.CitizenCharter
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&charters).Error; err != nil {
		return nil, err
	}
	return charters, nil
}

func (s *CharterService) Get(ctx context.Context, id uint) (*models.CitizenCharter, error) {
	return findByID[models.CitizenCharter](ctx, s.db, id, "citizen charter")
}

func (s *CharterService) Create(ctx context.Context, in CharterInput) (*models.CitizenCharter, error) {
	if err := authorize(ctx, policy.Charters, policy.Create, nil); err != nil {
		return nil, err
	}

	charter := &models.CitizenCharter{CreatedByID: requestcontext.ActorID(ctx)}
	applyCharter(charter, in)
	if err := validateCharter(charter); err != nil {
		return nil, err
	}
	if err := s.w.create(ctx, charter); err != nil {
		return nil, err
	}
	return charter, nil
}

func (s *CharterService) Update(ctx context.Context, id uint, in CharterInput) (*models.CitizenCharter, error) {
	if err := authorize(ctx, policy.Charters, policy.Update, nil); err != nil {
		return nil, err
	}

	charter, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCharter(charter, in)
	if err := validateCharter(charter); err != nil {
		return nil, err
	}
	if err := s.w.update(ctx, charter); err != nil {
		return nil, err
	}
	return charter, nil
}

func (s *CharterService) Delete(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.Charters, policy.Delete, nil); err != nil {
		return err
	}

	charter, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.w.delete(ctx, charter)
}

func applyCharter(c *models.CitizenCharter, in CharterInput) {
	if v := strings.TrimSpace(in.ServiceName); v != "" {
		c.ServiceName = v
	}
	if in.RequiredDocs != "" {
		c.RequiredDocs = in.RequiredDocs
	}
	if in.ServiceTime != "" {
		c.ServiceTime = in.ServiceTime
	}
	if in.ServiceFee != "" {
		c.ServiceFee = in.ServiceFee
	}
	if in.ResponsibleOfficer != "" {
		c.ResponsibleOfficer = in.ResponsibleOfficer
	}
}

func validateCharter(c *models.CitizenCharter) error {
	if c.ServiceName == "" {
		return invalidf("service name is required")
	}
	if strings.TrimSpace(c.RequiredDocs) == "" {
		return invalidf("required documents are required")
	}
	return nil
}
