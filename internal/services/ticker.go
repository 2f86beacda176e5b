package services

import (
	"context"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

type TickerService struct {
	db *gorm.DB
	w  *writer
}

func NewTickerService(db *gorm.DB, w *writer) *TickerService {
	return &TickerService{db: db, w: w}
}

type TickerInput struct {
	Content  string
	IsActive *bool
	Order    *uint
}

func tickerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("created_at DESC")
}

// Active returns the tickers shown on the displays.
func (s *TickerService) Active(ctx context.Context) ([]models.TickerMessage, error) {
	var tickers []models.TickerMessage
	err := s.db.WithContext(ctx).Scopes(tickerOrder).Where("is_active = ?", true).Find(&tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

// All returns every ticker, including inactive ones.
func (s *TickerService) All(ctx context.Context, limit int) ([]models.TickerMessage, error) {
	if err := authorize(ctx, policy.Tickers, policy.ReadAll, nil); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(tickerOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var tickers []models.TickerMessage
	if err := q.Find(&tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

func (s *TickerService) Get(ctx context.Context, id uint) (*models.TickerMessage, error) {
	return findByID[models.TickerMessage](ctx, s.db, id, "ticker")
}

func (s *TickerService) Create(ctx context.Context, in TickerInput) (*models.TickerMessage, error) {
	if err := authorize(ctx, policy.Tickers, policy.Create, nil); err != nil {
		return nil, err
	}

	ticker := &models.TickerMessage{
		Content:     strings.TrimSpace(in.Content),
		IsActive:    true,
		CreatedByID: requestcontext.ActorID(ctx),
	}
	if in.Order != nil {
		ticker.Order = *in.Order
	}
	if ticker.Content == "" {
		return nil, invalidf("content is required")
	}
	if err := s.w.create(ctx, ticker); err != nil {
		return nil, err
	}
	if in.IsActive != nil && !*in.IsActive {
		ticker.IsActive = false
		if err := s.db.WithContext(ctx).Model(ticker).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return ticker, nil
}

// Update edits a ticker. Allowed for admins and the ticker's creator.
func (s *TickerService) Update(ctx context.Context, id uint, in TickerInput) (*models.TickerMessage, error) {
	ticker, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, policy.Tickers, policy.Update, ticker.OwnerID()); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.Content); v != "" {
		ticker.Content = v
	}
	if in.IsActive != nil {
		ticker.IsActive = *in.IsActive
	}
	if in.Order != nil {
		ticker.Order = *in.Order
	}
	if err := s.w.update(ctx, ticker); err != nil {
		return nil, err
	}
	return ticker, nil
}

func (s *TickerService) Delete(ctx context.Context, id uint) error {
	ticker, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, policy.Tickers, policy.Delete, ticker.OwnerID()); err != nil {
		return err
	}
	return s.w.delete(ctx, ticker)
}
