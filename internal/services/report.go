package services

import (
	"context"
	"time"

	"office-panel/internal/audit"
	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

const recentTickerCount = 8

type ReportService struct {
	db       *gorm.DB
	observer *audit.Observer
	tickers  *TickerService
	requests *ActionRequestService
	now      func() time.Time
}

func NewReportService(db *gorm.DB, observer *audit.Observer, tickers *TickerService, requests *ActionRequestService) *ReportService {
	return &ReportService{db: db, observer: observer, tickers: tickers, requests: requests, now: time.Now}
}

type Dashboard struct {
	TodayNoticesCount    int64                  `json:"today_notices_count"`
	ActiveDevicesCount   int64                  `json:"active_devices_count"`
	PendingApprovalCount int64                  `json:"pending_approval_count"`
	RecentTickers        []models.TickerMessage `json:"recent_tickers"`
	PendingRequestsCount *int64                 `json:"pending_requests_count,omitempty"`
}

type Report struct {
	TotalNotices     int64             `json:"total_notices"`
	PublishedNotices int64             `json:"published_notices"`
	DraftNotices     int64             `json:"draft_notices"`
	ExpiredNotices   int64             `json:"expired_notices"`
	TotalContacts    int64             `json:"total_contacts"`
	TotalGalleries   int64             `json:"total_gallery"`
	TotalCharters    int64             `json:"total_charters"`
	TotalDevices     int64             `json:"total_devices"`
	RecentLogs       []models.AuditLog `json:"recent_logs"`
}

// Dashboard summarises today's activity for the signed in user.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := authorize(ctx, policy.Dashboard, policy.Read, nil); err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	d := &Dashboard{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Notice{}).
		Where("status = ? AND published_date >= ? AND published_date < ?", models.NoticeStatusPublished, startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&d.TodayNoticesCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Device{}).Where("is_active = ?", true).Count(&d.ActiveDevicesCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Notice{}).Where("status = ?", models.NoticeStatusRecommended).Count(&d.PendingApprovalCount).Error; err != nil {
		return nil, err
	}

	tickers, err := s.tickers.All(ctx, recentTickerCount)
	if err != nil {
		return nil, err
	}
	d.RecentTickers = tickers

	if policy.IsPrivileged(requestcontext.Actor(ctx)) {
		pending, err := s.requests.PendingCount(ctx)
		if err != nil {
			return nil, err
		}
		d.PendingRequestsCount = &pending
	}

	return d, nil
}

// Report returns record totals and the latest audit trail for admins.
func (s *ReportService) Report(ctx context.Context) (*Report, error) {
	if err := authorize(ctx, policy.Reports, policy.Read, nil); err != nil {
		return nil, err
	}

	r := &Report{}
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		model any
		where []any
	}{
		{&r.TotalNotices, &models.Notice{}, nil},
		{&r.PublishedNotices, &models.Notice{}, []any{"status = ?", models.NoticeStatusPublished}},
		{&r.DraftNotices, &models.Notice{}, []any{"status = ?", models.NoticeStatusDraft}},
		{&r.ExpiredNotices, &models.Notice{}, []any{"status = ?", models.NoticeStatusExpired}},
		{&r.TotalContacts, &models.Contact{}, nil},
		{&r.TotalGalleries, &models.Gallery{}, nil},
		{&r.TotalCharters, &models.CitizenCharter{}, nil},
		{&r.TotalDevices, &models.Device{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	logs, err := s.observer.Recent(ctx, audit.DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	r.RecentLogs = logs

	return r, nil
}

// AuditLogs returns the newest audit rows, capped by the observer.
func (s *ReportService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if err := authorize(ctx, policy.AuditLogs, policy.Read, nil); err != nil {
		return nil, err
	}
	return s.observer.Recent(ctx, limit)
}
