package services

import (
	"log/slog"

	"office-panel/internal/audit"
	"office-panel/internal/cache"
	"office-panel/internal/config"

	"gorm.io/gorm"
)

// Services groups every use case of the panel around one audited writer.
type Services struct {
	Auth           *AuthService
	Users          *UserService
	Devices        *DeviceService
	Notices        *NoticeService
	Galleries      *GalleryService
	Charters       *CharterService
	Contacts       *ContactService
	Tickers        *TickerService
	ActionRequests *ActionRequestService
	Reports        *ReportService
}

func New(cfg *config.Config, db *gorm.DB, observer *audit.Observer, feedCache cache.Cache, log *slog.Logger) *Services {
	w := newWriter(db, observer)
	feed := &noticeFeed{cache: feedCache, log: log.With(slog.String("component", "feed"))}

	auth := NewAuthService(cfg, db, w)
	tickers := NewTickerService(db, w)
	requests := NewActionRequestService(db, w)

	return &Services{
		Auth:           auth,
		Users:          NewUserService(db, w, auth),
		Devices:        NewDeviceService(db, w, feed),
		Notices:        NewNoticeService(db, w, feed),
		Galleries:      NewGalleryService(db, w, NewMediaStore(cfg.Media.Root, cfg.Media.MaxUploadMB)),
		Charters:       NewCharterService(db, w),
		Contacts:       NewContactService(db, w),
		Tickers:        tickers,
		ActionRequests: requests,
		Reports:        NewReportService(db, observer, tickers, requests),
	}
}
