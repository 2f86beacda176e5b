// Package audit records who changed what. The persistence write path calls the
// Observer after every successful create, update or delete; the Observer decides
// whether the entity is watched, appends an AuditLog row and fires the
// notice_published webhook for published notices.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"office-panel/internal/metrics"
	"office-panel/internal/models"
	"office-panel/internal/requestcontext"
	"office-panel/internal/webhook"

	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 200
)

// Entity is implemented by every model the observer can describe.
type Entity interface {
	AuditLabel() string
	AuditID() uint
	String() string
}

type Observer struct {
	db       *gorm.DB
	notifier *webhook.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewObserver(db *gorm.DB, notifier *webhook.Notifier, log *slog.Logger) *Observer {
	return &Observer{
		db:       db,
		notifier: notifier,
		log:      log.With(slog.String("component", "audit")),
		now:      time.Now,
	}
}

func watchedOnSave(entity any) bool {
	switch entity.(type) {
	case *models.User, *models.Device, *models.Notice, *models.Gallery, *models.CitizenCharter:
		return true
	}
	return false
}

func watchedOnDelete(entity any) bool {
	switch entity.(type) {
	case *models.Notice, *models.Device:
		return true
	}
	return false
}

// Saved must be called once after entity was durably created or updated.
func (o *Observer) Saved(ctx context.Context, entity any, created bool) {
	if !watchedOnSave(entity) {
		return
	}
	e := entity.(Entity)

	action := models.ActionUpdated
	if created {
		action = models.ActionCreated
	}
	o.record(ctx, e, action)

	if notice, ok := entity.(*models.Notice); ok && notice.Status == models.NoticeStatusPublished {
		o.notifyPublished(ctx, notice)
	}
}

// Deleted must be called once after entity was removed from the store.
func (o *Observer) Deleted(ctx context.Context, entity any) {
	if !watchedOnDelete(entity) {
		return
	}
	o.record(ctx, entity.(Entity), models.ActionDeleted)
}

func (o *Observer) record(ctx context.Context, e Entity, action string) {
	label := e.AuditLabel()
	entry := models.AuditLog{
		UserID:    requestcontext.ActorID(ctx),
		Action:    action,
		ModelName: label,
		ObjectID:  strconv.FormatUint(uint64(e.AuditID()), 10),
		Details:   fmt.Sprintf("%s %s: %s", label, action, e.String()),
		IPAddress: requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: o.now(),
	}

	// The mutation is already committed; a cancelled request must not lose its row.
	if err := o.db.WithContext(context.WithoutCancel(ctx)).Create(&entry).Error; err != nil {
		metrics.AuditFailuresTotal.Inc()
		o.log.Error("failed to write audit log",
			slog.String("action", action),
			slog.String("model", label),
			slog.String("object_id", entry.ObjectID),
			slog.String("request_id", entry.RequestID),
			slog.Any("error", err),
		)
		return
	}
	metrics.AuditEntriesTotal.WithLabelValues(action, label).Inc()
}

func (o *Observer) notifyPublished(ctx context.Context, notice *models.Notice) {
	if !o.notifier.Enabled() {
		return
	}
	if err := o.notifier.NoticePublished(ctx, notice); err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
		o.log.Warn("notice_published webhook failed",
			slog.Uint64("notice_id", uint64(notice.ID)),
			slog.String("request_id", requestcontext.RequestID(ctx)),
			slog.Any("error", err),
		)
		return
	}
	metrics.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
}

// Recent returns the newest audit rows first, with their users preloaded.
func (o *Observer) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var logs []models.AuditLog
	err := o.db.WithContext(ctx).
		Preload("User").
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audit logs: %w", err)
	}
	return logs, nil
}
