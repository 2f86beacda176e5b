package services

import (
	"context"
	"strings"
	"time"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

type NoticeService struct {
	db   *gorm.DB
	w    *writer
	feed *noticeFeed
	now  func() time.Time
}

func NewNoticeService(db *gorm.DB, w *writer, feed *noticeFeed) *NoticeService {
	return &NoticeService{db: db, w: w, feed: feed, now: time.Now}
}

type NoticeInput struct {
	Title    string
	Content  string
	Priority string
	Status   string
	// TargetDeviceIDs replaces the target set when non-nil.
	TargetDeviceIDs []uint
	ExpiryDate      *time.Time
	// ClearExpiry removes the expiry date on update; it wins over ExpiryDate.
	ClearExpiry bool
}

// DateOnly truncates t to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *NoticeService) List(ctx context.Context, status string) ([]models.Notice, error) {
	if err := authorize(ctx, policy.Notices, policy.Read, nil); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Preload("TargetDevices").Order("created_at DESC")
	if status != "" {
		if !models.IsValidNoticeStatus(status) {
			return nil, invalidf("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}

	var notices []models.Notice
	if err := q.Find(&notices).Error; err != nil {
		return nil, err
	}
	return notices, nil
}

func (s *NoticeService) Get(ctx context.Context, id uint) (*models.Notice, error) {
	if err := authorize(ctx, policy.Notices, policy.Read, nil); err != nil {
		return nil, err
	}
	return findByID[models.Notice](ctx, s.db, id, "notice", "TargetDevices")
}

// Published returns the notices players should show today, newest publication first.
func (s *NoticeService) Published(ctx context.Context) ([]models.Notice, error) {
	if notices, ok := s.feed.get(ctx); ok {
		return notices, nil
	}

	gen := s.feed.generation()
	notices, err := s.publishedQuery(ctx, s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	s.feed.set(ctx, gen, notices)
	return notices, nil
}

func (s *NoticeService) publishedQuery(ctx context.Context, q *gorm.DB) ([]models.Notice, error) {
	today := DateOnly(s.now())
	var notices []models.Notice
	err := q.Preload("TargetDevices").
		Where("status = ?", models.NoticeStatusPublished).
		Where("expiry_date IS NULL OR expiry_date >= ?", today).
		Order("published_date DESC").
		Find(&notices).Error
	if err != nil {
		return nil, err
	}
	return notices, nil
}

func (s *NoticeService) Create(ctx context.Context, in NoticeInput) (*models.Notice, error) {
	if err := authorize(ctx, policy.Notices, policy.Create, nil); err != nil {
		return nil, err
	}

	notice := &models.Notice{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedByID: requestcontext.ActorID(ctx),
	}
	if notice.Priority == "" {
		notice.Priority = models.PriorityNormal
	}
	if notice.Status == "" {
		notice.Status = models.NoticeStatusDraft
	}
	// Staff start at draft and go through the workflow.
	if notice.Status != models.NoticeStatusDraft && !policy.IsPrivileged(requestcontext.Actor(ctx)) {
		return nil, policy.ErrForbidden
	}
	if in.ExpiryDate != nil {
		d := DateOnly(*in.ExpiryDate)
		notice.ExpiryDate = &d
	}
	if err := validateNotice(notice); err != nil {
		return nil, err
	}

	var steps []txStep
	if in.TargetDeviceIDs != nil {
		steps = append(steps, replaceTargets(notice, in.TargetDeviceIDs))
	}
	if err := s.w.create(ctx, notice, steps...); err != nil {
		return nil, err
	}
	s.feed.invalidate(ctx)
	return s.reload(ctx, notice.ID)
}

func (s *NoticeService) Update(ctx context.Context, id uint, in NoticeInput) (*models.Notice, error) {
	if err := authorize(ctx, policy.Notices, policy.Update, nil); err != nil {
		return nil, err
	}

	notice, err := findByID[models.Notice](ctx, s.db, id, "notice")
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		notice.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		notice.Content = in.Content
	}
	if in.Priority != "" {
		notice.Priority = in.Priority
	}
	if in.Status != "" {
		notice.Status = in.Status
	}
	switch {
	case in.ClearExpiry:
		notice.ExpiryDate = nil
	case in.ExpiryDate != nil:
		d := DateOnly(*in.ExpiryDate)
		notice.ExpiryDate = &d
	}
	if err := validateNotice(notice); err != nil {
		return nil, err
	}

	var steps []txStep
	if in.TargetDeviceIDs != nil {
		steps = append(steps, replaceTargets(notice, in.TargetDeviceIDs))
	}
	if err := s.w.update(ctx, notice, steps...); err != nil {
		return nil, err
	}
	s.feed.invalidate(ctx)
	return s.reload(ctx, notice.ID)
}

func (s *NoticeService) Delete(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.Notices, policy.Delete, nil); err != nil {
		return err
	}

	notice, err := findByID[models.Notice](ctx, s.db, id, "notice")
	if err != nil {
		return err
	}

	err = s.w.delete(ctx, notice, func(tx *gorm.DB) error {
		return tx.Model(notice).Association("TargetDevices").Clear()
	})
	if err != nil {
		return err
	}
	s.feed.invalidate(ctx)
	return nil
}

// Recommend moves a draft to recommended and records the recommender.
func (s *NoticeService) Recommend(ctx context.Context, id uint) (*models.Notice, error) {
	return s.transition(ctx, id, policy.Recommend, models.NoticeStatusDraft, models.NoticeStatusRecommended,
		func(n *models.Notice, actorID *uint) { n.RecommendedByID = actorID })
}

// Approve moves a recommended notice to approved and records the approver.
func (s *NoticeService) Approve(ctx context.Context, id uint) (*models.Notice, error) {
	return s.transition(ctx, id, policy.Approve, models.NoticeStatusRecommended, models.NoticeStatusApproved,
		func(n *models.Notice, actorID *uint) { n.ApprovedByID = actorID })
}

// Publish moves an approved notice to published; the model hook stamps the date.
func (s *NoticeService) Publish(ctx context.Context, id uint) (*models.Notice, error) {
	return s.transition(ctx, id, policy.Publish, models.NoticeStatusApproved, models.NoticeStatusPublished, nil)
}

func (s *NoticeService) transition(ctx context.Context, id uint, op policy.Operation, from, to string, stamp func(*models.Notice, *uint)) (*models.Notice, error) {
	if err := authorize(ctx, policy.Notices, op, nil); err != nil {
		return nil, err
	}

	notice, err := findByID[models.Notice](ctx, s.db, id, "notice")
	if err != nil {
		return nil, err
	}
	if notice.Status != from {
		return nil, conflictf("notice is %s, expected %s", notice.Status, from)
	}

	notice.Status = to
	if stamp != nil {
		stamp(notice, requestcontext.ActorID(ctx))
	}
	if err := s.w.update(ctx, notice); err != nil {
		return nil, err
	}
	s.feed.invalidate(ctx)
	return s.reload(ctx, notice.ID)
}

// ExpireDue marks published notices whose expiry date has passed as expired.
// It runs without an actor, so the audit rows it produces are unattributed.
func (s *NoticeService) ExpireDue(ctx context.Context) (int, error) {
	today := DateOnly(s.now())

	var due []models.Notice
	err := s.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", models.NoticeStatusPublished, today).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		due[i].Status = models.NoticeStatusExpired
		if err := s.w.update(ctx, &due[i]); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.feed.invalidate(ctx)
	}
	return expired, nil
}

// ForDevice returns today's published notices that target the device or target no
// device at all.
func (s *NoticeService) ForDevice(ctx context.Context, deviceID uint) ([]models.Notice, error) {
	published, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.Notice
	for _, n := range published {
		if len(n.TargetDevices) == 0 {
			out = append(out, n)
			continue
		}
		for _, d := range n.TargetDevices {
			if d.ID == deviceID {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (s *NoticeService) reload(ctx context.Context, id uint) (*models.Notice, error) {
	return findByID[models.Notice](ctx, s.db, id, "notice", "TargetDevices")
}

func validateNotice(n *models.Notice) error {
	if n.Title == "" {
		return invalidf("title is required")
	}
	if len([]rune(n.Title)) > 255 {
		return invalidf("title must be at most 255 characters")
	}
	if strings.TrimSpace(n.Content) == "" {
		return invalidf("content is required")
	}
	if !models.IsValidPriority(n.Priority) {
		return invalidf("unknown priority %q", n.Priority)
	}
	if !models.IsValidNoticeStatus(n.Status) {
		return invalidf("unknown status %q", n.Status)
	}
	return nil
}

func replaceTargets(notice *models.Notice, deviceIDs []uint) txStep {
	return func(tx *gorm.DB) error {
		if len(deviceIDs) == 0 {
			return tx.Model(notice).Association("TargetDevices").Clear()
		}

		var devices []models.Device
		if err := tx.Where("id IN ?", deviceIDs).Find(&devices).Error; err != nil {
			return err
		}
		if len(devices) != len(uniqueIDs(deviceIDs)) {
			return invalidf("unknown target device")
		}
		return tx.Model(notice).Association("TargetDevices").Replace(devices)
	}
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
