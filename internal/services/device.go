package services

import (
	"context"
	"net"
	"strings"
	"time"

	"office-panel/internal/models"
	"office-panel/internal/policy"

	"gorm.io/gorm"
)

type DeviceService struct {
	db   *gorm.DB
	w    *writer
	feed *noticeFeed
}

func NewDeviceService(db *gorm.DB, w *writer, feed *noticeFeed) *DeviceService {
	return &DeviceService{db: db, w: w, feed: feed}
}

type DeviceInput struct {
	Name                string
	IPAddress           string
	LocationDescription string
	IsActive            *bool
}

func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	if err := authorize(ctx, policy.Devices, policy.Read, nil); err != nil {
		return nil, err
	}
	var devices []models.Device
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *DeviceService) Get(ctx context.Context, id uint) (*models.Device, error) {
	if err := authorize(ctx, policy.Devices, policy.Read, nil); err != nil {
		return nil, err
	}
	return findByID[models.Device](ctx, s.db, id, "device")
}

// Lookup loads a device for the public display player.
func (s *DeviceService) Lookup(ctx context.Context, id uint) (*models.Device, error) {
	return findByID[models.Device](ctx, s.db, id, "device")
}

func (s *DeviceService) Create(ctx context.Context, in DeviceInput) (*models.Device, error) {
	if err := authorize(ctx, policy.Devices, policy.Create, nil); err != nil {
		return nil, err
	}

	device := &models.Device{
		Name:                strings.TrimSpace(in.Name),
		IPAddress:           strings.TrimSpace(in.IPAddress),
		LocationDescription: in.LocationDescription,
		IsActive:            true,
	}
	if err := validateDevice(device); err != nil {
		return nil, err
	}
	if err := s.w.create(ctx, device); err != nil {
		return nil, err
	}
	if in.IsActive != nil && !*in.IsActive {
		// gorm skips false on insert in favour of the column default.
		device.IsActive = false
		if err := s.db.WithContext(ctx).Model(device).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return device, nil
}

func (s *DeviceService) Update(ctx context.Context, id uint, in DeviceInput) (*models.Device, error) {
	if err := authorize(ctx, policy.Devices, policy.Update, nil); err != nil {
		return nil, err
	}

	device, err := findByID[models.Device](ctx, s.db, id, "device")
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		device.Name = strings.TrimSpace(in.Name)
	}
	if in.IPAddress != "" {
		device.IPAddress = strings.TrimSpace(in.IPAddress)
	}
	if in.LocationDescription != "" {
		device.LocationDescription = in.LocationDescription
	}
	if in.IsActive != nil {
		device.IsActive = *in.IsActive
	}
	if err := validateDevice(device); err != nil {
		return nil, err
	}

	if err := s.w.update(ctx, device); err != nil {
		return nil, err
	}
	s.feed.invalidate(ctx)
	return device, nil
}

func (s *DeviceService) Delete(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.Devices, policy.Delete, nil); err != nil {
		return err
	}

	device, err := findByID[models.Device](ctx, s.db, id, "device")
	if err != nil {
		return err
	}

	err = s.w.delete(ctx, device, func(tx *gorm.DB) error {
		return tx.Exec("DELETE FROM notice_target_devices WHERE device_id = ?", device.ID).Error
	})
	if err != nil {
		return err
	}
	s.feed.invalidate(ctx)
	return nil
}

// Heartbeat records that the device checked in. It is a regular save, so it is
// audited as an update.
func (s *DeviceService) Heartbeat(ctx context.Context, id uint) (*models.Device, error) {
	if err := authorize(ctx, policy.Devices, policy.Heartbeat, nil); err != nil {
		return nil, err
	}

	device, err := findByID[models.Device](ctx, s.db, id, "device")
	if err != nil {
		return nil, err
	}
	now := time.Now()
	device.LastSeen = &now

	if err := s.w.update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func validateDevice(d *models.Device) error {
	if d.Name == "" {
		return invalidf("name is required")
	}
	if len([]rune(d.Name)) > 100 {
		return invalidf("name must be at most 100 characters")
	}
	if d.IPAddress != "" && net.ParseIP(d.IPAddress) == nil {
		return invalidf("invalid IP address %q", d.IPAddress)
	}
	return nil
}
