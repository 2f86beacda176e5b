package services

import (
	"context"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

type ContactService struct {
	db *gorm.DB
	w  *writer
}

func NewContactService(db *gorm.DB, w *writer) *ContactService {
	return &ContactService{db: db, w: w}
}

type ContactInput struct {
	FullName    string
	PhoneNumber string
	Position    string
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	if err := authorize(ctx, policy.Contacts, policy.Read, nil); err != nil {
		return nil, err
	}
	var contacts []models.Contact
	if err := s.db.WithContext(ctx).Order("full_name ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*models.Contact, error) {
	if err := authorize(ctx, policy.Contacts, policy.Read, nil); err != nil {
		return nil, err
	}
	return findByID[models.Contact](ctx, s.db, id, "contact")
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (*models.Contact, error) {
	if err := authorize(ctx, policy.Contacts, policy.Create, nil); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		FullName:    strings.TrimSpace(in.FullName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Position:    in.Position,
		CreatedByID: requestcontext.ActorID(ctx),
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if err := s.w.create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, id uint, in ContactInput) (*models.Contact, error) {
	contact, err := findByID[models.Contact](ctx, s.db, id, "contact")
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, policy.Contacts, policy.Update, contact.OwnerID()); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.FullName); v != "" {
		contact.FullName = v
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		contact.PhoneNumber = v
	}
	if in.Position != "" {
		contact.Position = in.Position
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if err := s.w.update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	contact, err := findByID[models.Contact](ctx, s.db, id, "contact")
	if err != nil {
		return err
	}
	if err := authorize(ctx, policy.Contacts, policy.Delete, contact.OwnerID()); err != nil {
		return err
	}
	return s.w.delete(ctx, contact)
}

func validateContact(c *models.Contact) error {
	if c.FullName == "" {
		return invalidf("full name is required")
	}
	if c.PhoneNumber == "" {
		return invalidf("phone number is required")
	}
	if len(c.PhoneNumber) > 15 {
		return invalidf("phone number must be at most 15 characters")
	}
	return nil
}
