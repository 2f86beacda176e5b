package services

import (
	"context"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"

	"gorm.io/gorm"
)

type UserService struct {
	db   *gorm.DB
	w    *writer
	auth *AuthService
}

func NewUserService(db *gorm.DB, w *writer, auth *AuthService) *UserService {
	return &UserService{db: db, w: w, auth: auth}
}

type UserInput struct {
	Username    string
	Password    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        string
	IsSuperuser *bool
	IsActive    *bool
}

// GetUsers returns all users
func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	if err := authorize(ctx, policy.Users, policy.Read, nil); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a specific user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if err := authorize(ctx, policy.Users, policy.Read, nil); err != nil {
		return nil, err
	}
	return findByID[models.User](ctx, s.db, id, "user")
}

// CreateUser creates a new user
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := authorize(ctx, policy.Users, policy.Create, nil); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}
	if err := s.auth.createUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser updates user information (except password)
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	if err := authorize(ctx, policy.Users, policy.Update, nil); err != nil {
		return nil, err
	}

	user, err := findByID[models.User](ctx, s.db, id, "user")
	if err != nil {
		return nil, err
	}
	wasActiveAdmin := isActiveAdmin(user)

	// Check if username is taken by another user
	username := strings.TrimSpace(in.Username)
	if username != "" && username != user.Username {
		var taken int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ? AND id != ?", username, id).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, conflictf("user %s already exists", username)
		}
		user.Username = username
	}

	if in.Role != "" {
		if !models.IsValidRole(in.Role) {
			return nil, invalidf("unknown role %q", in.Role)
		}
		user.Role = in.Role
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.PhoneNumber != "" {
		user.PhoneNumber = in.PhoneNumber
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	// Demoting or deactivating the last active admin would lock everyone out.
	if wasActiveAdmin && !isActiveAdmin(user) {
		if err := s.ensureAnotherAdmin(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.w.update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword sets a user's password without checking the old one
func (s *UserService) UpdatePassword(ctx context.Context, id uint, newPassword string) error {
	if err := authorize(ctx, policy.Users, policy.Update, nil); err != nil {
		return err
	}

	user, err := findByID[models.User](ctx, s.db, id, "user")
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return invalidf("password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	return s.w.update(ctx, user)
}

// DeleteUser deletes a user. Records the user created or reviewed keep existing
// with the reference cleared; their sessions and action requests go with them.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.Users, policy.Delete, nil); err != nil {
		return err
	}

	user, err := findByID[models.User](ctx, s.db, id, "user")
	if err != nil {
		return err
	}

	if isActiveAdmin(user) {
		if err := s.ensureAnotherAdmin(ctx, user.ID); err != nil {
			return err
		}
	}

	return s.w.delete(ctx, user, func(tx *gorm.DB) error {
		return detachUser(tx, user.ID)
	})
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context, id uint) error {
	var adminCount int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id != ?", models.RoleAdmin, true, id).
		Count(&adminCount).Error
	if err != nil {
		return err
	}
	if adminCount == 0 {
		return ErrLastAdmin
	}
	return nil
}

func isActiveAdmin(u *models.User) bool {
	return u.Role == models.RoleAdmin && u.IsActive
}

// detachUser clears every reference to a user that must survive the user.
func detachUser(tx *gorm.DB, userID uint) error {
	nullable := []struct {
		model  any
		column string
	}{
		{&models.Notice{}, "created_by_id"},
		{&models.Notice{}, "recommended_by_id"},
		{&models.Notice{}, "approved_by_id"},
		{&models.Gallery{}, "created_by_id"},
		{&models.CitizenCharter{}, "created_by_id"},
		{&models.Contact{}, "created_by_id"},
		{&models.TickerMessage{}, "created_by_id"},
		{&models.AuditLog{}, "user_id"},
	}
	for _, ref := range nullable {
		err := tx.Model(ref.model).Where(ref.column+" = ?", userID).Update(ref.column, nil).Error
		if err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.ActionRequest{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
