package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"office-panel/internal/config"
	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	cfg *config.Config
	db  *gorm.DB
	w   *writer
}

func NewAuthService(cfg *config.Config, db *gorm.DB, w *writer) *AuthService {
	return &AuthService{cfg: cfg, db: db, w: w}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// createUser inserts a user after checking the username is free.
func (s *AuthService) createUser(ctx context.Context, user *models.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return invalidf("username is required")
	}
	if len(password) < minPasswordLength {
		return invalidf("password must be at least %d characters", minPasswordLength)
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !models.IsValidRole(user.Role) {
		return invalidf("unknown role %q", user.Role)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return conflictf("user %s already exists", user.Username)
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	user.IsActive = true

	return s.w.create(ctx, user)
}

// Authenticate verifies credentials and returns the user
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !s.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// CreateDefaultUser creates the default admin user if the user table is empty
func (s *AuthService) CreateDefaultUser(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	role := s.cfg.DefaultUser.Role
	if role == "" {
		role = models.RoleAdmin
	}
	user := &models.User{
		Username:    s.cfg.DefaultUser.Username,
		Role:        role,
		IsSuperuser: role == models.RoleAdmin,
	}
	return s.createUser(ctx, user, s.cfg.DefaultUser.Password)
}

// CreateSession creates a new session record
func (s *AuthService) CreateSession(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return s.db.WithContext(ctx).Create(session).Error
}

// GetSession retrieves a live session of an active user by token
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Preload("User").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session")
		}
		return nil, err
	}
	if !session.User.IsActive {
		return nil, notFound("session")
	}
	return &session, nil
}

// DeleteSession deletes a session
func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteExpiredSessions removes expired sessions
func (s *AuthService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// ChangePassword updates the password of the acting user after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	actor := requestcontext.Actor(ctx)
	if actor == nil {
		return policy.ErrUnauthenticated
	}

	user, err := findByID[models.User](ctx, s.db, actor.ID, "user")
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user.PasswordHash, oldPassword) {
		return invalidf("current password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return invalidf("password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	return s.w.update(ctx, user)
}

// UpdateSettings stores the display preferences of the acting user.
func (s *AuthService) UpdateSettings(ctx context.Context, theme, fontSize string) (*models.User, error) {
	actor := requestcontext.Actor(ctx)
	if actor == nil {
		return nil, policy.ErrUnauthenticated
	}

	user, err := findByID[models.User](ctx, s.db, actor.ID, "user")
	if err != nil {
		return nil, err
	}
	if theme != "" {
		if !models.IsValidTheme(theme) {
			return nil, invalidf("unknown theme %q", theme)
		}
		user.ThemeMode = theme
	}
	if fontSize != "" {
		if !models.IsValidFontSize(fontSize) {
			return nil, invalidf("unknown font size %q", fontSize)
		}
		user.FontSize = fontSize
	}

	if err := s.w.update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Sessions lists the live sessions of the acting user.
func (s *AuthService) Sessions(ctx context.Context) ([]models.Session, error) {
	actor := requestcontext.Actor(ctx)
	if actor == nil {
		return nil, policy.ErrUnauthenticated
	}
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", actor.ID, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
