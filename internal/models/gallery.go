package models

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrGalleryMediaMissing   = errors.New("either a media file or a YouTube URL is required")
	ErrGalleryMediaAmbiguous = errors.New("provide a media file or a YouTube URL, not both")
	ErrGalleryDuration       = errors.New("duration must be a positive number of seconds")
	ErrUnsupportedMedia      = errors.New("unsupported media file extension")
	ErrInvalidYouTubeURL     = errors.New("invalid YouTube URL")
)

// AllowedMediaExtensions lists the cover file types a gallery accepts.
var AllowedMediaExtensions = []string{"jpg", "jpeg", "png", "mp4", "webm", "ogg"}

const DefaultGalleryDuration = 10

type Gallery struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CoverImage  string    `json:"cover_image" gorm:"type:varchar(255)"`
	YouTubeURL  string    `json:"youtube_url" gorm:"column:youtube_url;type:varchar(255)"`
	Duration    uint      `json:"duration" gorm:"default:10"`
	CreatedByID *uint     `json:"created_by" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	Photos      []Photo   `json:"photos" gorm:"foreignKey:GalleryID;constraint:OnDelete:CASCADE"`
}

func (g *Gallery) AuditLabel() string { return "Gallery" }
func (g *Gallery) AuditID() uint      { return g.ID }
func (g *Gallery) String() string     { return g.Title }
func (g *Gallery) OwnerID() *uint     { return g.CreatedByID }

// Validate enforces that exactly one media source is set and the duration is usable.
func (g *Gallery) Validate() error {
	hasFile := strings.TrimSpace(g.CoverImage) != ""
	hasURL := strings.TrimSpace(g.YouTubeURL) != ""

	switch {
	case hasFile && hasURL:
		return ErrGalleryMediaAmbiguous
	case !hasFile && !hasURL:
		return ErrGalleryMediaMissing
	}

	if hasFile && !IsAllowedMediaFile(g.CoverImage) {
		return ErrUnsupportedMedia
	}
	if hasURL && !IsYouTubeURL(g.YouTubeURL) {
		return ErrInvalidYouTubeURL
	}
	if g.Duration == 0 {
		return ErrGalleryDuration
	}
	return nil
}

func IsAllowedMediaFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range AllowedMediaExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}

// Photo belongs to exactly one gallery and is deleted with it.
type Photo struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GalleryID uint      `json:"gallery_id" gorm:"not null;index"`
	Image     string    `json:"image" gorm:"type:varchar(255);not null"`
	Caption   string    `json:"caption" gorm:"type:varchar(200)"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}
