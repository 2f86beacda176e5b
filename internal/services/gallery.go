package services

import (
	"context"
	"errors"
	"strings"

	"office-panel/internal/models"
	"office-panel/internal/policy"
	"office-panel/internal/requestcontext"

	"gorm.io/gorm"
)

var photoExtensions = []string{"jpg", "jpeg", "png"}

type GalleryService struct {
	db    *gorm.DB
	w     *writer
	media *MediaStore
}

func NewGalleryService(db *gorm.DB, w *writer, media *MediaStore) *GalleryService {
	return &GalleryService{db: db, w: w, media: media}
}

type GalleryInput struct {
	Title       string
	Description string
	YouTubeURL  string
	Duration    uint
	Cover       *Upload
}

func (s *GalleryService) List(ctx context.Context) ([]models.Gallery, error) {
	var galleries []models.Gallery
	err := s.db.WithContext(ctx).
		Preload("Photos", orderPhotos).
		Order("created_at DESC").
		Find(&galleries).Error
	if err != nil {
		return nil, err
	}
	return galleries, nil
}

func (s *GalleryService) Get(ctx context.Context, id uint) (*models.Gallery, error) {
	var gallery models.Gallery
	err := s.db.WithContext(ctx).Preload("Photos", orderPhotos).First(&gallery, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("gallery")
		}
		return nil, err
	}
	return &gallery, nil
}

func orderPhotos(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func (s *GalleryService) Create(ctx context.Context, in GalleryInput) (*models.Gallery, error) {
	if err := authorize(ctx, policy.Galleries, policy.Create, nil); err != nil {
		return nil, err
	}

	gallery := &models.Gallery{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		YouTubeURL:  strings.TrimSpace(in.YouTubeURL),
		Duration:    in.Duration,
		CreatedByID: requestcontext.ActorID(ctx),
	}
	if gallery.Duration == 0 {
		gallery.Duration = models.DefaultGalleryDuration
	}
	if in.Cover != nil {
		gallery.CoverImage = in.Cover.Filename
	}
	if err := validateGallery(gallery); err != nil {
		return nil, err
	}

	if in.Cover != nil {
		rel, err := s.media.Save("galleries", *in.Cover, models.AllowedMediaExtensions)
		if err != nil {
			return nil, err
		}
		gallery.CoverImage = rel
	}

	if err := s.w.create(ctx, gallery); err != nil {
		s.media.Remove(gallery.CoverImage)
		return nil, err
	}
	return gallery, nil
}

// Update edits a gallery. A new cover replaces the YouTube URL and vice versa, so
// the gallery keeps exactly one media source.
func (s *GalleryService) Update(ctx context.Context, id uint, in GalleryInput) (*models.Gallery, error) {
	if err := authorize(ctx, policy.Galleries, policy.Update, nil); err != nil {
		return nil, err
	}
	if in.Cover != nil && strings.TrimSpace(in.YouTubeURL) != "" {
		return nil, invalidf("%s", models.ErrGalleryMediaAmbiguous)
	}

	gallery, err := findByID[models.Gallery](ctx, s.db, id, "gallery")
	if err != nil {
		return nil, err
	}
	oldCover := gallery.CoverImage

	if in.Title != "" {
		gallery.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		gallery.Description = in.Description
	}
	if in.Duration != 0 {
		gallery.Duration = in.Duration
	}
	if url := strings.TrimSpace(in.YouTubeURL); url != "" {
		gallery.YouTubeURL = url
		gallery.CoverImage = ""
	}
	if in.Cover != nil {
		gallery.CoverImage = in.Cover.Filename
		gallery.YouTubeURL = ""
	}
	if err := validateGallery(gallery); err != nil {
		return nil, err
	}

	if in.Cover != nil {
		rel, err := s.media.Save("galleries", *in.Cover, models.AllowedMediaExtensions)
		if err != nil {
			return nil, err
		}
		gallery.CoverImage = rel
	}

	if err := s.w.update(ctx, gallery); err != nil {
		if in.Cover != nil {
			s.media.Remove(gallery.CoverImage)
		}
		return nil, err
	}
	if oldCover != "" && oldCover != gallery.CoverImage {
		s.media.Remove(oldCover)
	}
	return s.Get(ctx, gallery.ID)
}

func (s *GalleryService) Delete(ctx context.Context, id uint) error {
	if err := authorize(ctx, policy.Galleries, policy.Delete, nil); err != nil {
		return err
	}

	gallery, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.w.delete(ctx, gallery, func(tx *gorm.DB) error {
		return tx.Where("gallery_id = ?", gallery.ID).Delete(&models.Photo{}).Error
	})
	if err != nil {
		return err
	}

	s.media.Remove(gallery.CoverImage)
	for _, p := range gallery.Photos {
		s.media.Remove(p.Image)
	}
	return nil
}

// AddPhoto attaches an image to a gallery. Allowed for admins and the gallery creator.
func (s *GalleryService) AddPhoto(ctx context.Context, galleryID uint, up Upload, caption string, sortOrder int) (*models.Photo, error) {
	gallery, err := findByID[models.Gallery](ctx, s.db, galleryID, "gallery")
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, policy.Photos, policy.Create, gallery.OwnerID()); err != nil {
		return nil, err
	}
	if sortOrder < 0 {
		return nil, invalidf("sort order must not be negative")
	}

	rel, err := s.media.Save("gallery_photos", up, photoExtensions)
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		GalleryID: gallery.ID,
		Image:     rel,
		Caption:   caption,
		SortOrder: sortOrder,
	}
	if err := s.w.create(ctx, photo); err != nil {
		s.media.Remove(rel)
		return nil, err
	}
	return photo, nil
}

func (s *GalleryService) DeletePhoto(ctx context.Context, galleryID, photoID uint) error {
	gallery, err := findByID[models.Gallery](ctx, s.db, galleryID, "gallery")
	if err != nil {
		return err
	}
	if err := authorize(ctx, policy.Photos, policy.Delete, gallery.OwnerID()); err != nil {
		return err
	}

	var photo models.Photo
	err = s.db.WithContext(ctx).Where("id = ? AND gallery_id = ?", photoID, galleryID).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("photo")
		}
		return err
	}

	if err := s.w.delete(ctx, &photo); err != nil {
		return err
	}
	s.media.Remove(photo.Image)
	return nil
}

func validateGallery(g *models.Gallery) error {
	if g.Title == "" {
		return invalidf("title is required")
	}
	if err := g.Validate(); err != nil {
		return invalidf("%s", err)
	}
	return nil
}
