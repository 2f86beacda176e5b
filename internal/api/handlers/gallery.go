package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type GalleryHandler struct {
	galleries *services.GalleryService
}

func NewGalleryHandler(galleries *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleries: galleries}
}

// openUpload returns the named multipart file, or nil when the field is absent.
// The caller closes the returned file.
func openUpload(c *gin.Context, field string) (*services.Upload, multipart.File, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Filename: header.Filename, Size: header.Size, Content: f}, f, nil
}

func galleryInput(c *gin.Context) (services.GalleryInput, error) {
	in := services.GalleryInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		YouTubeURL:  c.PostForm("youtube_url"),
	}
	if raw := c.PostForm("duration"); raw != "" {
		d, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return in, fmt.Errorf("invalid duration %q", raw)
		}
		in.Duration = uint(d)
	}
	return in, nil
}

func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	galleries, err := h.galleries.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"galleries": galleries})
}

func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	gallery, err := h.galleries.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gallery)
}

// CreateGallery accepts multipart/form-data with either cover_image or youtube_url
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	in, err := galleryInput(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	cover, f, err := openUpload(c, "cover_image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	in.Cover = cover

	gallery, err := h.galleries.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, gallery)
}

func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, err := galleryInput(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	cover, f, err := openUpload(c, "cover_image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	in.Cover = cover

	gallery, err := h.galleries.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gallery)
}

func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.galleries.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Gallery deleted successfully"})
}

// AddPhoto accepts multipart/form-data with image, caption and sort_order
func (h *GalleryHandler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	image, f, err := openUpload(c, "image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if image == nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": "image is required"})
		return
	}
	defer f.Close()

	sortOrder := 0
	if raw := c.PostForm("sort_order"); raw != "" {
		sortOrder, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid sort_order %q", raw))
			return
		}
	}

	photo, err := h.galleries.AddPhoto(c.Request.Context(), id, *image, c.PostForm("caption"), sortOrder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, photo)
}

func (h *GalleryHandler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}
	if err := h.galleries.DeletePhoto(c.Request.Context(), id, photoID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Photo deleted successfully"})
}
