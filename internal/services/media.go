package services

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// MediaStore keeps uploaded files under a root directory served at /media.
type MediaStore struct {
	root     string
	maxBytes int64
}

func NewMediaStore(root string, maxUploadMB int) *MediaStore {
	return &MediaStore{root: root, maxBytes: int64(maxUploadMB) << 20}
}

// Save writes the upload under dir with a random name and returns the path
// relative to the media root, using forward slashes.
func (m *MediaStore) Save(dir string, up Upload, allowed []string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(up.Filename)), ".")
	if !containsString(allowed, ext) {
		return "", invalidf("file type %q is not allowed", ext)
	}
	if m.maxBytes > 0 && up.Size > m.maxBytes {
		return "", invalidf("file exceeds %d MB", m.maxBytes>>20)
	}

	if err := os.MkdirAll(filepath.Join(m.root, dir), 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	rel := path.Join(dir, uuid.NewString()+"."+ext)
	f, err := os.Create(filepath.Join(m.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	var src io.Reader = up.Content
	if m.maxBytes > 0 {
		src = io.LimitReader(up.Content, m.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if err == nil && m.maxBytes > 0 && n > m.maxBytes {
		err = invalidf("file exceeds %d MB", m.maxBytes>>20)
	}
	if err != nil {
		f.Close()
		os.Remove(filepath.Join(m.root, filepath.FromSlash(rel)))
		return "", err
	}
	return rel, nil
}

// Remove deletes a stored file. Missing files are ignored.
func (m *MediaStore) Remove(rel string) {
	if rel == "" {
		return
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return
	}
	_ = os.Remove(filepath.Join(m.root, clean))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
