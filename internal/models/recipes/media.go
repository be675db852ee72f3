package models

import (
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

const recipeImageDir = "recipes/images"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaStore keeps uploaded images on local disk under Root and exposes
// them under URL.
type MediaStore struct {
	Root string
	URL  string
}

// NewMediaStore returns a store rooted at root, served from url.
func NewMediaStore(root, url string) *MediaStore {
	return &MediaStore{Root: root, URL: strings.TrimRight(url, "/")}
}

// SaveBase64 decodes a data URI ("data:image/png;base64,...") or bare base64
// payload, stores it under a random name and returns its public URL.
func (m *MediaStore) SaveBase64(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); strings.HasPrefix(payload, "data:") && i != -1 {
		payload = payload[i+len(";base64,"):]
	}
	if payload == "" {
		return "", utils.Validation("image is required")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", utils.Validation("image must be base64 encoded", err.Error())
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", utils.Validation("image must be a JPEG, PNG, GIF or WEBP file")
	}

	dir := filepath.Join(m.Root, filepath.FromSlash(recipeImageDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", utils.Internal(err, "Failed to prepare media directory")
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", utils.Internal(err, "Failed to store image")
	}
	return m.URL + "/" + recipeImageDir + "/" + name, nil
}

// Remove deletes a file previously returned by SaveBase64. Unknown URLs
// are ignored.
func (m *MediaStore) Remove(url string) {
	prefix := m.URL + "/" + recipeImageDir + "/"
	if !strings.HasPrefix(url, prefix) {
		return
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	_ = os.Remove(filepath.Join(m.Root, filepath.FromSlash(recipeImageDir), name))
}
