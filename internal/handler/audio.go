package handler

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dnalifesong/api/internal/storage"
	"github.com/dnalifesong/api/pkg/response"
)

// AudioHandler serves rendered artifacts from the local store: inline for
// in-browser playback, as an attachment for downloads.
type AudioHandler struct {
	store *storage.LocalStore
}

func NewAudioHandler(store *storage.LocalStore) *AudioHandler {
	return &AudioHandler{store: store}
}

// Stream handles GET /api/audio/:filename
func (h *AudioHandler) Stream(c *fiber.Ctx) error {
	path, err := h.lookup(c.Params("filename"))
	if err != nil {
		return audioError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentTypeFor(path))
	return c.SendFile(path)
}

// Download handles GET /api/download-file/:filename
func (h *AudioHandler) Download(c *fiber.Ctx) error {
	path, err := h.lookup(c.Params("filename"))
	if err != nil {
		return audioError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.Set(fiber.HeaderContentType, contentTypeFor(path))
	return c.SendFile(path)
}

func (h *AudioHandler) lookup(rawParam string) (string, error) {
	filename, err := url.PathUnescape(rawParam)
	if err != nil {
		return "", storage.ErrInvalidFilename
	}
	return h.store.Resolve(filename)
}

func audioError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrInvalidFilename) {
		return response.ValidationError(c, "Invalid filename", nil)
	}
	return response.NotFound(c, "File not found")
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid":
		return "audio/midi"
	default:
		return "audio/mpeg"
	}
}
