package imagehost

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/campuslink/campuslink/internal/pkg/logger"
)

// LocalHost stores images on the local filesystem and serves them under baseURL.
type LocalHost struct {
	basePath string
	baseURL  string
}

// NewLocalHost creates a LocalHost rooted at basePath. baseURL is prepended to
// returned image URLs and must match the static route serving basePath.
func NewLocalHost(basePath, baseURL string) (*LocalHost, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create image storage directory")
		return nil, fmt.Errorf("failed to create image storage directory %s: %w", basePath, err)
	}

	return &LocalHost{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload saves the uploaded image under a collision-free name and returns its URL.
func (h *LocalHost) Upload(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded image")
		return "", fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	name := uuid.New().String() + ext
	dstPath := filepath.Join(h.basePath, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create image file")
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write image content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save image content: %w", err)
	}

	url := h.baseURL + "/" + name
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("Image uploaded")
	return url, nil
}

// Delete removes a previously uploaded image. Missing files are not an error.
func (h *LocalHost) Delete(url string) error {
	if url == "" {
		return nil
	}

	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		return fmt.Errorf("invalid image url: %s", url)
	}

	physicalPath := filepath.Join(h.basePath, name)
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("Image to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete image")
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
