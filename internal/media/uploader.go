package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"archipelago-scent/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	ErrNotConfigured = errors.New("image uploads are not configured")
)

// UploadResult describes a stored image
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Uploader stores images and returns their public location
type Uploader interface {
	Upload(ctx context.Context, file io.Reader) (*UploadResult, error)
}

type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewUploader builds a Cloudinary uploader, or one that always fails with
// ErrNotConfigured when no Cloudinary URL is set
func NewUploader(cfg config.MediaConfig) (Uploader, error) {
	if cfg.CloudinaryURL == "" {
		return disabledUploader{}, nil
	}

	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &cloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file io.Reader) (*UploadResult, error) {
	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}

	return &UploadResult{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

type disabledUploader struct{}

func (disabledUploader) Upload(ctx context.Context, file io.Reader) (*UploadResult, error) {
	return nil, ErrNotConfigured
}
