package gateway

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"posgate.io/internal/auth"
)

// DownloadImage streams an image from the external file store.
func (s *Service) DownloadImage(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Images
	}); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, fmt.Errorf("%w: image store is not configured", ErrStore)
	}
	return s.images.Download(ctx, name)
}

// UploadImage stores the image under a generated name and returns it.
func (s *Service) UploadImage(ctx context.Context, ext string, r io.Reader) (string, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Images
	}); err != nil {
		return "", err
	}
	if s.images == nil {
		return "", fmt.Errorf("%w: image store is not configured", ErrStore)
	}
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	if err := s.images.Upload(ctx, name, r); err != nil {
		return "", err
	}
	return name, nil
}
