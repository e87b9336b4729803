package gateway

import (
	"context"
	"strings"

	"posgate.io/internal/auth"
)

// LatestVersion returns the newest released version for a platform.
func (s *Service) LatestVersion(ctx context.Context, platform string) (Version, error) {
	if _, err := s.require(ctx, func(auth.Principal) bool { return true }); err != nil {
		return Version{}, err
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		return Version{}, ErrInvalidData
	}
	return s.store.LatestVersion(ctx, platform)
}
