package ora

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"posgate.io/internal/gateway"
)

// LatestVersion returns the most recently released version for platform.
func (s *Store) LatestVersion(ctx context.Context, platform string) (gateway.Version, error) {
	if s.db == nil {
		return gateway.Version{}, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var (
		v         gateway.Version
		url       sql.NullString
		mandatory int
	)
	err := s.db.QueryRowContext(ctx, `
		select platform, version, url, mandatory, released_at
		from (
			select platform, version, url, mandatory, released_at
			from app_versions
			where platform = :platform
			order by released_at desc
		)
		where rownum = 1
	`, sql.Named("platform", strings.ToLower(platform))).
		Scan(&v.Platform, &v.Version, &url, &mandatory, &v.ReleasedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.Version{}, gateway.ErrNotFound
	}
	if err != nil {
		return gateway.Version{}, err
	}
	v.URL = url.String
	v.Mandatory = mandatory != 0
	return v, nil
}
