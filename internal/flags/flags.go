// Package flags reads the feature_flags table at request time. There is no
// cache and no write path here; flags are administered by direct SQL access
// against the feature_flags table, per the fail-open contract below.
package flags

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
)

// Service answers IsEnabled against the feature_flags table.
type Service struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func New(db *sql.DB, log zerolog.Logger) *Service {
	return &Service{DB: db, Log: log}
}

// IsEnabled reads is_enabled for flagName with no caching. A missing row or
// any database error fails open (returns true) rather than blocking a
// module because of a transient read failure.
func (s *Service) IsEnabled(ctx context.Context, flagName string) bool {
	var enabled bool
	err := s.DB.QueryRowContext(ctx, `SELECT is_enabled FROM feature_flags WHERE flag_name = ?`, flagName).Scan(&enabled)
	switch {
	case err == nil:
		return enabled
	case errors.Is(err, sql.ErrNoRows):
		return true
	default:
		s.Log.Error().Err(err).Str("flag", flagName).Msg("feature flag read failed, failing open")
		return true
	}
}
