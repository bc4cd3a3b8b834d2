package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ProfileRepository persists settings in the farmer_profiles table.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const (
	selectProfileSQL = `SELECT name, location, crops, farm_size, language FROM farmer_profiles WHERE session_id = $1`

	upsertProfileSQL = `INSERT INTO farmer_profiles (session_id, name, location, crops, farm_size, language, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (session_id) DO UPDATE SET
	name = EXCLUDED.name,
	location = EXCLUDED.location,
	crops = EXCLUDED.crops,
	farm_size = EXCLUDED.farm_size,
	language = EXCLUDED.language,
	updated_at = now()`
)

// Load returns the stored settings, or fresh ones with defaultLanguage when
// the session has none.
func (r *ProfileRepository) Load(ctx context.Context, sessionID, defaultLanguage string) (*Settings, bool, error) {
	var (
		p     Profile
		crops pq.StringArray
		lng   string
	)
	err := r.db.QueryRowContext(ctx, selectProfileSQL, sessionID).
		Scan(&p.Name, &p.Location, &crops, &p.FarmSize, &lng)
	if errors.Is(err, sql.ErrNoRows) {
		return NewSettings(defaultLanguage), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load profile %s: %w", sessionID, err)
	}
	if len(crops) > 0 {
		p.Crops = []string(crops)
	}

	s := NewSettings(lng)
	s.profile = p
	return s, true, nil
}

func (r *ProfileRepository) Save(ctx context.Context, sessionID string, s *Settings) error {
	p := s.Profile()
	crops := p.Crops
	if crops == nil {
		crops = []string{}
	}
	_, err := r.db.ExecContext(ctx, upsertProfileSQL,
		sessionID, p.Name, p.Location, pq.Array(crops), p.FarmSize, s.Language())
	if err != nil {
		return fmt.Errorf("save profile %s: %w", sessionID, err)
	}
	return nil
}
