// Package store persists assembled profiles.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("store: profile not found")

// ProfileFilter specifies criteria for listing profiles. Text filters
// match case-insensitively on substrings.
type ProfileFilter struct {
	Name   string `json:"name,omitempty"`
	Party  string `json:"party,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// StoredProfile is a saved profile with its bookkeeping columns.
type StoredProfile struct {
	ID        string               `json:"id"`
	SourceURL string               `json:"source_url"`
	Name      string               `json:"name"`
	Party     string               `json:"party"`
	State     string               `json:"state"`
	Record    *model.ProfileRecord `json:"record"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Store defines the persistence interface for profiles.
type Store interface {
	// SaveProfile inserts rec, or replaces the profile previously saved for
	// the same source URL. The stored id is written back to rec.ID.
	SaveProfile(ctx context.Context, rec *model.ProfileRecord) (*StoredProfile, error)
	GetProfile(ctx context.Context, id string) (*StoredProfile, error)
	GetProfileByURL(ctx context.Context, sourceURL string) (*StoredProfile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]StoredProfile, error)
	DeleteProfile(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(f ProfileFilter) int {
	if f.Limit <= 0 || f.Limit > 1000 {
		return defaultListLimit
	}
	return f.Limit
}
