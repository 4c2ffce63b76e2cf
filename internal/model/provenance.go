package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Tier ranks a source by trust. Lower values take precedence.
type Tier int

// Source tiers in precedence order.
const (
	TierPrimary Tier = iota + 1
	TierSecondary
	TierTertiary
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Outranks reports whether t takes precedence over other.
func (t Tier) Outranks(other Tier) bool {
	return t < other
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	case "unknown", "":
		*t = 0
	default:
		return eris.Errorf("model: unknown tier %q", string(b))
	}
	return nil
}

// SourcesUsed records which tiers contributed to a profile.
type SourcesUsed struct {
	Primary   bool `json:"primary"`
	Secondary bool `json:"secondary"`
	Tertiary  bool `json:"tertiary"`
}

// Mark flags the given tier as used.
func (s *SourcesUsed) Mark(t Tier) {
	switch t {
	case TierPrimary:
		s.Primary = true
	case TierSecondary:
		s.Secondary = true
	case TierTertiary:
		s.Tertiary = true
	}
}

// Used reports whether the given tier contributed.
func (s SourcesUsed) Used(t Tier) bool {
	switch t {
	case TierPrimary:
		return s.Primary
	case TierSecondary:
		return s.Secondary
	case TierTertiary:
		return s.Tertiary
	default:
		return false
	}
}
