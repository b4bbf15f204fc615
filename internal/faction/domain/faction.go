package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/ironhold/internal/faction/permission"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
	"github.com/louisbranch/ironhold/internal/platform/id"
)

var (
	// ErrFactionNameRequired indicates a missing faction name.
	ErrFactionNameRequired = apperrors.New(apperrors.CodeFactionNameRequired, "you must provide a name for the faction")
	// ErrFactionNameInvalid indicates a faction name that would break path resolution.
	ErrFactionNameInvalid = apperrors.New(apperrors.CodeFactionNameInvalid, "faction names cannot contain '/'")
)

// Config holds a faction's permission configuration block and starting rank.
// Permissions granted through ranks and member overrides are always
// intersected with the faction's permission universe at resolution time, so
// shrinking these sets takes effect immediately.
type Config struct {
	// UniversalPermissions are granted to every member of the faction.
	UniversalPermissions permission.Set
	// ExtraPermissions extend the faction's permission universe beyond the builtins.
	ExtraPermissions permission.Set
	// SubPermissions are extended to members of descendant factions.
	SubPermissions permission.Set
	// StartRank is the rank number assigned to characters who accept an invitation.
	StartRank int
}

// Faction is a node in the organization hierarchy.
type Faction struct {
	ID        string
	Key       string
	ParentID  string // empty for root factions
	Deleted   bool   // soft delete; visibility cascades to descendants
	Config    Config
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateFactionInput describes the data needed to create a faction.
type CreateFactionInput struct {
	Name      string
	ParentID  string
	StartRank int
}

// CreateFaction builds a new faction record with a generated ID and timestamps.
func CreateFaction(input CreateFactionInput, now func() time.Time, idGenerator func() (string, error)) (Faction, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name, err := NormalizeFactionName(input.Name)
	if err != nil {
		return Faction{}, err
	}

	factionID, err := idGenerator()
	if err != nil {
		return Faction{}, fmt.Errorf("generate faction id: %w", err)
	}

	createdAt := now().UTC()
	return Faction{
		ID:       factionID,
		Key:      name,
		ParentID: strings.TrimSpace(input.ParentID),
		Config: Config{
			UniversalPermissions: permission.Set{},
			ExtraPermissions:     permission.Set{},
			SubPermissions:       permission.Set{},
			StartRank:            input.StartRank,
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeFactionName trims and validates a faction name.
func NormalizeFactionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrFactionNameRequired
	}
	if strings.Contains(name, "/") {
		return "", ErrFactionNameInvalid
	}
	return name, nil
}
