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
	// ErrRankNameRequired indicates a missing rank name.
	ErrRankNameRequired = apperrors.New(apperrors.CodeRankNameRequired, "you must provide a name for the rank")
	// ErrRankNumberRequired indicates a missing or non-positive rank number.
	ErrRankNumberRequired = apperrors.New(apperrors.CodeRankNumberRequired, "you must provide a positive rank number")
)

// Rank is a named, numbered authority tier within one faction.
// Lower numbers carry higher authority. Rank 0 is virtual: it is synthesized
// by the permission resolver for administrators and never persisted.
type Rank struct {
	ID          string
	FactionID   string
	Number      int
	Name        string
	Permissions permission.Set
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RankSnapshot is the serialized rank shape exposed to presentation layers.
type RankSnapshot struct {
	Name        string   `json:"name"`
	Number      int      `json:"number"`
	Permissions []string `json:"permissions"`
}

// Snapshot serializes the rank.
func (r Rank) Snapshot() RankSnapshot {
	return RankSnapshot{
		Name:        r.Name,
		Number:      r.Number,
		Permissions: r.Permissions.Tokens(),
	}
}

// CreateRankInput describes the data needed to create a rank.
type CreateRankInput struct {
	FactionID   string
	Number      int
	Name        string
	Permissions permission.Set
}

// CreateRank builds a new rank record with a generated ID and timestamps.
func CreateRank(input CreateRankInput, now func() time.Time, idGenerator func() (string, error)) (Rank, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name, err := NormalizeRankName(input.Name)
	if err != nil {
		return Rank{}, err
	}
	if input.Number < 1 {
		return Rank{}, ErrRankNumberRequired
	}

	rankID, err := idGenerator()
	if err != nil {
		return Rank{}, fmt.Errorf("generate rank id: %w", err)
	}

	permissions := input.Permissions
	if permissions == nil {
		permissions = permission.Set{}
	}

	createdAt := now().UTC()
	return Rank{
		ID:          rankID,
		FactionID:   input.FactionID,
		Number:      input.Number,
		Name:        name,
		Permissions: permissions,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeRankName trims and validates a rank name.
func NormalizeRankName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrRankNameRequired
	}
	return name, nil
}
