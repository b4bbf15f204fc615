package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/ironhold/internal/faction/permission"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
	"github.com/louisbranch/ironhold/internal/platform/id"
)

// ErrCharacterRequired indicates a missing character reference.
var ErrCharacterRequired = apperrors.New(apperrors.CodeCharacterRequired, "you must provide a character")

// Member binds one character to exactly one rank within one faction.
// A character holds at most one membership per faction. Members reference
// their rank by ID so renumbering a rank carries its holders along.
type Member struct {
	ID          string
	FactionID   string
	CharacterID string
	RankID      string
	Permissions permission.Set // per-member overrides, intersected with the faction universe
	Title       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberData carries the member's free-form attributes in serialized form.
type MemberData struct {
	Permissions []string `json:"permissions"`
	Title       string   `json:"title,omitempty"`
}

// MemberSnapshot is the serialized member shape exposed to presentation layers.
type MemberSnapshot struct {
	Character string       `json:"character"`
	Rank      RankSnapshot `json:"rank"`
	Data      MemberData   `json:"data"`
}

// Snapshot serializes the member against its current rank.
func (m Member) Snapshot(rank Rank) MemberSnapshot {
	return MemberSnapshot{
		Character: m.CharacterID,
		Rank:      rank.Snapshot(),
		Data: MemberData{
			Permissions: m.Permissions.Tokens(),
			Title:       m.Title,
		},
	}
}

// CreateMemberInput describes the data needed to create a membership.
type CreateMemberInput struct {
	FactionID   string
	CharacterID string
	RankID      string
}

// CreateMember builds a new member record with a generated ID and timestamps.
func CreateMember(input CreateMemberInput, now func() time.Time, idGenerator func() (string, error)) (Member, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	characterID := strings.TrimSpace(input.CharacterID)
	if characterID == "" {
		return Member{}, ErrCharacterRequired
	}

	memberID, err := idGenerator()
	if err != nil {
		return Member{}, fmt.Errorf("generate member id: %w", err)
	}

	createdAt := now().UTC()
	return Member{
		ID:          memberID,
		FactionID:   input.FactionID,
		CharacterID: characterID,
		RankID:      input.RankID,
		Permissions: permission.Set{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
