package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/ironhold/internal/platform/id"
)

// Invitation is a pending offer of membership. At most one exists per
// (character, faction) pair, and never while the character is already a
// member of that faction.
type Invitation struct {
	ID          string
	FactionID   string
	CharacterID string
	InviterID   string
	CreatedAt   time.Time
}

// InvitationSnapshot is the serialized invitation shape exposed to
// presentation layers.
type InvitationSnapshot struct {
	Character string `json:"character"`
	Faction   string `json:"faction"`
	Inviter   string `json:"inviter"`
}

// Snapshot serializes the invitation.
func (i Invitation) Snapshot() InvitationSnapshot {
	return InvitationSnapshot{
		Character: i.CharacterID,
		Faction:   i.FactionID,
		Inviter:   i.InviterID,
	}
}

// CreateInvitationInput describes the data needed to extend an invitation.
type CreateInvitationInput struct {
	FactionID   string
	CharacterID string
	InviterID   string
}

// CreateInvitation builds a new invitation record with a generated ID.
func CreateInvitation(input CreateInvitationInput, now func() time.Time, idGenerator func() (string, error)) (Invitation, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	characterID := strings.TrimSpace(input.CharacterID)
	if characterID == "" {
		return Invitation{}, ErrCharacterRequired
	}

	invitationID, err := idGenerator()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}

	return Invitation{
		ID:          invitationID,
		FactionID:   input.FactionID,
		CharacterID: characterID,
		InviterID:   strings.TrimSpace(input.InviterID),
		CreatedAt:   now().UTC(),
	}, nil
}
