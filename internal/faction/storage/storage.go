// Package storage defines the persistence interfaces for the faction engine.
// Implementations live in the sqlite and memory subpackages.
package storage

import (
	"context"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// FactionStore persists factions.
type FactionStore interface {
	// CreateFaction inserts a faction.
	CreateFaction(ctx context.Context, faction domain.Faction) error
	// CreateFactionWithRanks inserts a faction and its seed ranks atomically.
	CreateFactionWithRanks(ctx context.Context, faction domain.Faction, ranks []domain.Rank) error
	// UpdateFaction replaces a faction by ID. Returns ErrNotFound if missing.
	UpdateFaction(ctx context.Context, faction domain.Faction) error
	// GetFaction fetches a faction by ID, including soft-deleted ones.
	GetFaction(ctx context.Context, id string) (domain.Faction, error)
	// ListFactions returns every faction, including soft-deleted ones.
	ListFactions(ctx context.Context) ([]domain.Faction, error)
}

// RankStore persists ranks.
type RankStore interface {
	// CreateRank inserts a rank.
	CreateRank(ctx context.Context, rank domain.Rank) error
	// UpdateRank replaces a rank by ID. Returns ErrNotFound if missing.
	UpdateRank(ctx context.Context, rank domain.Rank) error
	// DeleteRank removes a rank by ID. Returns ErrNotFound if missing.
	DeleteRank(ctx context.Context, id string) error
	// ListRanks returns every rank across all factions.
	ListRanks(ctx context.Context) ([]domain.Rank, error)
}

// MemberStore persists memberships.
type MemberStore interface {
	// CreateMember inserts a membership.
	CreateMember(ctx context.Context, member domain.Member) error
	// UpdateMember replaces a membership by ID. Returns ErrNotFound if missing.
	UpdateMember(ctx context.Context, member domain.Member) error
	// DeleteMember removes a membership by ID. Returns ErrNotFound if missing.
	DeleteMember(ctx context.Context, id string) error
	// ListMembers returns every membership across all factions.
	ListMembers(ctx context.Context) ([]domain.Member, error)
}

// InvitationStore persists invitations.
type InvitationStore interface {
	// CreateInvitation inserts an invitation.
	CreateInvitation(ctx context.Context, invitation domain.Invitation) error
	// DeleteInvitation removes an invitation by ID. Returns ErrNotFound if missing.
	DeleteInvitation(ctx context.Context, id string) error
	// ListInvitations returns every pending invitation.
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)
	// AcceptInvitation removes the invitation and inserts the membership
	// atomically. Returns ErrNotFound if the invitation is missing.
	AcceptInvitation(ctx context.Context, invitationID string, member domain.Member) error
}

// Store is the full persistence surface the engine depends on.
type Store interface {
	FactionStore
	RankStore
	MemberStore
	InvitationStore

	// Close releases the underlying resources.
	Close() error
}
