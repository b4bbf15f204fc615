package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

func TestFactionLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateFaction(ctx, domain.Faction{ID: "fac-2", Key: "Guild"}); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if err := store.CreateFaction(ctx, domain.Faction{ID: "fac-1", Key: "Empire"}); err != nil {
		t.Fatalf("create faction: %v", err)
	}

	factions, err := store.ListFactions(ctx)
	if err != nil {
		t.Fatalf("list factions: %v", err)
	}
	if len(factions) != 2 || factions[0].ID != "fac-1" {
		t.Fatalf("expected sorted factions, got %+v", factions)
	}

	updated := factions[0]
	updated.Deleted = true
	if err := store.UpdateFaction(ctx, updated); err != nil {
		t.Fatalf("update faction: %v", err)
	}
	got, err := store.GetFaction(ctx, "fac-1")
	if err != nil {
		t.Fatalf("get faction: %v", err)
	}
	if !got.Deleted {
		t.Fatal("expected deleted flag to persist")
	}

	if err := store.UpdateFaction(ctx, domain.Faction{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetFaction(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateFactionWithRanks(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.CreateFactionWithRanks(ctx, domain.Faction{ID: "fac-1", Key: "Empire"}, []domain.Rank{
		{ID: "rank-5", FactionID: "fac-1", Number: 5, Name: "Recruit"},
		{ID: "rank-1", FactionID: "fac-1", Number: 1, Name: "Leader"},
	})
	if err != nil {
		t.Fatalf("create faction with ranks: %v", err)
	}

	ranks, err := store.ListRanks(ctx)
	if err != nil {
		t.Fatalf("list ranks: %v", err)
	}
	if len(ranks) != 2 || ranks[0].Number != 1 {
		t.Fatalf("expected ranks ordered by number, got %+v", ranks)
	}
}

func TestAcceptInvitationConsumesInvitation(t *testing.T) {
	store := New()
	ctx := context.Background()

	invitation := domain.Invitation{ID: "inv-1", FactionID: "fac-1", CharacterID: "char-1"}
	if err := store.CreateInvitation(ctx, invitation); err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	member := domain.Member{ID: "mem-1", FactionID: "fac-1", CharacterID: "char-1", RankID: "rank-5", Permissions: permission.Set{}}
	if err := store.AcceptInvitation(ctx, "inv-1", member); err != nil {
		t.Fatalf("accept invitation: %v", err)
	}

	invitations, err := store.ListInvitations(ctx)
	if err != nil {
		t.Fatalf("list invitations: %v", err)
	}
	if len(invitations) != 0 {
		t.Fatalf("expected invitation consumed, got %+v", invitations)
	}
	members, err := store.ListMembers(ctx)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].CharacterID != "char-1" {
		t.Fatalf("unexpected members: %+v", members)
	}

	if err := store.AcceptInvitation(ctx, "inv-1", member); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on replay, got %v", err)
	}
}

func TestDeleteReturnsNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.DeleteRank(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteMember(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteInvitation(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
