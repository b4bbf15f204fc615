package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "factions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testFaction(id, key, parentID string) domain.Faction {
	now := time.Date(2026, time.March, 4, 11, 0, 0, 0, time.UTC)
	return domain.Faction{
		ID:       id,
		Key:      key,
		ParentID: parentID,
		Config: domain.Config{
			UniversalPermissions: permission.NewSet("invite"),
			ExtraPermissions:     permission.NewSet("treasury"),
			SubPermissions:       permission.Set{},
			StartRank:            5,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testRank(id, factionID string, number int, name string) domain.Rank {
	now := time.Date(2026, time.March, 4, 11, 0, 0, 0, time.UTC)
	return domain.Rank{
		ID:          id,
		FactionID:   factionID,
		Number:      number,
		Name:        name,
		Permissions: permission.NewSet("invite"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetFactionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := testFaction("fac-1", "Empire", "")
	if err := store.CreateFaction(context.Background(), input); err != nil {
		t.Fatalf("create faction: %v", err)
	}

	got, err := store.GetFaction(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("get faction: %v", err)
	}
	if got.Key != "Empire" {
		t.Fatalf("key = %q, want %q", got.Key, "Empire")
	}
	if !got.Config.UniversalPermissions.Contains("invite") {
		t.Fatalf("universal permissions lost: %v", got.Config.UniversalPermissions.Tokens())
	}
	if !got.Config.ExtraPermissions.Contains("treasury") {
		t.Fatalf("extra permissions lost: %v", got.Config.ExtraPermissions.Tokens())
	}
	if got.Config.StartRank != 5 {
		t.Fatalf("start_rank = %d, want 5", got.Config.StartRank)
	}
	if !got.CreatedAt.Equal(input.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, input.CreatedAt)
	}
}

func TestGetFactionReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetFaction(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateFactionPersistsSoftDelete(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	faction := testFaction("fac-1", "Empire", "")
	if err := store.CreateFaction(context.Background(), faction); err != nil {
		t.Fatalf("create faction: %v", err)
	}

	faction.Deleted = true
	faction.UpdatedAt = faction.UpdatedAt.Add(time.Minute)
	if err := store.UpdateFaction(context.Background(), faction); err != nil {
		t.Fatalf("update faction: %v", err)
	}

	got, err := store.GetFaction(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("get faction: %v", err)
	}
	if !got.Deleted {
		t.Fatal("expected deleted flag to persist")
	}
}

func TestUpdateFactionReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.UpdateFaction(context.Background(), testFaction("missing", "Ghost", "")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateFactionWithRanksIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	faction := testFaction("fac-1", "Empire", "")
	ranks := []domain.Rank{
		testRank("rank-1", "fac-1", 1, "Leader"),
		testRank("rank-5", "fac-1", 5, "Recruit"),
	}
	if err := store.CreateFactionWithRanks(context.Background(), faction, ranks); err != nil {
		t.Fatalf("create faction with ranks: %v", err)
	}

	gotRanks, err := store.ListRanks(context.Background())
	if err != nil {
		t.Fatalf("list ranks: %v", err)
	}
	if len(gotRanks) != 2 {
		t.Fatalf("expected 2 ranks, got %d", len(gotRanks))
	}
	if gotRanks[0].Number != 1 || gotRanks[1].Number != 5 {
		t.Fatalf("expected ranks ordered by number, got %+v", gotRanks)
	}
}

func TestCreateFactionWithRanksRollsBackOnConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateFaction(context.Background(), testFaction("fac-1", "Empire", "")); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if err := store.CreateRank(context.Background(), testRank("rank-1", "fac-1", 1, "Leader")); err != nil {
		t.Fatalf("create rank: %v", err)
	}

	// Second insert reuses the rank primary key and must fail the whole tx.
	err := store.CreateFactionWithRanks(context.Background(), testFaction("fac-2", "Guild", ""), []domain.Rank{
		testRank("rank-1", "fac-2", 1, "Boss"),
	})
	if err == nil {
		t.Fatal("expected rank conflict")
	}
	if _, err := store.GetFaction(context.Background(), "fac-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected faction insert rolled back, got %v", err)
	}
}

func TestRankUpdateDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateFaction(context.Background(), testFaction("fac-1", "Empire", "")); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	rank := testRank("rank-3", "fac-1", 3, "Officer")
	if err := store.CreateRank(context.Background(), rank); err != nil {
		t.Fatalf("create rank: %v", err)
	}

	rank.Number = 2
	rank.Name = "Captain"
	rank.Permissions = permission.NewSet("invite", "discipline")
	if err := store.UpdateRank(context.Background(), rank); err != nil {
		t.Fatalf("update rank: %v", err)
	}

	ranks, err := store.ListRanks(context.Background())
	if err != nil {
		t.Fatalf("list ranks: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Name != "Captain" || ranks[0].Number != 2 {
		t.Fatalf("unexpected ranks: %+v", ranks)
	}
	if !ranks[0].Permissions.Contains("discipline") {
		t.Fatalf("permissions lost: %v", ranks[0].Permissions.Tokens())
	}

	if err := store.DeleteRank(context.Background(), "rank-3"); err != nil {
		t.Fatalf("delete rank: %v", err)
	}
	if err := store.DeleteRank(context.Background(), "rank-3"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemberRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateFaction(context.Background(), testFaction("fac-1", "Empire", "")); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if err := store.CreateRank(context.Background(), testRank("rank-5", "fac-1", 5, "Recruit")); err != nil {
		t.Fatalf("create rank: %v", err)
	}

	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	member := domain.Member{
		ID:          "mem-1",
		FactionID:   "fac-1",
		CharacterID: "char-1",
		RankID:      "rank-5",
		Permissions: permission.Set{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateMember(context.Background(), member); err != nil {
		t.Fatalf("create member: %v", err)
	}

	member.Title = "Quartermaster"
	member.Permissions = permission.NewSet("roster")
	if err := store.UpdateMember(context.Background(), member); err != nil {
		t.Fatalf("update member: %v", err)
	}

	members, err := store.ListMembers(context.Background())
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].Title != "Quartermaster" {
		t.Fatalf("unexpected members: %+v", members)
	}
	if !members[0].Permissions.Contains("roster") {
		t.Fatalf("permissions lost: %v", members[0].Permissions.Tokens())
	}

	if err := store.DeleteMember(context.Background(), "mem-1"); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	if err := store.DeleteMember(context.Background(), "mem-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAcceptInvitationIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateFaction(context.Background(), testFaction("fac-1", "Empire", "")); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if err := store.CreateRank(context.Background(), testRank("rank-5", "fac-1", 5, "Recruit")); err != nil {
		t.Fatalf("create rank: %v", err)
	}

	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	invitation := domain.Invitation{
		ID:          "inv-1",
		FactionID:   "fac-1",
		CharacterID: "char-1",
		InviterID:   "char-9",
		CreatedAt:   now,
	}
	if err := store.CreateInvitation(context.Background(), invitation); err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	member := domain.Member{
		ID:          "mem-1",
		FactionID:   "fac-1",
		CharacterID: "char-1",
		RankID:      "rank-5",
		Permissions: permission.Set{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.AcceptInvitation(context.Background(), "inv-1", member); err != nil {
		t.Fatalf("accept invitation: %v", err)
	}

	invitations, err := store.ListInvitations(context.Background())
	if err != nil {
		t.Fatalf("list invitations: %v", err)
	}
	if len(invitations) != 0 {
		t.Fatalf("expected invitation consumed, got %+v", invitations)
	}
	members, err := store.ListMembers(context.Background())
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].CharacterID != "char-1" {
		t.Fatalf("unexpected members: %+v", members)
	}
}

func TestAcceptInvitationReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	member := domain.Member{ID: "mem-1", FactionID: "fac-1", CharacterID: "char-1", RankID: "rank-5", Permissions: permission.Set{}}
	if err := store.AcceptInvitation(context.Background(), "missing", member); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFactionsIncludesDeleted(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	live := testFaction("fac-1", "Empire", "")
	dead := testFaction("fac-2", "Guild", "")
	dead.Deleted = true
	if err := store.CreateFaction(context.Background(), live); err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if err := store.CreateFaction(context.Background(), dead); err != nil {
		t.Fatalf("create faction: %v", err)
	}

	factions, err := store.ListFactions(context.Background())
	if err != nil {
		t.Fatalf("list factions: %v", err)
	}
	if len(factions) != 2 {
		t.Fatalf("expected both factions, got %d", len(factions))
	}
	if !factions[1].Deleted {
		t.Fatal("expected deleted flag on second faction")
	}
}
