// Package policy resolves effective ranks and permissions for characters
// against one faction snapshot. Authority comparisons treat lower rank
// numbers as higher authority; rank 0 is the virtual administrator rank and
// outranks every stored rank.
package policy

import (
	"context"
	"sort"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/tree"
)

// AdminRank is the virtual rank number held by administrators and override
// holders. It is never persisted.
const AdminRank = 0

// LeaderRank is the threshold at or below which a member holds every
// permission in the faction universe.
const LeaderRank = 1

// Access answers out-of-band privilege questions about characters. The
// engine consults it before any stored membership data.
type Access interface {
	// IsAdmin reports whether the character is a game administrator.
	IsAdmin(ctx context.Context, characterID string) bool
	// HasOverride reports whether the character carries a per-character
	// override lock granting faction management everywhere.
	HasOverride(ctx context.Context, characterID string) bool
}

// View indexes one consistent snapshot of ranks, members, and invitations on
// top of a faction tree. It is immutable once built.
type View struct {
	Tree *tree.Index

	ranksByID      map[string]domain.Rank
	ranksByFaction map[string][]domain.Rank
	members        map[string]map[string]domain.Member
	invitations    map[string]map[string]domain.Invitation
}

// NewView builds a view. Rank lists are ordered by ascending number so
// listings read top authority first.
func NewView(idx *tree.Index, ranks []domain.Rank, members []domain.Member, invitations []domain.Invitation) *View {
	v := &View{
		Tree:           idx,
		ranksByID:      make(map[string]domain.Rank, len(ranks)),
		ranksByFaction: make(map[string][]domain.Rank),
		members:        make(map[string]map[string]domain.Member),
		invitations:    make(map[string]map[string]domain.Invitation),
	}
	for _, r := range ranks {
		v.ranksByID[r.ID] = r
		v.ranksByFaction[r.FactionID] = append(v.ranksByFaction[r.FactionID], r)
	}
	for _, list := range v.ranksByFaction {
		sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	}
	for _, m := range members {
		byCharacter := v.members[m.FactionID]
		if byCharacter == nil {
			byCharacter = make(map[string]domain.Member)
			v.members[m.FactionID] = byCharacter
		}
		byCharacter[m.CharacterID] = m
	}
	for _, inv := range invitations {
		byCharacter := v.invitations[inv.FactionID]
		if byCharacter == nil {
			byCharacter = make(map[string]domain.Invitation)
			v.invitations[inv.FactionID] = byCharacter
		}
		byCharacter[inv.CharacterID] = inv
	}
	return v
}

// Rank returns the rank with the given ID.
func (v *View) Rank(id string) (domain.Rank, bool) {
	r, ok := v.ranksByID[id]
	return r, ok
}

// RankByNumber returns the faction's rank with the given number.
func (v *View) RankByNumber(factionID string, number int) (domain.Rank, bool) {
	for _, r := range v.ranksByFaction[factionID] {
		if r.Number == number {
			return r, true
		}
	}
	return domain.Rank{}, false
}

// RankByName returns the faction's rank with the given name,
// case-insensitively.
func (v *View) RankByName(factionID, name string) (domain.Rank, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, r := range v.ranksByFaction[factionID] {
		if strings.ToLower(r.Name) == needle {
			return r, true
		}
	}
	return domain.Rank{}, false
}

// Ranks returns the faction's ranks ordered by ascending number.
func (v *View) Ranks(factionID string) []domain.Rank {
	return v.ranksByFaction[factionID]
}

// Member returns the character's membership in the faction, if any.
func (v *View) Member(factionID, characterID string) (domain.Member, bool) {
	m, ok := v.members[factionID][characterID]
	return m, ok
}

// Members returns the faction's members ordered by rank number, then
// character ID for stable listings.
func (v *View) Members(factionID string) []domain.Member {
	out := make([]domain.Member, 0, len(v.members[factionID]))
	for _, m := range v.members[factionID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, _ := v.Rank(out[i].RankID)
		rj, _ := v.Rank(out[j].RankID)
		if ri.Number == rj.Number {
			return out[i].CharacterID < out[j].CharacterID
		}
		return ri.Number < rj.Number
	})
	return out
}

// RankHolders returns how many members of the faction hold the rank.
func (v *View) RankHolders(factionID, rankID string) int {
	count := 0
	for _, m := range v.members[factionID] {
		if m.RankID == rankID {
			count++
		}
	}
	return count
}

// Invitation returns the character's pending invitation to the faction.
func (v *View) Invitation(factionID, characterID string) (domain.Invitation, bool) {
	inv, ok := v.invitations[factionID][characterID]
	return inv, ok
}

// Invitations returns the faction's pending invitations ordered by character.
func (v *View) Invitations(factionID string) []domain.Invitation {
	out := make([]domain.Invitation, 0, len(v.invitations[factionID]))
	for _, inv := range v.invitations[factionID] {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterID < out[j].CharacterID })
	return out
}

// InvitationsFor returns every pending invitation held by the character,
// across all factions, ordered by faction ID.
func (v *View) InvitationsFor(characterID string) []domain.Invitation {
	var out []domain.Invitation
	for _, byCharacter := range v.invitations {
		if inv, ok := byCharacter[characterID]; ok {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FactionID < out[j].FactionID })
	return out
}
