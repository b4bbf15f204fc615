package policy

import (
	"context"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
)

// Resolver answers rank, membership, and permission questions for one
// snapshot. Builtins are the permission tokens every faction understands
// regardless of its configuration.
type Resolver struct {
	view     *View
	access   Access
	builtins permission.Set
}

// NewResolver builds a resolver over a view.
func NewResolver(view *View, access Access, builtins permission.Set) *Resolver {
	return &Resolver{view: view, access: access, builtins: builtins}
}

// View returns the underlying snapshot view.
func (r *Resolver) View() *View { return r.view }

// Privileged reports whether the character bypasses all faction
// authorization, either as an administrator or through an override lock.
func (r *Resolver) Privileged(ctx context.Context, characterID string) bool {
	if r.access == nil {
		return false
	}
	return r.access.IsAdmin(ctx, characterID) || r.access.HasOverride(ctx, characterID)
}

// EffectiveRank returns the character's rank number in the faction.
// Privileged characters hold the virtual rank 0 everywhere. The second
// return value is false when the character holds no rank at all.
func (r *Resolver) EffectiveRank(ctx context.Context, factionID, characterID string) (int, bool) {
	if r.Privileged(ctx, characterID) {
		return AdminRank, true
	}
	member, ok := r.view.Member(factionID, characterID)
	if !ok {
		return 0, false
	}
	rank, ok := r.view.Rank(member.RankID)
	if !ok {
		return 0, false
	}
	return rank.Number, true
}

// AllPermissions returns the faction's permission universe: the builtin
// tokens plus the faction's configured extras.
func (r *Resolver) AllPermissions(faction domain.Faction) permission.Set {
	return r.builtins.Union(faction.Config.ExtraPermissions)
}

// EffectivePermissions computes the character's permission set in the
// faction. Privileged characters and members at or above the leader
// threshold hold the whole universe. Direct members hold the universal
// grants plus their rank's permissions plus any per-member overrides,
// clamped to the universe. Members of descendant factions hold the
// configured sub-faction grants. Everyone else holds nothing.
func (r *Resolver) EffectivePermissions(ctx context.Context, faction domain.Faction, characterID string) permission.Set {
	all := r.AllPermissions(faction)
	if r.Privileged(ctx, characterID) {
		return all
	}

	if member, ok := r.view.Member(faction.ID, characterID); ok {
		rank, ok := r.view.Rank(member.RankID)
		if ok && rank.Number <= LeaderRank {
			return all
		}
		granted := faction.Config.UniversalPermissions.Union(member.Permissions)
		if ok {
			granted = granted.Union(rank.Permissions)
		}
		return granted.Intersect(all)
	}

	if r.isSubMember(faction.ID, characterID) {
		return faction.Config.SubPermissions.Intersect(all)
	}
	return permission.Set{}
}

// HasPermission reports whether the character holds the permission token in
// the faction. Characters at or above the leader threshold hold every token.
func (r *Resolver) HasPermission(ctx context.Context, faction domain.Faction, characterID, token string) bool {
	if number, ok := r.EffectiveRank(ctx, faction.ID, characterID); ok && number <= LeaderRank {
		return true
	}
	return r.EffectivePermissions(ctx, faction, characterID).Contains(token)
}

// IsMember reports whether the character belongs to the faction directly or
// through any descendant faction. Privileged characters count as members of
// everything.
func (r *Resolver) IsMember(ctx context.Context, factionID, characterID string) bool {
	if r.Privileged(ctx, characterID) {
		return true
	}
	if _, ok := r.view.Member(factionID, characterID); ok {
		return true
	}
	return r.isSubMember(factionID, characterID)
}

// isSubMember reports whether the character belongs to any faction in the
// subtree below factionID. The walk is iterative over the children index.
func (r *Resolver) isSubMember(factionID, characterID string) bool {
	stack := []string{}
	for _, child := range r.view.Tree.Children(factionID) {
		stack = append(stack, child.ID)
	}
	visited := map[string]struct{}{factionID: {}}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		if _, ok := r.view.Member(id, characterID); ok {
			return true
		}
		for _, child := range r.view.Tree.Children(id) {
			stack = append(stack, child.ID)
		}
	}
	return false
}
