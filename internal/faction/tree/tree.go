// Package tree indexes a faction snapshot as an explicit parent map plus
// children index and answers the structural questions the engine depends on:
// path resolution, ancestor and descendant walks, cycle checks, soft-delete
// visibility, and tree serialization. All traversals are iterative and
// bounded so deep or damaged hierarchies cannot exhaust the stack.
package tree

import (
	"sort"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/naming"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

var (
	// ErrReferenceRequired indicates a missing faction reference.
	ErrReferenceRequired = apperrors.New(apperrors.CodeFactionReferenceRequired, "you must provide a faction id or path")
	// ErrNotFound indicates an unresolvable faction reference.
	ErrNotFound = apperrors.New(apperrors.CodeFactionNotFound, "no faction found")
)

// Index is an immutable view over one faction snapshot.
type Index struct {
	byID     map[string]domain.Faction
	children map[string][]string // parent id -> child ids, ordered by key
	roots    []string
}

// NewIndex builds an index from a faction snapshot. Child lists and roots are
// ordered case-insensitively by key for deterministic listings.
func NewIndex(factions []domain.Faction) *Index {
	idx := &Index{
		byID:     make(map[string]domain.Faction, len(factions)),
		children: make(map[string][]string),
	}
	for _, f := range factions {
		idx.byID[f.ID] = f
	}
	for _, f := range factions {
		if f.ParentID == "" {
			idx.roots = append(idx.roots, f.ID)
			continue
		}
		if _, ok := idx.byID[f.ParentID]; !ok {
			// Orphaned parent pointer; treat as a root so the node stays reachable.
			idx.roots = append(idx.roots, f.ID)
			continue
		}
		idx.children[f.ParentID] = append(idx.children[f.ParentID], f.ID)
	}

	idx.sortByKey(idx.roots)
	for _, ids := range idx.children {
		idx.sortByKey(ids)
	}
	return idx
}

func (x *Index) sortByKey(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a := x.byID[ids[i]]
		b := x.byID[ids[j]]
		ka := strings.ToLower(a.Key)
		kb := strings.ToLower(b.Key)
		if ka == kb {
			return a.ID < b.ID
		}
		return ka < kb
	})
}

// Get returns the faction with the given ID, regardless of deletion state.
func (x *Index) Get(id string) (domain.Faction, bool) {
	f, ok := x.byID[id]
	return f, ok
}

// Roots returns the root factions in key order, including soft-deleted ones.
func (x *Index) Roots() []domain.Faction {
	return x.collect(x.roots)
}

// Children returns the direct children of a faction in key order, including
// soft-deleted ones.
func (x *Index) Children(id string) []domain.Faction {
	return x.collect(x.children[id])
}

// VisibleRoots returns the root factions that are not soft-deleted.
func (x *Index) VisibleRoots() []domain.Faction {
	return x.filterVisible(x.roots)
}

// VisibleChildren returns the direct children that are not soft-deleted.
func (x *Index) VisibleChildren(id string) []domain.Faction {
	return x.filterVisible(x.children[id])
}

func (x *Index) collect(ids []string) []domain.Faction {
	out := make([]domain.Faction, 0, len(ids))
	for _, id := range ids {
		out = append(out, x.byID[id])
	}
	return out
}

func (x *Index) filterVisible(ids []string) []domain.Faction {
	out := make([]domain.Faction, 0, len(ids))
	for _, id := range ids {
		f := x.byID[id]
		if !f.Deleted {
			out = append(out, f)
		}
	}
	return out
}

// Ancestors returns the ancestor chain from the faction's parent up to its
// root. The walk is iterative and stops if it revisits a node, so a corrupted
// parent chain terminates instead of looping.
func (x *Index) Ancestors(id string) []domain.Faction {
	var out []domain.Faction
	visited := map[string]struct{}{id: {}}

	current, ok := x.byID[id]
	for ok && current.ParentID != "" {
		if _, seen := visited[current.ParentID]; seen {
			break
		}
		visited[current.ParentID] = struct{}{}
		current, ok = x.byID[current.ParentID]
		if ok {
			out = append(out, current)
		}
	}
	return out
}

// IsAncestor reports whether candidate appears in the faction's ancestor
// chain. A faction is never its own ancestor.
func (x *Index) IsAncestor(candidateID, id string) bool {
	for _, ancestor := range x.Ancestors(id) {
		if ancestor.ID == candidateID {
			return true
		}
	}
	return false
}

// ContainsDescendant reports whether target appears anywhere in the subtree
// rooted at root, excluding root itself. Soft-deleted nodes are traversed so
// structural checks hold for the whole stored tree.
func (x *Index) ContainsDescendant(rootID, targetID string) bool {
	if targetID == "" {
		return false
	}
	stack := append([]string(nil), x.children[rootID]...)
	visited := map[string]struct{}{rootID: {}}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		if id == targetID {
			return true
		}
		stack = append(stack, x.children[id]...)
	}
	return false
}

// IsDeleted reports whether the faction or any of its ancestors is
// soft-deleted. A faction under a deleted ancestor is considered deleted.
func (x *Index) IsDeleted(id string) bool {
	f, ok := x.byID[id]
	if !ok {
		return true
	}
	if f.Deleted {
		return true
	}
	for _, ancestor := range x.Ancestors(id) {
		if ancestor.Deleted {
			return true
		}
	}
	return false
}

// FullPath joins the faction's ancestor keys and its own key with slashes.
func (x *Index) FullPath(id string) string {
	f, ok := x.byID[id]
	if !ok {
		return ""
	}
	ancestors := x.Ancestors(id)
	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Key)
	}
	parts = append(parts, f.Key)
	return strings.Join(parts, "/")
}

// Resolve returns the unique non-deleted faction matching ref, which is
// either an opaque faction ID or a slash-delimited path. Each path segment is
// matched case-insensitively by unambiguous prefix among the visible
// candidates at that level; zero or multiple matches both fail.
func (x *Index) Resolve(ref string) (domain.Faction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Faction{}, ErrReferenceRequired
	}

	if f, ok := x.byID[ref]; ok {
		if x.IsDeleted(f.ID) {
			return domain.Faction{}, ErrNotFound
		}
		return f, nil
	}

	segments := strings.Split(ref, "/")
	current, err := x.matchSegment(segments[0], x.VisibleRoots(), "")
	if err != nil {
		return domain.Faction{}, err
	}
	for _, segment := range segments[1:] {
		current, err = x.matchSegment(segment, x.VisibleChildren(current.ID), x.FullPath(current.ID))
		if err != nil {
			return domain.Faction{}, err
		}
	}
	return current, nil
}

func (x *Index) matchSegment(segment string, candidates []domain.Faction, parentPath string) (domain.Faction, error) {
	keys := make([]string, 0, len(candidates))
	byKey := make(map[string]domain.Faction, len(candidates))
	for _, candidate := range candidates {
		keys = append(keys, candidate.Key)
		byKey[candidate.Key] = candidate
	}

	matched, ok := naming.MatchPrefix(segment, keys)
	if !ok {
		detail := "no faction found called: " + strings.TrimSpace(segment)
		if parentPath != "" {
			detail = "no faction found under " + parentPath + " called: " + strings.TrimSpace(segment)
		}
		return domain.Faction{}, apperrors.New(apperrors.CodeFactionNotFound, detail)
	}
	return byKey[matched], nil
}

// Snapshot is the serialized tree shape exposed to presentation layers.
type Snapshot struct {
	ID       string     `json:"id"`
	Key      string     `json:"key"`
	Parent   *Snapshot  `json:"parent,omitempty"`
	Children []Snapshot `json:"children,omitempty"`
}

// Serialize produces a snapshot of the faction, optionally including its
// visible parent chain and its visible descendants.
func (x *Index) Serialize(id string, includeParent, includeChildren bool) (Snapshot, error) {
	f, ok := x.byID[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	out := Snapshot{ID: f.ID, Key: f.Key}
	if includeParent {
		out.Parent = x.serializeParentChain(f)
	}
	if includeChildren {
		out.Children = x.serializeChildren(f.ID)
	}
	return out, nil
}

// serializeParentChain builds the parent chain bottom-up, stopping at the
// first soft-deleted ancestor.
func (x *Index) serializeParentChain(f domain.Faction) *Snapshot {
	ancestors := x.Ancestors(f.ID)
	var chain *Snapshot
	for i := len(ancestors) - 1; i >= 0; i-- {
		ancestor := ancestors[i]
		if ancestor.Deleted {
			chain = nil
			continue
		}
		chain = &Snapshot{ID: ancestor.ID, Key: ancestor.Key, Parent: chain}
	}
	return chain
}

// serializeChildren walks the visible subtree with an explicit stack and then
// assembles child snapshots bottom-up so no recursion is needed.
func (x *Index) serializeChildren(rootID string) []Snapshot {
	type frame struct {
		id       string
		parentID string
	}

	// First pass: collect visible nodes in DFS order.
	var order []frame
	stack := []frame{{id: rootID}}
	visited := map[string]struct{}{}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[top.id]; seen {
			continue
		}
		visited[top.id] = struct{}{}
		if top.id != rootID {
			order = append(order, top)
		}
		children := x.VisibleChildren(top.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i].ID, parentID: top.id})
		}
	}

	// Second pass: build snapshots bottom-up.
	built := make(map[string]*Snapshot, len(order)+1)
	built[rootID] = &Snapshot{}
	for _, fr := range order {
		f := x.byID[fr.id]
		built[fr.id] = &Snapshot{ID: f.ID, Key: f.Key}
	}
	for i := len(order) - 1; i >= 0; i-- {
		fr := order[i]
		parent := built[fr.parentID]
		parent.Children = append([]Snapshot{*built[fr.id]}, parent.Children...)
	}
	return built[rootID].Children
}
