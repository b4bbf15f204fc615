package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/command"
	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/naming"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/policy"
	"github.com/louisbranch/ironhold/internal/faction/tree"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

func (e *Engine) factionCreate(ctx context.Context, actorID string, cmd command.FactionCreate) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	if !e.hasOverride(ctx, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeFactionManageForbidden, "you do not have permission to create factions")
	}

	name, err := domain.NormalizeFactionName(cmd.Name)
	if err != nil {
		return command.Result{}, err
	}

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	var parentID string
	siblings := idx.VisibleRoots()
	if strings.TrimSpace(cmd.Parent) != "" {
		parent, err := idx.Resolve(cmd.Parent)
		if err != nil {
			return command.Result{}, err
		}
		parentID = parent.ID
		siblings = idx.VisibleChildren(parent.ID)
	}
	if conflict, ok := findSibling(siblings, name, ""); ok {
		return command.Result{}, apperrors.New(apperrors.CodeFactionNameConflict, "a faction already exists with that name: "+conflict.Key)
	}

	faction, err := domain.CreateFaction(domain.CreateFactionInput{
		Name:      name,
		ParentID:  parentID,
		StartRank: e.cfg.StartRank,
	}, e.now, e.newID)
	if err != nil {
		return command.Result{}, err
	}

	ranks := make([]domain.Rank, 0, len(e.cfg.DefaultRanks))
	for _, seed := range e.cfg.DefaultRanks {
		rank, err := domain.CreateRank(domain.CreateRankInput{
			FactionID:   faction.ID,
			Number:      seed.Number,
			Name:        seed.Name,
			Permissions: permission.NewSet(seed.Permissions...),
		}, e.now, e.newID)
		if err != nil {
			return command.Result{}, err
		}
		ranks = append(ranks, rank)
	}

	if err := e.store.CreateFactionWithRanks(ctx, faction, ranks); err != nil {
		return command.Result{}, err
	}

	path := faction.Key
	if parentID != "" {
		path = idx.FullPath(parentID) + "/" + faction.Key
	}
	message := "faction created: " + path
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) factionRename(ctx context.Context, actorID string, cmd command.FactionRename) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	if !e.hasOverride(ctx, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeFactionManageForbidden, "you do not have permission to rename factions")
	}

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	faction, err := idx.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	name, err := domain.NormalizeFactionName(cmd.Name)
	if err != nil {
		return command.Result{}, err
	}

	siblings := idx.VisibleRoots()
	if faction.ParentID != "" {
		siblings = idx.VisibleChildren(faction.ParentID)
	}
	if conflict, ok := findSibling(siblings, name, faction.ID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeFactionNameConflict, "a faction already exists with that name: "+conflict.Key)
	}

	oldPath := idx.FullPath(faction.ID)
	faction.Key = name
	faction.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateFaction(ctx, faction); err != nil {
		return command.Result{}, err
	}

	message := oldPath + " was renamed to: " + name
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) factionReparent(ctx context.Context, actorID string, cmd command.FactionReparent) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	if !e.hasOverride(ctx, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeFactionManageForbidden, "you do not have permission to restructure factions")
	}

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	faction, err := idx.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}

	var parentID string
	toRoot := cmd.ToRoot || strings.TrimSpace(cmd.Parent) == "/"
	if !toRoot {
		parent, err := idx.Resolve(cmd.Parent)
		if err != nil {
			return command.Result{}, err
		}
		if parent.ID == faction.ID {
			return command.Result{}, apperrors.New(apperrors.CodeFactionSelfParent, "a faction cannot be its own parent")
		}
		// Ancestor check runs before the subtree containment check; a doubly
		// invalid request reports the ancestor error.
		if idx.IsAncestor(faction.ID, parent.ID) {
			return command.Result{}, apperrors.New(apperrors.CodeFactionCycleAncestor, "a faction cannot be its own ancestor")
		}
		if idx.ContainsDescendant(faction.ID, parent.ID) {
			return command.Result{}, apperrors.New(apperrors.CodeFactionCycleDescendant, "a faction cannot be its own descendant")
		}
		parentID = parent.ID
	}

	siblings := idx.VisibleRoots()
	if parentID != "" {
		siblings = idx.VisibleChildren(parentID)
	}
	if conflict, ok := findSibling(siblings, faction.Key, faction.ID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeFactionNameConflict, "a faction already exists with that name: "+conflict.Key)
	}

	oldPath := idx.FullPath(faction.ID)
	faction.ParentID = parentID
	faction.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateFaction(ctx, faction); err != nil {
		return command.Result{}, err
	}

	newPath := faction.Key
	if parentID != "" {
		newPath = idx.FullPath(parentID) + "/" + faction.Key
	}
	message := oldPath + " was moved to: " + newPath
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) factionDelete(ctx context.Context, actorID string, cmd command.FactionDelete) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	if !e.hasOverride(ctx, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeFactionManageForbidden, "you do not have permission to delete factions")
	}

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	faction, err := idx.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	if cmd.Confirm != faction.Key {
		return command.Result{}, apperrors.New(apperrors.CodeFactionDeleteConfirm, "you must confirm deletion by entering the faction's exact name: "+faction.Key)
	}

	path := idx.FullPath(faction.ID)
	faction.Deleted = true
	faction.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateFaction(ctx, faction); err != nil {
		return command.Result{}, err
	}

	message := "faction deleted: " + path
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) factionList(ctx context.Context, cmd command.FactionList) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	roots := idx.VisibleRoots()
	if strings.TrimSpace(cmd.Faction) != "" {
		faction, err := idx.Resolve(cmd.Faction)
		if err != nil {
			return command.Result{}, err
		}
		roots = idx.VisibleChildren(faction.ID)
	}

	factions := make([]tree.Snapshot, 0, len(roots))
	for _, root := range roots {
		snapshot, err := idx.Serialize(root.ID, false, true)
		if err != nil {
			return command.Result{}, err
		}
		factions = append(factions, snapshot)
	}
	return command.Result{
		Message:  fmt.Sprintf("%d factions found", len(factions)),
		Factions: factions,
	}, nil
}

func (e *Engine) factionFind(ctx context.Context, cmd command.FactionFind) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	idx := resolver.View().Tree

	faction, err := idx.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	snapshot, err := idx.Serialize(faction.ID, true, true)
	if err != nil {
		return command.Result{}, err
	}
	return command.Result{
		Message: "found faction: " + idx.FullPath(faction.ID),
		Faction: &snapshot,
	}, nil
}

// Faction configuration keys. Key lookup uses the same prefix matching as
// path resolution.
const (
	configKeyUniversal = "universal_permissions"
	configKeyExtra     = "permissions"
	configKeySub       = "sub_permissions"
	configKeyStartRank = "start_rank"
)

var configKeys = []string{configKeyUniversal, configKeyExtra, configKeySub, configKeyStartRank}

func (e *Engine) configSet(ctx context.Context, actorID string, cmd command.ConfigSet) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeConfigForbidden, "you do not have permission to configure this faction")
	}

	key, ok := naming.MatchPrefix(cmd.Key, configKeys)
	if !ok {
		return command.Result{}, apperrors.WithMetadata(
			apperrors.CodeConfigKeyUnknown,
			"no config key matches "+strings.TrimSpace(cmd.Key)+", choices: "+strings.Join(configKeys, " "),
			map[string]string{"choices": strings.Join(configKeys, " ")},
		)
	}

	var display string
	switch key {
	case configKeyStartRank:
		number, err := strconv.Atoi(strings.TrimSpace(cmd.Value))
		if err != nil || number < 1 {
			return command.Result{}, apperrors.New(apperrors.CodeConfigValueInvalid, "start_rank must be a positive rank number")
		}
		faction.Config.StartRank = number
		display = strconv.Itoa(number)
	case configKeyExtra:
		// The extra set defines the permission universe itself, so its tokens
		// are taken as written rather than matched against the universe.
		set := permission.Parse(cmd.Value)
		faction.Config.ExtraPermissions = set
		display = set.String()
	default:
		set := permission.Set{}
		if strings.TrimSpace(cmd.Value) != "" {
			set, err = permission.Validate(resolver.AllPermissions(faction), cmd.Value)
			if err != nil {
				return command.Result{}, err
			}
		}
		if key == configKeyUniversal {
			faction.Config.UniversalPermissions = set
		} else {
			faction.Config.SubPermissions = set
		}
		display = set.String()
	}

	faction.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateFaction(ctx, faction); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	message := fmt.Sprintf("faction %s config %s set to: %s", path, key, display)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) configList(ctx context.Context, actorID string, cmd command.ConfigList) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	faction, err := resolver.View().Tree.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeConfigForbidden, "you do not have permission to configure this faction")
	}

	entries := []command.ConfigEntry{
		{Key: configKeyUniversal, Description: "permissions granted to every member", Value: faction.Config.UniversalPermissions.String()},
		{Key: configKeyExtra, Description: "extra permissions the faction recognizes", Value: faction.Config.ExtraPermissions.String()},
		{Key: configKeySub, Description: "permissions granted to sub-faction members", Value: faction.Config.SubPermissions.String()},
		{Key: configKeyStartRank, Description: "rank assigned on joining", Value: strconv.Itoa(faction.Config.StartRank)},
	}
	return command.Result{
		Message: "faction config: " + resolver.View().Tree.FullPath(faction.ID),
		Faction: factionRef(faction),
		Config:  entries,
	}, nil
}

// findSibling reports a non-deleted sibling whose key matches name
// case-insensitively, excluding excludeID.
func findSibling(siblings []domain.Faction, name, excludeID string) (domain.Faction, bool) {
	needle := strings.ToLower(name)
	for _, sibling := range siblings {
		if sibling.ID == excludeID {
			continue
		}
		if strings.ToLower(sibling.Key) == needle {
			return sibling, true
		}
	}
	return domain.Faction{}, false
}

// isLeader reports whether the actor's effective rank in the faction is at or
// above the leader threshold.
func isLeader(ctx context.Context, resolver *policy.Resolver, factionID, actorID string) bool {
	number, ok := resolver.EffectiveRank(ctx, factionID, actorID)
	return ok && number <= policy.LeaderRank
}
