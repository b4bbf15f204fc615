package engine

import (
	"context"
	"fmt"

	"github.com/louisbranch/ironhold/internal/faction/command"
	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/policy"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

var errRankNotFound = apperrors.New(apperrors.CodeRankNotFound, "no rank found with that number")

func (e *Engine) rankCreate(ctx context.Context, actorID string, cmd command.RankCreate) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	faction, err := resolver.View().Tree.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRankManageForbidden, "you do not have permission to create ranks")
	}

	if cmd.Number < 1 {
		return command.Result{}, domain.ErrRankNumberRequired
	}
	if _, ok := resolver.View().RankByNumber(faction.ID, cmd.Number); ok {
		return command.Result{}, apperrors.New(apperrors.CodeRankNumberConflict, "a rank already exists with that number")
	}
	name, err := domain.NormalizeRankName(cmd.Name)
	if err != nil {
		return command.Result{}, err
	}
	if _, ok := resolver.View().RankByName(faction.ID, name); ok {
		return command.Result{}, apperrors.New(apperrors.CodeRankNameConflict, "a rank already exists with that name")
	}

	rank, err := domain.CreateRank(domain.CreateRankInput{
		FactionID: faction.ID,
		Number:    cmd.Number,
		Name:      name,
	}, e.now, e.newID)
	if err != nil {
		return command.Result{}, err
	}
	if err := e.store.CreateRank(ctx, rank); err != nil {
		return command.Result{}, err
	}

	snapshot := rank.Snapshot()
	message := fmt.Sprintf("rank %d %q created for %s", rank.Number, rank.Name, resolver.View().Tree.FullPath(faction.ID))
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Rank: &snapshot}, nil
}

func (e *Engine) rankRename(ctx context.Context, actorID string, cmd command.RankRename) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRankManageForbidden, "you do not have permission to rename ranks")
	}
	rank, err := findRank(resolver, faction.ID, cmd.Number)
	if err != nil {
		return command.Result{}, err
	}
	name, err := domain.NormalizeRankName(cmd.Name)
	if err != nil {
		return command.Result{}, err
	}
	if conflict, ok := resolver.View().RankByName(faction.ID, name); ok && conflict.ID != rank.ID {
		return command.Result{}, apperrors.New(apperrors.CodeRankNameConflict, "a rank already exists with that name: "+conflict.Name)
	}

	message := fmt.Sprintf("rank %d %q renamed to %q", rank.Number, rank.Name, name)
	rank.Name = name
	rank.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateRank(ctx, rank); err != nil {
		return command.Result{}, err
	}

	snapshot := rank.Snapshot()
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Rank: &snapshot}, nil
}

func (e *Engine) rankRenumber(ctx context.Context, actorID string, cmd command.RankRenumber) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	faction, err := resolver.View().Tree.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRankManageForbidden, "you do not have permission to renumber ranks")
	}
	rank, err := findRank(resolver, faction.ID, cmd.Number)
	if err != nil {
		return command.Result{}, err
	}
	if cmd.NewNumber < 1 {
		return command.Result{}, domain.ErrRankNumberRequired
	}
	if _, ok := resolver.View().RankByNumber(faction.ID, cmd.NewNumber); ok {
		return command.Result{}, apperrors.New(apperrors.CodeRankNumberConflict, "a rank already exists with that number")
	}

	message := fmt.Sprintf("rank %d %q renumbered to %d", rank.Number, rank.Name, cmd.NewNumber)
	rank.Number = cmd.NewNumber
	rank.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateRank(ctx, rank); err != nil {
		return command.Result{}, err
	}

	snapshot := rank.Snapshot()
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Rank: &snapshot}, nil
}

func (e *Engine) rankDelete(ctx context.Context, actorID string, cmd command.RankDelete) (command.Result, error) {
	e.structural.Lock()
	defer e.structural.Unlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}
	faction, err := resolver.View().Tree.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRankManageForbidden, "you do not have permission to delete ranks")
	}
	rank, err := findRank(resolver, faction.ID, cmd.Number)
	if err != nil {
		return command.Result{}, err
	}
	if rank.Number <= 2 {
		return command.Result{}, apperrors.New(apperrors.CodeRankReserved, "you cannot delete the first two ranks")
	}
	if resolver.View().RankHolders(faction.ID, rank.ID) > 0 {
		return command.Result{}, apperrors.New(apperrors.CodeRankHasHolders, "you cannot delete a rank that has members")
	}

	if err := e.store.DeleteRank(ctx, rank.ID); err != nil {
		return command.Result{}, err
	}

	message := fmt.Sprintf("rank %d %q deleted", rank.Number, rank.Name)
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) rankSetPermissions(ctx context.Context, actorID string, cmd command.RankSetPermissions) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRankManageForbidden, "you do not have permission to configure ranks")
	}
	rank, err := findRank(resolver, faction.ID, cmd.Number)
	if err != nil {
		return command.Result{}, err
	}
	permissions, err := permission.Validate(resolver.AllPermissions(faction), cmd.Permissions)
	if err != nil {
		return command.Result{}, err
	}

	rank.Permissions = permissions
	rank.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateRank(ctx, rank); err != nil {
		return command.Result{}, err
	}

	snapshot := rank.Snapshot()
	message := fmt.Sprintf("rank %d %q permissions set to: %s", rank.Number, rank.Name, permissions.String())
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Rank: &snapshot}, nil
}

func (e *Engine) rankList(ctx context.Context, cmd command.RankList) (command.Result, error) {
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

	ranks := resolver.View().Ranks(faction.ID)
	snapshots := make([]domain.RankSnapshot, 0, len(ranks))
	for _, rank := range ranks {
		snapshots = append(snapshots, rank.Snapshot())
	}
	return command.Result{
		Message: "ranks for " + resolver.View().Tree.FullPath(faction.ID),
		Faction: factionRef(faction),
		Ranks:   snapshots,
	}, nil
}

// findRank returns the faction's rank with the given number.
func findRank(resolver *policy.Resolver, factionID string, number int) (domain.Rank, error) {
	if number < 1 {
		return domain.Rank{}, domain.ErrRankNumberRequired
	}
	rank, ok := resolver.View().RankByNumber(factionID, number)
	if !ok {
		return domain.Rank{}, errRankNotFound
	}
	return rank, nil
}
