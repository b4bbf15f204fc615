package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/command"
	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/naming"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/policy"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

func (e *Engine) memberAdd(ctx context.Context, actorID string, cmd command.MemberAdd) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !resolver.Privileged(ctx, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRosterForbidden, "you do not have permission to add members")
	}
	characterID := strings.TrimSpace(cmd.Character)
	if characterID == "" {
		return command.Result{}, domain.ErrCharacterRequired
	}

	rankRef := cmd.Rank
	if strings.TrimSpace(rankRef) == "" {
		rankRef = strconv.Itoa(faction.Config.StartRank)
	}
	rank, err := resolveRankRef(resolver, faction.ID, rankRef)
	if err != nil {
		return command.Result{}, err
	}
	if _, ok := resolver.View().Member(faction.ID, characterID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeMemberExists, "that character is already a member")
	}

	member, err := domain.CreateMember(domain.CreateMemberInput{
		FactionID:   faction.ID,
		CharacterID: characterID,
		RankID:      rank.ID,
	}, e.now, e.newID)
	if err != nil {
		return command.Result{}, err
	}
	if err := e.store.CreateMember(ctx, member); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := member.Snapshot(rank)
	message := fmt.Sprintf("%s added to %s as rank %d %q", characterID, path, rank.Number, rank.Name)
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Member: &snapshot}, nil
}

func (e *Engine) memberRemove(ctx context.Context, actorID string, cmd command.MemberRemove) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !resolver.HasPermission(ctx, faction, actorID, "roster") {
		return command.Result{}, apperrors.New(apperrors.CodeRosterForbidden, "you do not have permission to remove members")
	}
	member, rank, err := findMember(resolver, faction.ID, cmd.Character)
	if err != nil {
		return command.Result{}, err
	}

	actorRank := effectiveRankOrLowest(ctx, resolver, faction.ID, actorID)
	if actorRank > rank.Number {
		return command.Result{}, apperrors.New(apperrors.CodeMemberAuthority, "you cannot remove a higher-ranked member")
	}

	if err := e.store.DeleteMember(ctx, member.ID); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	message := fmt.Sprintf("%s removed from %s", member.CharacterID, path)
	e.notifier.Notify(ctx, member.CharacterID, "You have been removed from "+path+".")
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) memberSetRank(ctx context.Context, actorID string, cmd command.MemberSetRank) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !resolver.HasPermission(ctx, faction, actorID, "roster") {
		return command.Result{}, apperrors.New(apperrors.CodeRosterForbidden, "you do not have permission to promote members")
	}
	member, currentRank, err := findMember(resolver, faction.ID, cmd.Character)
	if err != nil {
		return command.Result{}, err
	}
	newRank, err := resolveRankRef(resolver, faction.ID, cmd.Rank)
	if err != nil {
		return command.Result{}, err
	}

	// The actor must outrank both the member's current rank and the requested
	// one; equal authority never suffices.
	actorRank := effectiveRankOrLowest(ctx, resolver, faction.ID, actorID)
	if actorRank >= currentRank.Number {
		return command.Result{}, apperrors.New(apperrors.CodeMemberAuthority, "you cannot change the rank of an equal or higher-ranked member")
	}
	if actorRank >= newRank.Number {
		return command.Result{}, apperrors.New(apperrors.CodeMemberAuthority, "you cannot move a member to a rank equal to or above your own")
	}

	member.RankID = newRank.ID
	member.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateMember(ctx, member); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := member.Snapshot(newRank)
	message := fmt.Sprintf("%s set to rank %d %q in %s", member.CharacterID, newRank.Number, newRank.Name, path)
	e.notifier.Notify(ctx, member.CharacterID, fmt.Sprintf("You are now rank %d %q in %s.", newRank.Number, newRank.Name, path))
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Member: &snapshot}, nil
}

func (e *Engine) memberSetPermissions(ctx context.Context, actorID string, cmd command.MemberSetPermissions) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !isLeader(ctx, resolver, faction.ID, actorID) {
		return command.Result{}, apperrors.New(apperrors.CodeRosterForbidden, "you do not have permission to alter member permissions")
	}
	member, rank, err := findMember(resolver, faction.ID, cmd.Character)
	if err != nil {
		return command.Result{}, err
	}
	permissions, err := permission.Validate(resolver.AllPermissions(faction), cmd.Permissions)
	if err != nil {
		return command.Result{}, err
	}

	member.Permissions = permissions
	member.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateMember(ctx, member); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := member.Snapshot(rank)
	message := fmt.Sprintf("%s permissions set to %q for %s", member.CharacterID, permissions.String(), path)
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Member: &snapshot}, nil
}

func (e *Engine) memberSetTitle(ctx context.Context, actorID string, cmd command.MemberSetTitle) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	characterID := strings.TrimSpace(cmd.Character)
	self := characterID != "" && characterID == actorID
	if !self && !resolver.HasPermission(ctx, faction, actorID, "roster") {
		return command.Result{}, apperrors.New(apperrors.CodeRosterForbidden, "you do not have permission to set member titles")
	}
	member, rank, err := findMember(resolver, faction.ID, cmd.Character)
	if err != nil {
		return command.Result{}, err
	}

	actorRank := effectiveRankOrLowest(ctx, resolver, faction.ID, actorID)
	if !self && actorRank >= rank.Number {
		return command.Result{}, apperrors.New(apperrors.CodeMemberAuthority, "you cannot set the title of an equal or higher-ranked member")
	}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return command.Result{}, apperrors.New(apperrors.CodeMemberTitleRequired, "you must provide a title")
	}

	member.Title = title
	member.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateMember(ctx, member); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := member.Snapshot(rank)
	message := fmt.Sprintf("%s title set to %q for %s", member.CharacterID, title, path)
	return command.Result{Message: message, Faction: factionRef(faction), Member: &snapshot}, nil
}

func (e *Engine) memberList(ctx context.Context, cmd command.MemberList) (command.Result, error) {
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

	members := resolver.View().Members(faction.ID)
	snapshots := make([]domain.MemberSnapshot, 0, len(members))
	for _, member := range members {
		rank, _ := resolver.View().Rank(member.RankID)
		snapshots = append(snapshots, member.Snapshot(rank))
	}
	return command.Result{
		Message: "members of " + resolver.View().Tree.FullPath(faction.ID),
		Faction: factionRef(faction),
		Members: snapshots,
	}, nil
}

// findMember returns the character's membership and rank in the faction.
func findMember(resolver *policy.Resolver, factionID, characterRef string) (domain.Member, domain.Rank, error) {
	characterID := strings.TrimSpace(characterRef)
	if characterID == "" {
		return domain.Member{}, domain.Rank{}, domain.ErrCharacterRequired
	}
	member, ok := resolver.View().Member(factionID, characterID)
	if !ok {
		return domain.Member{}, domain.Rank{}, apperrors.New(apperrors.CodeMemberMissing, "that character is not a member")
	}
	rank, ok := resolver.View().Rank(member.RankID)
	if !ok {
		return domain.Member{}, domain.Rank{}, errRankNotFound
	}
	return member, rank, nil
}

// effectiveRankOrLowest returns the actor's effective rank number, or the
// lowest possible authority when the actor holds no rank at all. A
// permission-holding non-member (for example through sub-faction grants) must
// never win an authority comparison.
func effectiveRankOrLowest(ctx context.Context, resolver *policy.Resolver, factionID, actorID string) int {
	number, ok := resolver.EffectiveRank(ctx, factionID, actorID)
	if !ok {
		return math.MaxInt
	}
	return number
}

// resolveRankRef resolves a rank reference that is either a number or an
// unambiguous name prefix.
func resolveRankRef(resolver *policy.Resolver, factionID, ref string) (domain.Rank, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Rank{}, domain.ErrRankNumberRequired
	}
	if number, err := strconv.Atoi(ref); err == nil {
		rank, ok := resolver.View().RankByNumber(factionID, number)
		if !ok {
			return domain.Rank{}, errRankNotFound
		}
		return rank, nil
	}

	ranks := resolver.View().Ranks(factionID)
	names := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		names = append(names, rank.Name)
	}
	name, ok := naming.MatchPrefix(ref, names)
	if !ok {
		return domain.Rank{}, apperrors.New(apperrors.CodeRankNotFound, "no rank found called: "+ref)
	}
	rank, _ := resolver.View().RankByName(factionID, name)
	return rank, nil
}
