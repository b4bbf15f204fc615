package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/command"
	"github.com/louisbranch/ironhold/internal/faction/domain"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
)

func (e *Engine) inviteExtend(ctx context.Context, actorID string, cmd command.InviteExtend) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !resolver.HasPermission(ctx, faction, actorID, "invite") {
		return command.Result{}, apperrors.New(apperrors.CodeInviteForbidden, "you do not have permission to invite members")
	}
	characterID := strings.TrimSpace(cmd.Character)
	if characterID == "" {
		return command.Result{}, domain.ErrCharacterRequired
	}
	if _, ok := resolver.View().Member(faction.ID, characterID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeMemberExists, "that character is already a member")
	}
	if _, ok := resolver.View().Invitation(faction.ID, characterID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeInviteExists, "that character already has an invitation")
	}

	invitation, err := domain.CreateInvitation(domain.CreateInvitationInput{
		FactionID:   faction.ID,
		CharacterID: characterID,
		InviterID:   actorID,
	}, e.now, e.newID)
	if err != nil {
		return command.Result{}, err
	}
	if err := e.store.CreateInvitation(ctx, invitation); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := invitation.Snapshot()
	message := fmt.Sprintf("%s invited to %s", characterID, path)
	e.notifier.Notify(ctx, characterID, "You have been invited to join "+path+".")
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Invitation: &snapshot}, nil
}

func (e *Engine) inviteRescind(ctx context.Context, actorID string, cmd command.InviteRescind) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	if !resolver.HasPermission(ctx, faction, actorID, "invite") {
		return command.Result{}, apperrors.New(apperrors.CodeInviteForbidden, "you do not have permission to rescind invitations")
	}
	characterID := strings.TrimSpace(cmd.Character)
	if characterID == "" {
		return command.Result{}, domain.ErrCharacterRequired
	}
	invitation, ok := resolver.View().Invitation(faction.ID, characterID)
	if !ok {
		return command.Result{}, apperrors.New(apperrors.CodeInviteMissing, "that character does not have an invitation")
	}

	if err := e.store.DeleteInvitation(ctx, invitation.ID); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	message := fmt.Sprintf("%s invitation to %s rescinded", characterID, path)
	e.notifier.Notify(ctx, characterID, "Your invitation to join "+path+" has been rescinded.")
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) inviteAccept(ctx context.Context, actorID string, cmd command.InviteAccept) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	invitation, ok := resolver.View().Invitation(faction.ID, actorID)
	if !ok {
		return command.Result{}, apperrors.New(apperrors.CodeInviteMissing, "you do not have an invitation to that faction")
	}
	if _, ok := resolver.View().Member(faction.ID, actorID); ok {
		return command.Result{}, apperrors.New(apperrors.CodeMemberExists, "you are already a member of that faction")
	}
	rank, ok := resolver.View().RankByNumber(faction.ID, faction.Config.StartRank)
	if !ok {
		return command.Result{}, apperrors.New(apperrors.CodeStartRankInvalid, fmt.Sprintf("that faction does not have a rank %d", faction.Config.StartRank))
	}

	member, err := domain.CreateMember(domain.CreateMemberInput{
		FactionID:   faction.ID,
		CharacterID: actorID,
		RankID:      rank.ID,
	}, e.now, e.newID)
	if err != nil {
		return command.Result{}, err
	}
	if err := e.store.AcceptInvitation(ctx, invitation.ID, member); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	snapshot := member.Snapshot(rank)
	message := fmt.Sprintf("%s joined %s as rank %d %q", actorID, path, rank.Number, rank.Name)
	e.notifier.Notify(ctx, actorID, fmt.Sprintf("You have joined %s as rank %d %q.", path, rank.Number, rank.Name))
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction), Member: &snapshot}, nil
}

func (e *Engine) inviteReject(ctx context.Context, actorID string, cmd command.InviteReject) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, faction, unlock, err := e.resolveAndLock(ctx, cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	defer unlock()

	invitation, ok := resolver.View().Invitation(faction.ID, actorID)
	if !ok {
		return command.Result{}, apperrors.New(apperrors.CodeInviteMissing, "you do not have an invitation to that faction")
	}

	if err := e.store.DeleteInvitation(ctx, invitation.ID); err != nil {
		return command.Result{}, err
	}

	path := resolver.View().Tree.FullPath(faction.ID)
	message := fmt.Sprintf("%s rejected invitation to %s", actorID, path)
	e.notifier.Notify(ctx, actorID, "You have rejected the invitation to join "+path+".")
	e.notifier.Alert(ctx, message)
	return command.Result{Message: message, Faction: factionRef(faction)}, nil
}

func (e *Engine) inviteList(ctx context.Context, actorID string, cmd command.InviteList) (command.Result, error) {
	e.structural.RLock()
	defer e.structural.RUnlock()

	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return command.Result{}, err
	}

	if strings.TrimSpace(cmd.Faction) == "" {
		invitations := resolver.View().InvitationsFor(actorID)
		snapshots := make([]domain.InvitationSnapshot, 0, len(invitations))
		for _, invitation := range invitations {
			snapshots = append(snapshots, invitation.Snapshot())
		}
		return command.Result{
			Message:     fmt.Sprintf("%d invitations pending", len(snapshots)),
			Invitations: snapshots,
		}, nil
	}

	faction, err := resolver.View().Tree.Resolve(cmd.Faction)
	if err != nil {
		return command.Result{}, err
	}
	invitations := resolver.View().Invitations(faction.ID)
	snapshots := make([]domain.InvitationSnapshot, 0, len(invitations))
	for _, invitation := range invitations {
		snapshots = append(snapshots, invitation.Snapshot())
	}
	return command.Result{
		Message:     "invitations for " + resolver.View().Tree.FullPath(faction.ID),
		Faction:     factionRef(faction),
		Invitations: snapshots,
	}, nil
}
