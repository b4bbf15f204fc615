package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

// CreateInvitation inserts one invitation record.
func (s *Store) CreateInvitation(ctx context.Context, invitation domain.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO invitations (id, faction_id, character_id, inviter_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		invitation.ID,
		invitation.FactionID,
		invitation.CharacterID,
		invitation.InviterID,
		toMillis(invitation.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// DeleteInvitation removes one invitation record by ID.
func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("invitation id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return requireRow(result, "delete invitation")
}

// ListInvitations returns every invitation ordered by faction then character.
func (s *Store) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, faction_id, character_id, inviter_id, created_at
		   FROM invitations
		  ORDER BY faction_id ASC, character_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		var invitation domain.Invitation
		var createdAt int64
		if err := rows.Scan(
			&invitation.ID,
			&invitation.FactionID,
			&invitation.CharacterID,
			&invitation.InviterID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list invitations: %w", err)
		}
		invitation.CreatedAt = fromMillis(createdAt)
		out = append(out, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return out, nil
}

// AcceptInvitation removes the invitation and inserts the membership in one
// transaction.
func (s *Store) AcceptInvitation(ctx context.Context, invitationID string, member domain.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return fmt.Errorf("invitation id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept invitation: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, invitationID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("accept invitation: %w", err)
	}
	if err := requireRow(result, "accept invitation"); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := execInsertMember(ctx, tx, member); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept invitation: %w", err)
	}
	return nil
}

var _ storage.InvitationStore = (*Store)(nil)
