package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

// CreateMember inserts one membership record.
func (s *Store) CreateMember(ctx context.Context, member domain.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return execInsertMember(ctx, s.sqlDB, member)
}

func execInsertMember(ctx context.Context, db execer, member domain.Member) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO members (id, faction_id, character_id, rank_id, permissions, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.FactionID,
		member.CharacterID,
		member.RankID,
		member.Permissions.String(),
		member.Title,
		toMillis(member.CreatedAt),
		toMillis(member.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// UpdateMember replaces one membership record by ID.
func (s *Store) UpdateMember(ctx context.Context, member domain.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE members
		    SET rank_id = ?, permissions = ?, title = ?, updated_at = ?
		  WHERE id = ?`,
		member.RankID,
		member.Permissions.String(),
		member.Title,
		toMillis(member.UpdatedAt),
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(result, "update member")
}

// DeleteMember removes one membership record by ID.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("member id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return requireRow(result, "delete member")
}

// ListMembers returns every membership ordered by faction then character.
func (s *Store) ListMembers(ctx context.Context) ([]domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, faction_id, character_id, rank_id, permissions, title, created_at, updated_at
		   FROM members
		  ORDER BY faction_id ASC, character_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		out = append(out, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

func scanMember(row *sql.Rows) (domain.Member, error) {
	var member domain.Member
	var permissions string
	var createdAt, updatedAt int64
	if err := row.Scan(
		&member.ID,
		&member.FactionID,
		&member.CharacterID,
		&member.RankID,
		&permissions,
		&member.Title,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Member{}, err
	}
	member.Permissions = permission.Parse(permissions)
	member.CreatedAt = fromMillis(createdAt)
	member.UpdatedAt = fromMillis(updatedAt)
	return member, nil
}

var _ storage.MemberStore = (*Store)(nil)
