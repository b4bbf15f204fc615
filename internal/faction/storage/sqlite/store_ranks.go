package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

// CreateRank inserts one rank record.
func (s *Store) CreateRank(ctx context.Context, rank domain.Rank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return execInsertRank(ctx, s.sqlDB, rank)
}

func execInsertRank(ctx context.Context, db execer, rank domain.Rank) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO ranks (id, faction_id, number, name, permissions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rank.ID,
		rank.FactionID,
		rank.Number,
		rank.Name,
		rank.Permissions.String(),
		toMillis(rank.CreatedAt),
		toMillis(rank.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create rank: %w", err)
	}
	return nil
}

// UpdateRank replaces one rank record by ID.
func (s *Store) UpdateRank(ctx context.Context, rank domain.Rank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE ranks
		    SET number = ?, name = ?, permissions = ?, updated_at = ?
		  WHERE id = ?`,
		rank.Number,
		rank.Name,
		rank.Permissions.String(),
		toMillis(rank.UpdatedAt),
		rank.ID,
	)
	if err != nil {
		return fmt.Errorf("update rank: %w", err)
	}
	return requireRow(result, "update rank")
}

// DeleteRank removes one rank record by ID.
func (s *Store) DeleteRank(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("rank id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM ranks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rank: %w", err)
	}
	return requireRow(result, "delete rank")
}

// ListRanks returns every rank ordered by faction then number.
func (s *Store) ListRanks(ctx context.Context) ([]domain.Rank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, faction_id, number, name, permissions, created_at, updated_at
		   FROM ranks
		  ORDER BY faction_id ASC, number ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list ranks: %w", err)
	}
	defer rows.Close()

	var out []domain.Rank
	for rows.Next() {
		var rank domain.Rank
		var permissions string
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&rank.ID,
			&rank.FactionID,
			&rank.Number,
			&rank.Name,
			&permissions,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list ranks: %w", err)
		}
		rank.Permissions = permission.Parse(permissions)
		rank.CreatedAt = fromMillis(createdAt)
		rank.UpdatedAt = fromMillis(updatedAt)
		out = append(out, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ranks: %w", err)
	}
	return out, nil
}

var _ storage.RankStore = (*Store)(nil)
