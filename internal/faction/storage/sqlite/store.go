// Package sqlite provides a SQLite-backed faction storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/permission"
	"github.com/louisbranch/ironhold/internal/faction/storage"
	"github.com/louisbranch/ironhold/internal/faction/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/ironhold/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists faction state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite faction store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateFaction inserts one faction record.
func (s *Store) CreateFaction(ctx context.Context, faction domain.Faction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	return execInsertFaction(ctx, s.sqlDB, faction)
}

// CreateFactionWithRanks inserts a faction and its seed ranks in one
// transaction.
func (s *Store) CreateFactionWithRanks(ctx context.Context, faction domain.Faction, ranks []domain.Rank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create faction: %w", err)
	}
	if err := execInsertFaction(ctx, tx, faction); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, rank := range ranks {
		if err := execInsertRank(ctx, tx, rank); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create faction: %w", err)
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execInsertFaction(ctx context.Context, db execer, faction domain.Faction) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO factions (
		   id, key, parent_id, deleted,
		   universal_permissions, extra_permissions, sub_permissions, start_rank,
		   created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		faction.ID,
		faction.Key,
		faction.ParentID,
		boolToInt(faction.Deleted),
		faction.Config.UniversalPermissions.String(),
		faction.Config.ExtraPermissions.String(),
		faction.Config.SubPermissions.String(),
		faction.Config.StartRank,
		toMillis(faction.CreatedAt),
		toMillis(faction.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create faction: %w", err)
	}
	return nil
}

// UpdateFaction replaces one faction record by ID.
func (s *Store) UpdateFaction(ctx context.Context, faction domain.Faction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE factions
		    SET key = ?, parent_id = ?, deleted = ?,
		        universal_permissions = ?, extra_permissions = ?, sub_permissions = ?, start_rank = ?,
		        updated_at = ?
		  WHERE id = ?`,
		faction.Key,
		faction.ParentID,
		boolToInt(faction.Deleted),
		faction.Config.UniversalPermissions.String(),
		faction.Config.ExtraPermissions.String(),
		faction.Config.SubPermissions.String(),
		faction.Config.StartRank,
		toMillis(faction.UpdatedAt),
		faction.ID,
	)
	if err != nil {
		return fmt.Errorf("update faction: %w", err)
	}
	return requireRow(result, "update faction")
}

// GetFaction returns one faction by ID, including soft-deleted ones.
func (s *Store) GetFaction(ctx context.Context, id string) (domain.Faction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Faction{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Faction{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Faction{}, fmt.Errorf("faction id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, key, parent_id, deleted,
		        universal_permissions, extra_permissions, sub_permissions, start_rank,
		        created_at, updated_at
		   FROM factions
		  WHERE id = ?`,
		id,
	)
	faction, err := scanFaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Faction{}, storage.ErrNotFound
		}
		return domain.Faction{}, fmt.Errorf("get faction: %w", err)
	}
	return faction, nil
}

// ListFactions returns every faction ordered by ID.
func (s *Store) ListFactions(ctx context.Context) ([]domain.Faction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, key, parent_id, deleted,
		        universal_permissions, extra_permissions, sub_permissions, start_rank,
		        created_at, updated_at
		   FROM factions
		  ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	defer rows.Close()

	var out []domain.Faction
	for rows.Next() {
		faction, err := scanFaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list factions: %w", err)
		}
		out = append(out, faction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFaction(row rowScanner) (domain.Faction, error) {
	var faction domain.Faction
	var deleted int
	var universal, extra, sub string
	var createdAt, updatedAt int64
	if err := row.Scan(
		&faction.ID,
		&faction.Key,
		&faction.ParentID,
		&deleted,
		&universal,
		&extra,
		&sub,
		&faction.Config.StartRank,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Faction{}, err
	}
	faction.Deleted = deleted != 0
	faction.Config.UniversalPermissions = permission.Parse(universal)
	faction.Config.ExtraPermissions = permission.Parse(extra)
	faction.Config.SubPermissions = permission.Parse(sub)
	faction.CreatedAt = fromMillis(createdAt)
	faction.UpdatedAt = fromMillis(updatedAt)
	return faction, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func requireRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
