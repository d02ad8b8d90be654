package sqlite

import (
	"OpenFront/internal/world/entity"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type snapshotRow struct {
	GameID  string `db:"game_id"`
	Version uint64 `db:"version"`
	Blob    []byte `db:"blob"`
	SavedAt int64  `db:"saved_at"`
}

type GameRepository struct {
	conn *sqlx.DB
}

// NewGameRepository 建表后返回；连接由调用方关闭。
func NewGameRepository(conn *sqlx.DB) (*GameRepository, error) {
	if conn == nil {
		return nil, errors.New("sqlite conn is nil")
	}
	r := &GameRepository{conn: conn}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *GameRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_snapshot (
		game_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		blob BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);
	`
	_, err := r.conn.Exec(schema)
	return err
}

func (r *GameRepository) Load(ctx context.Context, id entity.GameID) (*entity.GamePersistSnapshot, error) {
	var row snapshotRow
	err := r.conn.GetContext(ctx, &row,
		`SELECT game_id, version, blob, saved_at FROM game_snapshot WHERE game_id = ?`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.GamePersistSnapshot{
		Version: row.Version,
		GameID:  entity.GameID(row.GameID),
		Blob:    row.Blob,
		SavedAt: row.SavedAt,
	}, nil
}

// Save 旧版本不会覆盖新版本。
func (r *GameRepository) Save(ctx context.Context, s *entity.GamePersistSnapshot) error {
	if s == nil {
		return nil
	}
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO game_snapshot (game_id, version, blob, saved_at)
		VALUES (:game_id, :version, :blob, :saved_at)
		ON CONFLICT(game_id) DO UPDATE SET
			version = excluded.version,
			blob = excluded.blob,
			saved_at = excluded.saved_at
		WHERE excluded.version >= game_snapshot.version`,
		snapshotRow{GameID: string(s.GameID), Version: s.Version, Blob: s.Blob, SavedAt: s.SavedAt})
	if err != nil {
		return err
	}
	return tx.Commit()
}
