package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite stores stacks in a local SQLite file.
type SQLite struct {
	db           *sql.DB
	defaultStack int
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string, defaultStack int) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite ledger requires a database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent tables.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return &SQLite{db: db, defaultStack: defaultStack}, nil
}

func (s *SQLite) Load(ctx context.Context, playerID string) (int, error) {
	if err := validate(playerID, 0); err != nil {
		return 0, err
	}
	var chips int
	err := s.db.QueryRowContext(ctx, "SELECT chips FROM players WHERE id = ?", playerID).Scan(&chips)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.Save(ctx, playerID, s.defaultStack); err != nil {
			return 0, err
		}
		return s.defaultStack, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", playerID, err)
	}
	return chips, nil
}

func (s *SQLite) Save(ctx context.Context, playerID string, chips int) error {
	if err := validate(playerID, chips); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO players (id, chips) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET chips=excluded.chips, updated_at=CURRENT_TIMESTAMP;
	`, playerID, chips)
	if err != nil {
		return fmt.Errorf("save %s: %w", playerID, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
