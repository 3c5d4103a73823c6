package ledger

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Postgres stores stacks in a PostgreSQL database.
type Postgres struct {
	pool         *pgxpool.Pool
	defaultStack int
}

// OpenPostgres connects to dsn and creates the players table if needed.
func OpenPostgres(ctx context.Context, dsn string, defaultStack int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Postgres{pool: pool, defaultStack: defaultStack}, nil
}

// Load inserts the default stack for new players and returns the stored value.
func (p *Postgres) Load(ctx context.Context, playerID string) (int, error) {
	if err := validate(playerID, 0); err != nil {
		return 0, err
	}
	if _, err := p.pool.Exec(ctx, `
		INSERT INTO players(id, chips) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, playerID, p.defaultStack); err != nil {
		return 0, fmt.Errorf("provision %s: %w", playerID, err)
	}

	var chips int
	if err := p.pool.QueryRow(ctx, `SELECT chips FROM players WHERE id = $1`, playerID).Scan(&chips); err != nil {
		return 0, fmt.Errorf("load %s: %w", playerID, err)
	}
	return chips, nil
}

func (p *Postgres) Save(ctx context.Context, playerID string, chips int) error {
	if err := validate(playerID, chips); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO players(id, chips) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		  SET chips = EXCLUDED.chips,
		      updated_at = now()
	`, playerID, chips)
	if err != nil {
		return fmt.Errorf("save %s: %w", playerID, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
