// Package ledger persists player chip stacks between table sessions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultStack is the buy-in given to players the ledger has never seen.
const DefaultStack = 1000

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown ledger driver")

// Ledger stores the chip count of each player.
type Ledger interface {
	// Load returns the player's stack, provisioning the default buy-in for
	// players seen for the first time.
	Load(ctx context.Context, playerID string) (int, error)
	// Save records the player's current stack.
	Save(ctx context.Context, playerID string, chips int) error
	Close() error
}

// Open creates a ledger for the named driver: "memory", "postgres" or
// "sqlite". A non-positive defaultStack falls back to DefaultStack.
func Open(ctx context.Context, driver, dsn string, defaultStack int) (Ledger, error) {
	if defaultStack <= 0 {
		defaultStack = DefaultStack
	}
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemory(defaultStack), nil
	case "postgres", "postgresql", "pgx":
		return OpenPostgres(ctx, dsn, defaultStack)
	case "sqlite", "sqlite3":
		return OpenSQLite(ctx, dsn, defaultStack)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func validate(playerID string, chips int) error {
	if playerID == "" {
		return errors.New("empty player id")
	}
	if chips < 0 {
		return fmt.Errorf("negative stack %d for %s", chips, playerID)
	}
	return nil
}
