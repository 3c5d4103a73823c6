package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLedgers(t *testing.T) map[string]Ledger {
	t.Helper()
	ctx := context.Background()

	ledgers := map[string]Ledger{"memory": NewMemory(1000)}

	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"), 1000)
	require.NoError(t, err)
	ledgers["sqlite"] = sqlite

	if dsn := os.Getenv("HOLDEM_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := OpenPostgres(ctx, dsn, 1000)
		require.NoError(t, err)
		ledgers["postgres"] = pg
	}

	t.Cleanup(func() {
		for _, l := range ledgers {
			_ = l.Close()
		}
	})
	return ledgers
}

func TestLedgerProvisionsAndSaves(t *testing.T) {
	t.Parallel()

	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			player := "ledger-test-" + name

			chips, err := l.Load(ctx, player)
			require.NoError(t, err)
			assert.Equal(t, 1000, chips, "new players get the default stack")

			require.NoError(t, l.Save(ctx, player, 1250))
			chips, err = l.Load(ctx, player)
			require.NoError(t, err)
			assert.Equal(t, 1250, chips)

			require.NoError(t, l.Save(ctx, player, 0))
			chips, err = l.Load(ctx, player)
			require.NoError(t, err)
			assert.Equal(t, 0, chips, "a busted player stays busted")
		})
	}
}

func TestLedgerRejectsBadInput(t *testing.T) {
	t.Parallel()

	for name, l := range openLedgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := l.Load(ctx, "")
			assert.Error(t, err)
			assert.Error(t, l.Save(ctx, "", 10))
			assert.Error(t, l.Save(ctx, "alice", -1))
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := OpenSQLite(ctx, path, 500)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "alice", 742))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path, 500)
	require.NoError(t, err)
	defer second.Close()

	chips, err := second.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 742, chips)

	chips, err = second.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 500, chips)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	l, err := Open(ctx, "", "", 0)
	require.NoError(t, err)
	chips, err := l.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultStack, chips)

	l, err = Open(ctx, "sqlite", filepath.Join(t.TempDir(), "open.db"), 250)
	require.NoError(t, err)
	defer l.Close()
	assert.IsType(t, &SQLite{}, l)

	_, err = Open(ctx, "sqlite", "", 250)
	assert.Error(t, err)

	_, err = Open(ctx, "redis", "", 0)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
