package game

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-table/poker"
)

// stackedDeck deals the given cards first, followed by every other card in
// index order so the deck stays a complete permutation.
func stackedDeck(top string) func() *poker.Deck {
	return func() *poker.Deck {
		cards := poker.MustParseCards(top)
		set := poker.NewCardSet(cards...)
		for c := poker.Card(0); c < poker.DeckSize; c++ {
			if !set.Has(c) {
				cards = append(cards, c)
			}
		}
		return poker.NewDeckFromCards(cards)
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("hand_%d", n)
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		WithIDGenerator(sequentialIDs()),
	}
	return NewEngine(append(base, opts...)...)
}

// seatPlayers joins each name with the same stack.
func seatPlayers(t *testing.T, e *Engine, chips int, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, e.Join(name, chips))
	}
}

func totalChips(e *Engine) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.pot
	for _, s := range e.seats {
		if s != nil {
			total += s.Chips
		}
	}
	return total
}
