// Package game implements the authoritative Texas Hold'em state machine for a
// single table.
//
// The main type is Engine. It owns the seats, the deck, the community cards,
// betting state and the pot for one table, and moves a hand through
// preflop, flop, turn, river and showdown.
//
// # Basic Usage
//
//	e := game.NewEngine(game.WithBlinds(5, 10))
//	_ = e.Join("alice", 1000)
//	_ = e.Join("bob", 1000)
//	if err := e.StartHand(); err != nil {
//	    // fewer than two seats with chips
//	}
//	err := e.Act("alice", game.Call, 0)
//	view := e.Snapshot("alice") // bob's hole cards are masked
//
// # Deterministic Testing
//
// Pass a seeded RNG or a stacked deck:
//
//	e := game.NewEngine(game.WithRNG(randutil.New(42)))
//	e := game.NewEngine(game.WithDeckFactory(func() *poker.Deck {
//	    return poker.NewDeckFromCards(cards)
//	}))
//
// # Concurrency
//
// Every exported method takes the engine's mutex and applies a complete
// transition, including any phase change and pot distribution, before
// returning. Engines share no state, so separate tables run in parallel.
// Nothing in this package performs I/O.
package game
