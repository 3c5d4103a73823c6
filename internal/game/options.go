package game

import (
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-table/internal/gameid"
	"github.com/lox/holdem-table/internal/randutil"
	"github.com/lox/holdem-table/poker"
)

// DefaultMaxSeats is the table size used when WithMaxSeats is not given.
const DefaultMaxSeats = 10

// Option configures an Engine during creation.
type Option func(*config)

type config struct {
	smallBlind int
	bigBlind   int
	maxSeats   int
	newDeck    func() *poker.Deck
	newID      func() string
	logger     *log.Logger
}

// WithBlinds sets the forced bets posted at the start of every hand. Zero
// blinds are allowed; the hand then opens with no money in the pot.
func WithBlinds(small, big int) Option {
	return func(c *config) {
		c.smallBlind = max(small, 0)
		c.bigBlind = max(big, 0)
	}
}

// WithMaxSeats sets the number of seats at the table.
func WithMaxSeats(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.maxSeats = n
		}
	}
}

// WithRNG shuffles every deck from rng. Use a seeded generator for
// reproducible hands.
func WithRNG(rng *rand.Rand) Option {
	return func(c *config) {
		c.newDeck = func() *poker.Deck { return poker.NewDeck(rng) }
	}
}

// WithDeckFactory replaces deck creation entirely, for stacked decks in tests.
func WithDeckFactory(f func() *poker.Deck) Option {
	return func(c *config) {
		c.newDeck = f
	}
}

// WithIDGenerator overrides how hand IDs are created.
func WithIDGenerator(f func() string) Option {
	return func(c *config) {
		c.newID = f
	}
}

// WithLogger sets the logger used for hand lifecycle events.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func defaultConfig() config {
	rng := randutil.NewSecure()
	return config{
		maxSeats: DefaultMaxSeats,
		newDeck:  func() *poker.Deck { return poker.NewDeck(rng) },
		newID:    gameid.Generate,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
}
