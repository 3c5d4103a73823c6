package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain in the deck.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck dealt from the top.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a new deck shuffled with the provided RNG.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, DeckSize)}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	d.shuffle(rng)
	return d
}

// NewDeckFromCards creates an unshuffled deck whose first card is dealt first.
// Used to stack decks for deterministic tests.
func NewDeckFromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// shuffle performs an in-place Fisher-Yates shuffle. Each index draws
// uniformly from [0, i], so every permutation is equally likely.
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n <= 0 {
		return nil, fmt.Errorf("deal %d cards: count must be positive", n)
	}
	if d.Remaining() < n {
		return nil, fmt.Errorf("deal %d cards with %d remaining: %w", n, d.Remaining(), ErrDeckExhausted)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Cards returns a copy of the undealt cards in dealing order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards[d.next:]...)
}
