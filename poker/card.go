package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single playing card encoded as suit*13 + rank (0-51).
type Card uint8

// Suit constants
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

// Rank constants (0-12 for 2-A)
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
	// DeckSize is the number of distinct cards in a standard deck.
	DeckSize = 52
)

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(suit*13 + rank)
}

// Rank returns the rank of the card (0-12).
func (c Card) Rank() uint8 {
	return uint8(c) % 13
}

// Suit returns the suit of the card (0-3).
func (c Card) Suit() uint8 {
	return uint8(c) / 13
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c < DeckSize
}

// String returns the two character form, e.g. "As", "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}
	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// MustParseCards parses space separated cards and panics on error. Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}

// MarshalText encodes the card in its two character form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card value %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a two character card.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// CardSet is a set of cards, one bit per card.
type CardSet uint64

// NewCardSet builds a set from cards. Duplicates collapse.
func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s.Add(c)
	}
	return s
}

// Add inserts c and reports whether it was not already present.
func (s *CardSet) Add(c Card) bool {
	bit := CardSet(1) << c
	if *s&bit != 0 {
		return false
	}
	*s |= bit
	return true
}

// Has reports whether c is in the set.
func (s CardSet) Has(c Card) bool {
	return s&(CardSet(1)<<c) != 0
}

// Len returns the number of cards in the set.
func (s CardSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// FullDeck is the set of all 52 cards.
const FullDeck CardSet = 1<<DeckSize - 1
