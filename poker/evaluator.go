package poker

import (
	"errors"
	"fmt"
	"math/bits"

	ph "github.com/paulhankin/poker"
)

// ErrInvalidHand is returned when a hand cannot be ranked.
var ErrInvalidHand = errors.New("invalid hand")

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of the best five card hand. Higher scores are stronger;
// equal scores tie, kickers included.
type HandRank struct {
	Score       int16    `json:"score"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Compare returns 1 if r beats other, -1 if other wins, 0 for a tie.
func (r HandRank) Compare(other HandRank) int {
	switch {
	case r.Score > other.Score:
		return 1
	case r.Score < other.Score:
		return -1
	}
	return 0
}

func (r HandRank) String() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Category.String()
}

// Rank evaluates two hole cards against the revealed board. The board must hold
// 3 to 5 cards; ranking is only meaningful with at least five cards in total.
func Rank(hole, board []Card) (HandRank, error) {
	if len(hole) != 2 {
		return HandRank{}, fmt.Errorf("%w: need 2 hole cards, got %d", ErrInvalidHand, len(hole))
	}
	if len(board) < 3 || len(board) > 5 {
		return HandRank{}, fmt.Errorf("%w: need 3-5 board cards, got %d", ErrInvalidHand, len(board))
	}

	all := make([]Card, 0, 7)
	all = append(all, hole...)
	all = append(all, board...)

	var seen CardSet
	libCards := make([]ph.Card, len(all))
	for i, c := range all {
		if !c.Valid() {
			return HandRank{}, fmt.Errorf("%w: bad card value %d", ErrInvalidHand, uint8(c))
		}
		if !seen.Add(c) {
			return HandRank{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		lc, err := toLibrary(c)
		if err != nil {
			return HandRank{}, err
		}
		libCards[i] = lc
	}

	rank := HandRank{
		Score:    bestScore(libCards),
		Category: categorize(seen),
	}
	if desc, err := ph.Describe(libCards); err == nil {
		rank.Description = desc
	}
	return rank, nil
}

// Entry pairs a seat with its evaluated hand.
type Entry struct {
	Seat int
	Rank HandRank
}

// Winners returns every seat holding the maximum rank, in entry order.
func Winners(entries []Entry) []int {
	if len(entries) == 0 {
		return nil
	}
	best := entries[0].Rank
	for _, e := range entries[1:] {
		if e.Rank.Compare(best) > 0 {
			best = e.Rank
		}
	}
	var seats []int
	for _, e := range entries {
		if e.Rank.Compare(best) == 0 {
			seats = append(seats, e.Seat)
		}
	}
	return seats
}

func toLibrary(c Card) (ph.Card, error) {
	suits := [...]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}
	// The library numbers ranks 1-13 with the ace low.
	rank := ph.Rank(c.Rank() + 2)
	if c.Rank() == Ace {
		rank = 1
	}
	return ph.MakeCard(suits[c.Suit()], rank)
}

func bestScore(cards []ph.Card) int16 {
	switch len(cards) {
	case 7:
		var seven [7]ph.Card
		copy(seven[:], cards)
		return ph.Eval7(&seven)
	case 5:
		var five [5]ph.Card
		copy(five[:], cards)
		return ph.Eval5(&five)
	}

	// Six cards: best of the five card hands that leave one card out.
	best := int16(-1 << 15)
	var five [5]ph.Card
	for skip := range cards {
		n := 0
		for i, c := range cards {
			if i != skip {
				five[n] = c
				n++
			}
		}
		if s := ph.Eval5(&five); s > best {
			best = s
		}
	}
	return best
}

// categorize derives the hand category from per-suit rank masks.
func categorize(set CardSet) Category {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := range 4 {
		mask := uint16(set>>(suit*13)) & 0x1FFF
		suitMasks[suit] = mask
		rankMask |= mask
	}

	flush := false
	for _, mask := range suitMasks {
		if bits.OnesCount16(mask) >= 5 {
			if straightHigh(mask) > 0 {
				return StraightFlush
			}
			flush = true
		}
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	quads := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	trips := tripCandidates &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	switch {
	case quads != 0:
		return FourOfAKind
	case trips != 0 && (pairs != 0 || bits.OnesCount16(trips) > 1):
		return FullHouse
	case flush:
		return Flush
	case straightHigh(rankMask) > 0:
		return Straight
	case trips != 0:
		return ThreeOfAKind
	case bits.OnesCount16(pairs) >= 2:
		return TwoPair
	case pairs != 0:
		return Pair
	}
	return HighCard
}

// straightHigh returns the high-card rank of the best straight in the mask (0 if none).
func straightHigh(mask uint16) uint8 {
	const wheel = 0x100F // A-2-3-4-5
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4
	}
	if mask&wheel == wheel {
		return Five
	}
	return 0
}
