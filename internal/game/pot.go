package game

import (
	"slices"

	"github.com/lox/holdem-table/poker"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`          // Seat indices that may win this pot
	Winners  []int `json:"winners,omitempty"` // Filled in at distribution
}

// buildPots layers every seat's contribution by the all-in levels of the seats
// still contesting the hand. Each pot is contested only by live seats that
// paid into it at that level. Chips committed by folded seats above the
// highest live level go to the last pot.
func buildPots(seats []*Seat) []Pot {
	var levels []int
	for _, s := range seats {
		if s != nil && s.live() && s.Committed > 0 && !slices.Contains(levels, s.Committed) {
			levels = append(levels, s.Committed)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	total, layered, previous := 0, 0, 0
	for _, s := range seats {
		if s != nil && s.InHand {
			total += s.Committed
		}
	}
	for _, level := range levels {
		pot := Pot{}
		for _, s := range seats {
			if s == nil || !s.InHand {
				continue
			}
			pot.Amount += min(s.Committed, level) - min(s.Committed, previous)
			if s.live() && s.Committed >= level {
				pot.Eligible = append(pot.Eligible, s.Index)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
			layered += pot.Amount
		}
		previous = level
	}

	if rest := total - layered; rest > 0 || len(pots) == 0 {
		if len(pots) == 0 {
			var eligible []int
			for _, s := range seats {
				if s != nil && s.live() {
					eligible = append(eligible, s.Index)
				}
			}
			pots = append(pots, Pot{Eligible: eligible})
		}
		pots[len(pots)-1].Amount += rest
	}
	return pots
}

// splitPot divides amount among winners with floor division. Remaining odd
// chips go one at a time to the winners closest to the left of the button.
func splitPot(amount int, winners []int, button, slots int) map[int]int {
	shares := make(map[int]int, len(winners))
	if len(winners) == 0 {
		return shares
	}
	share := amount / len(winners)
	for _, w := range winners {
		shares[w] = share
	}

	remainder := amount % len(winners)
	for i := 1; i <= slots && remainder > 0; i++ {
		seat := (button + i) % slots
		if _, ok := shares[seat]; ok {
			shares[seat]++
			remainder--
		}
	}
	return shares
}

// awardPots ranks the live hands, distributes every pot and returns the payouts
// by seat index along with the evaluated hands.
func (e *Engine) awardPots() (map[int]int, map[int]poker.HandRank, []Pot, error) {
	ranks := make(map[int]poker.HandRank)
	for _, s := range e.seats {
		if s == nil || !s.live() {
			continue
		}
		r, err := poker.Rank(s.Hole, e.board)
		if err != nil {
			return nil, nil, nil, err
		}
		ranks[s.Index] = r
	}

	payouts := make(map[int]int)
	pots := buildPots(e.seats)
	for i := range pots {
		entries := make([]poker.Entry, 0, len(pots[i].Eligible))
		for _, seat := range pots[i].Eligible {
			entries = append(entries, poker.Entry{Seat: seat, Rank: ranks[seat]})
		}
		pots[i].Winners = poker.Winners(entries)
		for seat, amount := range splitPot(pots[i].Amount, pots[i].Winners, e.button, len(e.seats)) {
			payouts[seat] += amount
		}
	}
	return payouts, ranks, pots, nil
}
