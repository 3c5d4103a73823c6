package game

import (
	"slices"

	"github.com/lox/holdem-table/poker"
)

// HandResult records how a hand ended.
type HandResult struct {
	HandID     string         `json:"hand_id"`
	HandNumber int            `json:"hand_number"`
	Winners    []string       `json:"winners"`
	Payouts    map[string]int `json:"payouts"`
	Showdown   bool           `json:"showdown"`
	Board      []poker.Card   `json:"board"`
	Hands      []ShowdownHand `json:"hands,omitempty"`
	Pots       []Pot          `json:"pots,omitempty"`
	Aborted    bool           `json:"aborted,omitempty"`
	Reason     string         `json:"reason,omitempty"`

	Button  int            `json:"button"`
	Blinds  [2]int         `json:"blinds"`
	Players []HandPlayer   `json:"players"`
	Actions []ActionRecord `json:"actions"`
}

// HandPlayer is a seat dealt into the hand, listed in dealing order starting
// left of the button.
type HandPlayer struct {
	Seat   int    `json:"seat"`
	Player string `json:"player"`
	Stack  int    `json:"stack"` // Before blinds
	Blind  int    `json:"blind,omitempty"`
	Final  int    `json:"final"`
}

// ActionRecord is one betting decision. Amount is the chips the action put
// in and Bet the seat's round bet afterwards.
type ActionRecord struct {
	Phase  Phase  `json:"phase"`
	Seat   int    `json:"seat"`
	Player string `json:"player"`
	Action Action `json:"action"`
	Amount int    `json:"amount"`
	Bet    int    `json:"bet"`
}

// ShowdownHand is a hand revealed at showdown.
type ShowdownHand struct {
	Seat   int            `json:"seat"`
	Player string         `json:"player"`
	Hole   []poker.Card   `json:"hole"`
	Rank   poker.HandRank `json:"rank"`
}

func (e *Engine) newResult(showdown bool) *HandResult {
	return &HandResult{
		HandID:     e.handID,
		HandNumber: e.handNumber,
		Payouts:    make(map[string]int),
		Showdown:   showdown,
		Board:      append([]poker.Card(nil), e.board...),
		Button:     e.button,
		Blinds:     [2]int{e.cfg.smallBlind, e.cfg.bigBlind},
		Players:    slices.Clone(e.players),
		Actions:    slices.Clone(e.actions),
	}
}

// winnerIDs lists every seat that won at least one pot, in seat order.
func winnerIDs(seats []*Seat, pots []Pot) []string {
	var indices []int
	for _, p := range pots {
		for _, w := range p.Winners {
			if !slices.Contains(indices, w) {
				indices = append(indices, w)
			}
		}
	}
	slices.Sort(indices)

	ids := make([]string, 0, len(indices))
	for _, i := range indices {
		ids = append(ids, seats[i].ID)
	}
	return ids
}
