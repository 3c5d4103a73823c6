package game

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-table/poker"
)

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	}
	return "unknown"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts an action name into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
}

// Seat is a player's chair at the table. Index is the stable seat number and
// never changes while the player stays seated.
type Seat struct {
	ID        string
	Index     int
	Chips     int
	Hole      []poker.Card
	Bet       int // Committed in the current betting round
	Committed int // Committed over the whole hand
	Folded    bool
	AllIn     bool
	InHand    bool // Dealt into the current hand

	acted   bool
	leaving bool
}

// live reports whether the seat still contests the pot.
func (s *Seat) live() bool {
	return s.InHand && !s.Folded
}

// canAct reports whether the seat can still make betting decisions.
func (s *Seat) canAct() bool {
	return s.live() && !s.AllIn
}

func (s *Seat) resetForHand(dealtIn bool) {
	s.Hole = nil
	s.Bet = 0
	s.Committed = 0
	s.Folded = false
	s.AllIn = false
	s.InHand = dealtIn
	s.acted = false
}

// needsAction reports whether the seat still owes a decision this round.
func (s *Seat) needsAction() bool {
	return s.canAct() && !s.acted
}

// dealtIn reports whether the seat was dealt into the current hand.
func (s *Seat) dealtIn() bool {
	return s.InHand
}
