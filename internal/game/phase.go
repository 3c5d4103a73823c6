package game

import (
	"fmt"

	"github.com/lox/holdem-table/poker"
)

// Phase represents the betting round of a hand.
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
)

var phaseNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (p Phase) String() string {
	if p < Preflop || p > Showdown {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// BoardSize is the number of community cards visible in phase p.
func (p Phase) BoardSize() int {
	switch p {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	default:
		return 5
	}
}

// advance moves the hand forward after a state change. It awards an
// uncontested pot, closes finished rounds (dealing every remaining street
// when nobody is left to bet) or hands the action to the next seat after
// from that still owes a decision.
func (e *Engine) advance(from int) error {
	if e.liveCount() <= 1 {
		return e.awardUncontested()
	}

	if !e.roundClosed() {
		e.actor = e.seatAfter(from, (*Seat).needsAction)
		return nil
	}

	for e.roundClosed() {
		if e.phase == River {
			return e.showdown()
		}
		if err := e.nextPhase(); err != nil {
			return err
		}
	}
	e.actor = e.seatAfter(e.bb, (*Seat).needsAction)
	return nil
}

// nextPhase resets the round and reveals the next street.
func (e *Engine) nextPhase() error {
	next := e.phase + 1
	cards, err := e.deck.Deal(next.BoardSize() - len(e.board))
	if err != nil {
		return fmt.Errorf("dealing %s: %w", next, err)
	}

	e.resetRound()
	e.board = append(e.board, cards...)
	e.phase = next
	if err := e.verifyCards(); err != nil {
		return err
	}

	e.logger.Debug("street dealt", "hand", e.handID, "phase", e.phase, "board", e.board)
	return nil
}

// showdown evaluates every live hand and distributes the pots.
func (e *Engine) showdown() error {
	e.phase = Showdown
	e.actor = -1

	if err := e.checkConservation(); err != nil {
		return err
	}
	payouts, ranks, pots, err := e.awardPots()
	if err != nil {
		return err
	}

	paid := 0
	for _, amount := range payouts {
		paid += amount
	}
	if paid != e.pot {
		return fmt.Errorf("%w: paid %d from a pot of %d", ErrChipConservation, paid, e.pot)
	}

	result := e.newResult(true)
	result.Pots = pots
	for _, s := range e.seats {
		if s == nil || !s.InHand {
			continue
		}
		if amount, ok := payouts[s.Index]; ok {
			s.Chips += amount
			result.Payouts[s.ID] = amount
		}
		if rank, ok := ranks[s.Index]; ok {
			result.Hands = append(result.Hands, ShowdownHand{
				Seat:   s.Index,
				Player: s.ID,
				Hole:   append([]poker.Card(nil), s.Hole...),
				Rank:   rank,
			})
		}
	}
	result.Winners = winnerIDs(e.seats, pots)
	e.pot = 0
	e.finishHand(result)
	return nil
}

// awardUncontested gives the whole pot to the last seat standing. No more
// cards are dealt and the phase is left where the hand ended.
func (e *Engine) awardUncontested() error {
	if err := e.checkConservation(); err != nil {
		return err
	}

	var winner *Seat
	for _, s := range e.seats {
		if s != nil && s.live() {
			winner = s
			break
		}
	}
	if winner == nil {
		return fmt.Errorf("%w: no live seat remains", ErrChipConservation)
	}

	result := e.newResult(false)
	winner.Chips += e.pot
	result.Winners = []string{winner.ID}
	result.Payouts[winner.ID] = e.pot
	e.pot = 0
	e.actor = -1
	e.finishHand(result)
	return nil
}
