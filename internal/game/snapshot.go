package game

import "github.com/lox/holdem-table/poker"

// SeatView is one seat as seen by a particular viewer.
type SeatView struct {
	ID         string       `json:"id"`
	Index      int          `json:"index"`
	Chips      int          `json:"chips"`
	Hole       []poker.Card `json:"hole,omitempty"`
	Bet        int          `json:"bet"`
	Committed  int          `json:"committed"`
	Folded     bool         `json:"folded"`
	AllIn      bool         `json:"all_in"`
	SittingOut bool         `json:"sitting_out"`
}

// Snapshot is the table state sent to clients after every change.
type Snapshot struct {
	HandID       string       `json:"hand_id"`
	HandNumber   int          `json:"hand_number"`
	Seats        []SeatView   `json:"seats"`
	Board        []poker.Card `json:"board"`
	Pot          int          `json:"pot"`
	CurrentActor string       `json:"current_actor"`
	CallAmount   int          `json:"call_amount"`
	Phase        Phase        `json:"phase"`
	HandOver     bool         `json:"hand_over"`
	Button       int          `json:"button"`
	SmallBlind   int          `json:"small_blind"`
	BigBlind     int          `json:"big_blind"`
	Result       *HandResult  `json:"result,omitempty"`
}

// Snapshot returns the table as seen by viewer. Hole cards are visible only
// for the viewer's own seat, plus every seat still in the hand once it has
// reached showdown. An empty viewer sees no hole cards before showdown.
func (e *Engine) Snapshot(viewer string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		HandID:     e.handID,
		HandNumber: e.handNumber,
		Board:      append([]poker.Card(nil), e.board...),
		Pot:        e.pot,
		Phase:      e.phase,
		HandOver:   !e.inProgress,
		Button:     e.button,
		SmallBlind: e.sb,
		BigBlind:   e.bb,
		Result:     e.result,
	}
	if e.actor >= 0 && e.seats[e.actor] != nil {
		snap.CurrentActor = e.seats[e.actor].ID
	}

	for _, s := range e.seats {
		if s == nil {
			continue
		}
		view := SeatView{
			ID:         s.ID,
			Index:      s.Index,
			Chips:      s.Chips,
			Bet:        s.Bet,
			Committed:  s.Committed,
			Folded:     s.Folded,
			AllIn:      s.AllIn,
			SittingOut: !s.InHand,
		}
		revealed := e.phase == Showdown && s.live()
		if s.ID == viewer || revealed {
			view.Hole = append([]poker.Card(nil), s.Hole...)
		}
		if s.ID == viewer && e.inProgress {
			snap.CallAmount = e.callAmount(s)
		}
		snap.Seats = append(snap.Seats, view)
	}
	return snap
}
