package phh

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdem-table/internal/game"
	"github.com/lox/holdem-table/poker"
)

// Variant is the PHH code for no-limit Texas Hold'em.
const Variant = "NT"

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromResult converts a finished hand into PHH form. Hole cards that were
// never shown are written as unknown.
func FromResult(table string, seatCount int, result *game.HandResult, at time.Time) *HandHistory {
	n := len(result.Players)
	hand := &HandHistory{
		Variant:           Variant,
		Table:             table,
		SeatCount:         seatCount,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            max(result.Blinds[1], 1),
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Players:           make([]string, n),
		HandID:            result.HandID,
	}
	if !at.IsZero() {
		at = at.UTC()
		hand.Time = at.Format(time.TimeOnly)
		hand.TimeZone = "UTC"
		hand.Day, hand.Month, hand.Year = at.Day(), int(at.Month()), at.Year()
	}

	position := make(map[int]int, n)
	shown := make(map[int][]poker.Card, len(result.Hands))
	for _, h := range result.Hands {
		shown[h.Seat] = h.Hole
	}
	for i, p := range result.Players {
		position[p.Seat] = i
		hand.Seats[i] = p.Seat + 1
		hand.BlindsOrStraddles[i] = p.Blind
		hand.StartingStacks[i] = p.Stack
		hand.FinishingStacks[i] = p.Final
		hand.Winnings[i] = result.Payouts[p.Player]
		hand.Players[i] = p.Player
		hand.Actions = append(hand.Actions, fmt.Sprintf("d dh p%d %s", i+1, formatCards(shown[p.Seat], 2)))
	}

	dealt := 0
	dealBoard := func(upTo int) {
		upTo = min(upTo, len(result.Board))
		if upTo > dealt {
			hand.Actions = append(hand.Actions, "d db "+formatCards(result.Board[dealt:upTo], 0))
			dealt = upTo
		}
	}
	for _, a := range result.Actions {
		dealBoard(a.Phase.BoardSize())
		hand.Actions = append(hand.Actions, FormatAction(position[a.Seat], a))
	}
	dealBoard(len(result.Board))

	for _, h := range result.Hands {
		hand.Actions = append(hand.Actions, fmt.Sprintf("p%d sm %s", position[h.Seat]+1, formatCards(h.Hole, 2)))
	}
	return hand
}

// FormatAction renders one decision for the player at position (zero based).
// Raises are written as the total round bet they raise to.
func FormatAction(position int, a game.ActionRecord) string {
	player := fmt.Sprintf("p%d", position+1)
	switch a.Action {
	case game.Fold:
		return player + " f"
	case game.Check, game.Call:
		return player + " cc"
	case game.Raise:
		return fmt.Sprintf("%s cbr %d", player, a.Bet)
	}
	return fmt.Sprintf("# %s %s %d", player, a.Action, a.Amount)
}

// formatCards concatenates cards PHH style ("AhKh"). Missing cards are padded
// with "??" up to want.
func formatCards(cards []poker.Card, want int) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	for i := len(cards); i < want; i++ {
		b.WriteString("??")
	}
	return b.String()
}
