package phh_test

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/lox/holdem-table/internal/game"
	"github.com/lox/holdem-table/internal/phh"
	"github.com/lox/holdem-table/poker"
)

func TestFormatAction(t *testing.T) {
	tests := []struct {
		name     string
		position int
		action   game.ActionRecord
		want     string
	}{
		{"fold", 0, game.ActionRecord{Action: game.Fold}, "p1 f"},
		{"check", 1, game.ActionRecord{Action: game.Check}, "p2 cc"},
		{"call", 3, game.ActionRecord{Action: game.Call, Amount: 40, Bet: 50}, "p4 cc"},
		{"raise", 0, game.ActionRecord{Action: game.Raise, Amount: 110, Bet: 120}, "p1 cbr 120"},
		{"unknown", 2, game.ActionRecord{Action: game.Action(9), Amount: 10}, "# p3 unknown 10"},
	}

	for _, tt := range tests {
		if got := phh.FormatAction(tt.position, tt.action); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}

func TestFromResult(t *testing.T) {
	result := &game.HandResult{
		HandID:   "hand-00042",
		Showdown: true,
		Board:    poker.MustParseCards("2c 7s 9h Jc 4s"),
		Button:   0,
		Blinds:   [2]int{5, 10},
		Payouts:  map[string]int{"bob": 60},
		Players: []game.HandPlayer{
			{Seat: 1, Player: "bob", Stack: 200, Blind: 5, Final: 230},
			{Seat: 2, Player: "carol", Stack: 200, Blind: 10, Final: 170},
			{Seat: 0, Player: "alice", Stack: 200, Final: 200},
		},
		Actions: []game.ActionRecord{
			{Phase: game.Preflop, Seat: 0, Action: game.Fold},
			{Phase: game.Preflop, Seat: 1, Action: game.Raise, Amount: 25, Bet: 30},
			{Phase: game.Preflop, Seat: 2, Action: game.Call, Amount: 20, Bet: 30},
			{Phase: game.Flop, Seat: 1, Action: game.Check},
			{Phase: game.Flop, Seat: 2, Action: game.Check},
			{Phase: game.River, Seat: 1, Action: game.Check},
			{Phase: game.River, Seat: 2, Action: game.Check},
		},
		Hands: []game.ShowdownHand{
			{Seat: 1, Player: "bob", Hole: poker.MustParseCards("Ah Ad")},
			{Seat: 2, Player: "carol", Hole: poker.MustParseCards("Kh Kd")},
		},
	}

	at := time.Date(2025, time.November, 14, 15, 22, 0, 0, time.UTC)
	hand := phh.FromResult("main", 6, result, at)

	wantActions := []string{
		"d dh p1 AhAd",
		"d dh p2 KhKd",
		"d dh p3 ????",
		"p3 f",
		"p1 cbr 30",
		"p2 cc",
		"d db 2c7s9h",
		"p1 cc",
		"p2 cc",
		"d db Jc4s",
		"p1 cc",
		"p2 cc",
		"p1 sm AhAd",
		"p2 sm KhKd",
	}
	if !slices.Equal(hand.Actions, wantActions) {
		t.Fatalf("actions mismatch\ngot:  %q\nwant: %q", hand.Actions, wantActions)
	}
	if !slices.Equal(hand.Players, []string{"bob", "carol", "alice"}) {
		t.Fatalf("players = %v", hand.Players)
	}
	if !slices.Equal(hand.Seats, []int{2, 3, 1}) {
		t.Fatalf("seats = %v", hand.Seats)
	}
	if !slices.Equal(hand.BlindsOrStraddles, []int{5, 10, 0}) {
		t.Fatalf("blinds = %v", hand.BlindsOrStraddles)
	}
	if !slices.Equal(hand.Winnings, []int{60, 0, 0}) {
		t.Fatalf("winnings = %v", hand.Winnings)
	}
	if !slices.Equal(hand.FinishingStacks, []int{230, 170, 200}) {
		t.Fatalf("finishing stacks = %v", hand.FinishingStacks)
	}
	if hand.MinBet != 10 || hand.Variant != "NT" || hand.SeatCount != 6 {
		t.Fatalf("header = %+v", hand)
	}
	if hand.Time != "15:22:00" || hand.Day != 14 || hand.Month != 11 || hand.Year != 2025 {
		t.Fatalf("time = %s %d/%d/%d", hand.Time, hand.Day, hand.Month, hand.Year)
	}
}

func TestFromResultRunsOutBoardAfterAllIn(t *testing.T) {
	result := &game.HandResult{
		HandID: "h",
		Board:  poker.MustParseCards("2c 7s 9h Jc 4s"),
		Blinds: [2]int{5, 10},
		Players: []game.HandPlayer{
			{Seat: 1, Player: "bob", Stack: 100, Blind: 10},
			{Seat: 0, Player: "alice", Stack: 100, Blind: 5},
		},
		Actions: []game.ActionRecord{
			{Phase: game.Preflop, Seat: 0, Action: game.Raise, Amount: 95, Bet: 100},
			{Phase: game.Preflop, Seat: 1, Action: game.Call, Amount: 90, Bet: 100},
		},
	}

	hand := phh.FromResult("main", 2, result, time.Time{})
	want := []string{
		"d dh p1 ????",
		"d dh p2 ????",
		"p2 cbr 100",
		"p1 cc",
		"d db 2c7s9hJc4s",
	}
	if !slices.Equal(hand.Actions, want) {
		t.Fatalf("actions mismatch\ngot:  %q\nwant: %q", hand.Actions, want)
	}
	if hand.Time != "" || hand.Year != 0 {
		t.Fatalf("zero time should be omitted, got %s %d", hand.Time, hand.Year)
	}
}

func TestEncodeHandHistory(t *testing.T) {
	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "default",
		SeatCount:         3,
		Seats:             []int{1, 2, 3},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		FinishingStacks:   []int{200, 200, 200},
		Winnings:          []int{0, 0, 0},
		Actions: []string{
			"d dh p1 AhKh",
			"d dh p2 7c2d",
			"d dh p3 QsJs",
			"p1 cbr 6",
			"p2 f",
			"p3 cc",
		},
		Players:  []string{"alice", "bob", "charlie"},
		HandID:   "hand-00042",
		Time:     "15:22:00",
		TimeZone: "UTC",
		Day:      14,
		Month:    11,
		Year:     2025,
	}

	var buf bytes.Buffer
	if err := phh.Encode(&buf, hand); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	got := buf.String()
	want := "" +
		"variant = \"NT\"\n" +
		"table = \"default\"\n" +
		"seat_count = 3\n" +
		"seats = [1, 2, 3]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"finishing_stacks = [200, 200, 200]\n" +
		"winnings = [0, 0, 0]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 7c2d\", \"d dh p3 QsJs\", \"p1 cbr 6\", \"p2 f\", \"p3 cc\"]\n" +
		"players = [\"alice\", \"bob\", \"charlie\"]\n" +
		"hand = \"hand-00042\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 11\n" +
		"year = 2025\n"

	if got != want {
		t.Fatalf("Encode output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}

	if err := phh.Encode(&buf, nil); err == nil {
		t.Fatal("expected error encoding nil hand")
	}
}
