package game

import (
	"reflect"
	"testing"
)

func TestBuildPotsSingleLevel(t *testing.T) {
	t.Parallel()

	seats := []*Seat{
		{Index: 0, InHand: true, Committed: 50},
		{Index: 1, InHand: true, Committed: 50},
		nil,
		{Index: 3, InHand: true, Committed: 20, Folded: true},
	}

	pots := buildPots(seats)
	if len(pots) != 1 {
		t.Fatalf("Expected 1 pot, got %d", len(pots))
	}
	if pots[0].Amount != 120 {
		t.Errorf("Pot should be 120 (50+50+20), got %d", pots[0].Amount)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{0, 1}) {
		t.Errorf("Folded seat must not be eligible, got %v", pots[0].Eligible)
	}
}

func TestBuildPotsLayersAllIns(t *testing.T) {
	t.Parallel()

	seats := []*Seat{
		{Index: 0, InHand: true, Committed: 25, AllIn: true},
		{Index: 1, InHand: true, Committed: 100},
		{Index: 2, InHand: true, Committed: 60, AllIn: true},
		{Index: 3, InHand: true, Committed: 100},
	}

	pots := buildPots(seats)
	want := []Pot{
		{Amount: 100, Eligible: []int{0, 1, 2, 3}},
		{Amount: 105, Eligible: []int{1, 2, 3}},
		{Amount: 80, Eligible: []int{1, 3}},
	}
	if !reflect.DeepEqual(pots, want) {
		t.Errorf("Expected %+v, got %+v", want, pots)
	}

	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	if total != 285 {
		t.Errorf("Pots should sum to every contribution (285), got %d", total)
	}
}

func TestBuildPotsFoldedOverContribution(t *testing.T) {
	t.Parallel()

	// Seat 2 bet 200 and folded after seat 0 went all-in for 50.
	seats := []*Seat{
		{Index: 0, InHand: true, Committed: 50, AllIn: true},
		{Index: 1, InHand: true, Committed: 80},
		{Index: 2, InHand: true, Committed: 200, Folded: true},
	}

	pots := buildPots(seats)
	want := []Pot{
		{Amount: 150, Eligible: []int{0, 1}},
		{Amount: 180, Eligible: []int{1}},
	}
	if !reflect.DeepEqual(pots, want) {
		t.Errorf("Expected %+v, got %+v", want, pots)
	}
}

func TestBuildPotsNoChips(t *testing.T) {
	t.Parallel()

	seats := []*Seat{
		{Index: 0, InHand: true},
		{Index: 1, InHand: true},
		{Index: 2},
	}

	pots := buildPots(seats)
	if len(pots) != 1 || pots[0].Amount != 0 {
		t.Fatalf("Expected one empty pot, got %+v", pots)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{0, 1}) {
		t.Errorf("Seats dealt in should contest the empty pot, got %v", pots[0].Eligible)
	}
}

func TestSplitPot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  int
		winners []int
		button  int
		want    map[int]int
	}{
		{"single winner", 100, []int{2}, 0, map[int]int{2: 100}},
		{"even split", 100, []int{0, 3}, 0, map[int]int{0: 50, 3: 50}},
		{"odd chip left of button", 101, []int{0, 3}, 1, map[int]int{0: 50, 3: 51}},
		{"odd chip wraps", 101, []int{0, 3}, 3, map[int]int{0: 51, 3: 50}},
		{"two odd chips three ways", 302, []int{1, 2, 4}, 2, map[int]int{1: 101, 2: 100, 4: 101}},
		{"two odd chips from seat after button", 302, []int{1, 2, 4}, 0, map[int]int{1: 101, 2: 101, 4: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPot(tt.amount, tt.winners, tt.button, 6)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitPot(%d, %v, %d) = %v, want %v", tt.amount, tt.winners, tt.button, got, tt.want)
			}
		})
	}
}
