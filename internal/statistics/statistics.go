// Package statistics aggregates per-player results across the hands played
// at a table.
package statistics

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/lox/holdem-table/internal/game"
)

// Outcome is one player's result in one hand.
type Outcome struct {
	NetBB          float64 // Net big blinds won or lost
	NetChips       int
	WentToShowdown bool
	PotSize        int // Total chips paid out
}

// Statistics tracks a running summary of a player's outcomes
type Statistics struct {
	Hands    int
	SumBB    float64
	SumBB2   float64 // Sum of squares for variance calculation
	NetChips int

	ShowdownWins    int     // Hands won at showdown
	NonShowdownWins int     // Hands won without showdown
	ShowdownBB      float64 // BB from showdown (wins AND losses)
	NonShowdownBB   float64 // BB from hands that ended before showdown

	MaxPotChips int // Largest pot the player was dealt into
}

// Mean returns the arithmetic mean of all results in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return max(0, (s.SumBB2-float64(s.Hands)*mean*mean)/float64(s.Hands-1))
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates one outcome.
func (s *Statistics) Add(o Outcome) {
	s.Hands++
	s.SumBB += o.NetBB
	s.SumBB2 += o.NetBB * o.NetBB
	s.NetChips += o.NetChips

	if o.NetBB > 0 {
		if o.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if o.WentToShowdown {
		s.ShowdownBB += o.NetBB
	} else {
		s.NonShowdownBB += o.NetBB
	}

	s.MaxPotChips = max(s.MaxPotChips, o.PotSize)
}

// Tracker collects statistics for every player seen at one table. It is safe
// for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	hands     int
	showdowns int
	aborted   int
	players   map[string]*Statistics
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{players: make(map[string]*Statistics)}
}

// Record adds a finished hand. Aborted hands are counted but refund every
// contribution, so they add no player outcomes.
func (t *Tracker) Record(result *game.HandResult) {
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if result.Aborted {
		t.aborted++
		return
	}
	t.hands++
	if result.Showdown {
		t.showdowns++
	}

	pot := 0
	for _, paid := range result.Payouts {
		pot += paid
	}
	bb := float64(max(result.Blinds[1], 1))

	for _, p := range result.Players {
		stats, ok := t.players[p.Player]
		if !ok {
			stats = &Statistics{}
			t.players[p.Player] = stats
		}
		net := p.Final - p.Stack
		stats.Add(Outcome{
			NetBB:          float64(net) / bb,
			NetChips:       net,
			WentToShowdown: result.Showdown,
			PotSize:        pot,
		})
	}
}

// PlayerSummary is the reportable view of one player's statistics.
type PlayerSummary struct {
	Player          string  `json:"player"`
	Hands           int     `json:"hands"`
	NetChips        int     `json:"net_chips"`
	MeanBB          float64 `json:"mean_bb"`
	StdDevBB        float64 `json:"stddev_bb"`
	ShowdownWins    int     `json:"showdown_wins"`
	NonShowdownWins int     `json:"non_showdown_wins"`
	MaxPot          int     `json:"max_pot"`
}

// Summary is a snapshot of a tracker.
type Summary struct {
	Hands     int             `json:"hands"`
	Showdowns int             `json:"showdowns"`
	Aborted   int             `json:"aborted"`
	Players   []PlayerSummary `json:"players"`
}

// Summary returns every player's statistics sorted by player ID.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	sum := Summary{
		Hands:     t.hands,
		Showdowns: t.showdowns,
		Aborted:   t.aborted,
		Players:   make([]PlayerSummary, 0, len(t.players)),
	}
	for id, s := range t.players {
		sum.Players = append(sum.Players, PlayerSummary{
			Player:          id,
			Hands:           s.Hands,
			NetChips:        s.NetChips,
			MeanBB:          s.Mean(),
			StdDevBB:        s.StdDev(),
			ShowdownWins:    s.ShowdownWins,
			NonShowdownWins: s.NonShowdownWins,
			MaxPot:          s.MaxPotChips,
		})
	}
	slices.SortFunc(sum.Players, func(a, b PlayerSummary) int { return strings.Compare(a.Player, b.Player) })
	return sum
}
