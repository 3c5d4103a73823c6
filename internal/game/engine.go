package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-table/poker"
)

// Engine is the authoritative state of one table. All exported methods are
// safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	cfg    config
	logger *log.Logger

	seats  []*Seat // Fixed seating order, nil for an empty chair
	button int
	sb     int
	bb     int

	deck       *poker.Deck
	board      []poker.Card
	pot        int
	phase      Phase
	actor      int
	handID     string
	handNumber int
	inProgress bool
	startTotal int
	players    []HandPlayer
	actions    []ActionRecord
	result     *HandResult
}

// NewEngine creates an empty table.
func NewEngine(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		cfg:    cfg,
		logger: cfg.logger,
		seats:  make([]*Seat, cfg.maxSeats),
		button: -1,
		sb:     -1,
		bb:     -1,
		actor:  -1,
	}
}

// Join seats a player in the first free chair. A player joining while a hand
// is running waits for the next hand.
func (e *Engine) Join(id string, chips int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == "" {
		return fmt.Errorf("%w: empty player id", ErrInvalidAction)
	}
	if chips < 0 {
		return fmt.Errorf("%w: negative stack %d", ErrInvalidAction, chips)
	}
	if e.find(id) != nil {
		return fmt.Errorf("%w: %s", ErrSeatTaken, id)
	}

	for i, s := range e.seats {
		if s == nil {
			e.seats[i] = &Seat{ID: id, Index: i, Chips: chips}
			e.logger.Info("player seated", "player", id, "seat", i, "chips", chips)
			return nil
		}
	}
	return fmt.Errorf("%w: %d seats", ErrTableFull, len(e.seats))
}

// Leave removes a player and returns the chips they walk away with. A seat
// still contesting a hand is folded first; its chair is freed once the hand
// ends so that its contribution stays in the pot.
func (e *Engine) Leave(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.find(id)
	if s == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}

	if !e.inProgress || !s.InHand {
		e.seats[s.Index] = nil
		e.logger.Info("player left", "player", id, "chips", s.Chips)
		return s.Chips, nil
	}

	s.leaving = true
	if s.live() {
		s.Folded = true
		s.acted = true
		e.record(s, Fold, 0)
		e.logger.Info("player folded on leave", "player", id, "hand", e.handID)

		from := s.Index
		if e.actor >= 0 && e.actor != s.Index {
			// The current actor keeps the turn.
			from = e.ringPrev(e.actor)
		}
		if err := e.advance(from); err != nil {
			e.abortHand(err)
		}
	}

	if !e.inProgress {
		e.seats[s.Index] = nil
	}
	return s.Chips, nil
}

// StartHand shuffles a new deck, moves the button, posts blinds and deals
// hole cards to every seat with chips.
func (e *Engine) StartHand() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inProgress {
		return fmt.Errorf("%w: %s", ErrHandInProgress, e.handID)
	}

	players := 0
	for _, s := range e.seats {
		if s != nil && s.Chips > 0 && !s.leaving {
			players++
		}
	}
	if players < 2 {
		return fmt.Errorf("%w: %d seats with chips", ErrInsufficientSeats, players)
	}

	for _, s := range e.seats {
		if s != nil {
			s.resetForHand(s.Chips > 0 && !s.leaving)
		}
	}

	e.handNumber++
	e.handID = e.cfg.newID()
	e.deck = e.cfg.newDeck()
	e.board = nil
	e.pot = 0
	e.phase = Preflop
	e.result = nil
	e.actions = nil
	e.inProgress = true
	e.startTotal = e.handChips()

	e.button = e.seatAfter(e.button, (*Seat).dealtIn)
	if players == 2 {
		e.sb = e.button
	} else {
		e.sb = e.seatAfter(e.button, (*Seat).dealtIn)
	}
	e.bb = e.seatAfter(e.sb, (*Seat).dealtIn)

	e.players = e.players[:0]
	for i := 1; i <= len(e.seats); i++ {
		s := e.seats[(e.button+i)%len(e.seats)]
		if s != nil && s.InHand {
			e.players = append(e.players, HandPlayer{Seat: s.Index, Player: s.ID, Stack: s.Chips})
		}
	}
	e.postBlind(e.sb, e.cfg.smallBlind)
	e.postBlind(e.bb, e.cfg.bigBlind)

	e.logger.Info("hand started",
		"hand", e.handID,
		"number", e.handNumber,
		"players", players,
		"button", e.seats[e.button].ID)

	if err := e.dealHoleCards(); err != nil {
		e.abortHand(err)
		return err
	}
	if err := e.advance(e.bb); err != nil {
		e.abortHand(err)
		return err
	}
	return nil
}

// Act applies a betting decision from the current actor.
func (e *Engine) Act(id string, kind Action, amount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inProgress {
		return ErrHandOver
	}
	s := e.find(id)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}
	if e.actor < 0 {
		return ErrHandOver
	}
	if s.Index != e.actor {
		return fmt.Errorf("%w: waiting on %s", ErrOutOfTurn, e.seats[e.actor].ID)
	}

	moved := 0
	switch kind {
	case Fold:
		s.Folded = true
	case Check:
		if s.Bet != e.currentBet() {
			return fmt.Errorf("%w: cannot check facing %d", ErrInvalidAction, e.callAmount(s))
		}
	case Call:
		moved = e.placeBet(s, e.callAmount(s))
	case Raise:
		if amount <= 0 {
			return fmt.Errorf("%w: raise of %d", ErrInvalidAction, amount)
		}
		tableBet := e.currentBet()
		allIn := amount >= s.Chips
		if !allIn && s.Bet+amount <= tableBet {
			return fmt.Errorf("%w: raise to %d does not exceed %d", ErrInvalidAction, s.Bet+amount, tableBet)
		}
		moved = e.placeBet(s, amount)
		if s.Bet > tableBet {
			e.reopenAction(s)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidAction, kind)
	}
	s.acted = true
	e.record(s, kind, moved)

	e.logger.Debug("action",
		"hand", e.handID,
		"player", id,
		"action", kind,
		"bet", s.Bet,
		"pot", e.pot)

	if err := e.advance(s.Index); err != nil {
		e.abortHand(err)
		return err
	}
	return nil
}

func (e *Engine) postBlind(seat, amount int) {
	posted := e.placeBet(e.seats[seat], amount)
	for i := range e.players {
		if e.players[i].Seat == seat {
			e.players[i].Blind = posted
		}
	}
}

func (e *Engine) record(s *Seat, kind Action, moved int) {
	e.actions = append(e.actions, ActionRecord{
		Phase:  e.phase,
		Seat:   s.Index,
		Player: s.ID,
		Action: kind,
		Amount: moved,
		Bet:    s.Bet,
	})
}

// dealHoleCards deals two cards to every seat in the hand, starting left of
// the button.
func (e *Engine) dealHoleCards() error {
	for i := 1; i <= len(e.seats); i++ {
		s := e.seats[(e.button+i)%len(e.seats)]
		if s == nil || !s.InHand {
			continue
		}
		cards, err := e.deck.Deal(2)
		if err != nil {
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		s.Hole = cards
	}
	return e.verifyCards()
}

// verifyCards checks that hole cards, the board and the undealt deck form
// exactly one copy of every card.
func (e *Engine) verifyCards() error {
	var seen poker.CardSet
	var all []poker.Card
	for _, s := range e.seats {
		if s != nil && s.InHand {
			all = append(all, s.Hole...)
		}
	}
	all = append(all, e.board...)
	all = append(all, e.deck.Cards()...)

	for _, c := range all {
		if !c.Valid() || !seen.Add(c) {
			return fmt.Errorf("%w: duplicate or invalid card %s", ErrCorruptDeck, c)
		}
	}
	if seen != poker.FullDeck {
		return fmt.Errorf("%w: %d of %d cards accounted for", ErrCorruptDeck, seen.Len(), poker.DeckSize)
	}
	return nil
}

// checkConservation verifies that no chips were created or destroyed since
// the hand started.
func (e *Engine) checkConservation() error {
	if total := e.handChips(); total != e.startTotal {
		return fmt.Errorf("%w: %d chips in play, %d at start", ErrChipConservation, total, e.startTotal)
	}
	return nil
}

// handChips is the stacks of every seat dealt in plus the pot.
func (e *Engine) handChips() int {
	total := e.pot
	for _, s := range e.seats {
		if s != nil && s.InHand {
			total += s.Chips
		}
	}
	return total
}

// abortHand refunds every contribution and ends the hand after a fatal error.
func (e *Engine) abortHand(err error) {
	e.logger.Error("hand aborted",
		"hand", e.handID,
		"phase", e.phase,
		"pot", e.pot,
		"board", e.board,
		"err", err)

	for _, s := range e.seats {
		if s != nil && s.InHand {
			s.Chips += s.Committed
		}
	}
	e.pot = 0
	e.actor = -1

	result := e.newResult(false)
	result.Aborted = true
	result.Reason = err.Error()
	e.finishHand(result)
}

// Abort cancels the running hand and refunds every contribution. It does
// nothing between hands.
func (e *Engine) Abort(reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inProgress {
		return
	}
	e.abortHand(errors.New(reason))
}

// finishHand records the result and frees the chairs of departed players.
func (e *Engine) finishHand(result *HandResult) {
	for i, p := range result.Players {
		if s := e.seats[p.Seat]; s != nil && s.ID == p.Player {
			result.Players[i].Final = s.Chips
		}
	}
	e.result = result
	e.inProgress = false
	e.actor = -1

	for i, s := range e.seats {
		if s != nil && s.leaving {
			e.seats[i] = nil
		}
	}

	if !result.Aborted {
		e.logger.Info("hand complete",
			"hand", e.handID,
			"winners", result.Winners,
			"showdown", result.Showdown)
	}
}

func (e *Engine) find(id string) *Seat {
	for _, s := range e.seats {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}

// seatAfter walks the ring clockwise from the chair after from and returns
// the first occupied chair matching pred, or -1.
func (e *Engine) seatAfter(from int, pred func(*Seat) bool) int {
	n := len(e.seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if s := e.seats[idx]; s != nil && pred(s) {
			return idx
		}
	}
	return -1
}

func (e *Engine) ringPrev(i int) int {
	return (i - 1 + len(e.seats)) % len(e.seats)
}

func (e *Engine) liveCount() int {
	count := 0
	for _, s := range e.seats {
		if s != nil && s.live() {
			count++
		}
	}
	return count
}

// Phase returns the current betting round.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Pot returns the chips committed to the current hand.
func (e *Engine) Pot() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pot
}

// Board returns a copy of the community cards.
func (e *Engine) Board() []poker.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]poker.Card(nil), e.board...)
}

// CurrentActor returns the ID of the seat to act, or "" between hands.
func (e *Engine) CurrentActor() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.actor < 0 || e.seats[e.actor] == nil {
		return ""
	}
	return e.seats[e.actor].ID
}

// InProgress reports whether a hand is running.
func (e *Engine) InProgress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inProgress
}

// HandID returns the identifier of the current or most recent hand.
func (e *Engine) HandID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handID
}

// Result returns the outcome of the most recent hand, or nil while a hand is
// running or before the first hand.
func (e *Engine) Result() *HandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// CallAmount returns the chips id must add to match the current bet.
func (e *Engine) CallAmount(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.find(id)
	if s == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}
	return e.callAmount(s), nil
}

// IsRoundSettled reports whether every live seat has matched the current bet
// or is all-in.
func (e *Engine) IsRoundSettled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isRoundSettled()
}

// Stacks returns the chips in front of every seated player. Chips already in
// the pot of a running hand are not included.
func (e *Engine) Stacks() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	stacks := make(map[string]int)
	for _, s := range e.seats {
		if s != nil {
			stacks[s.ID] = s.Chips
		}
	}
	return stacks
}

// Players returns the number of occupied chairs.
func (e *Engine) Players() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, s := range e.seats {
		if s != nil {
			count++
		}
	}
	return count
}

// Playable returns the number of seats that would be dealt into a new hand.
func (e *Engine) Playable() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, s := range e.seats {
		if s != nil && s.Chips > 0 && !s.leaving {
			count++
		}
	}
	return count
}

// MaxSeats returns the table size.
func (e *Engine) MaxSeats() int {
	return len(e.seats)
}
