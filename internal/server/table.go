package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-table/internal/fileutil"
	"github.com/lox/holdem-table/internal/game"
	"github.com/lox/holdem-table/internal/ledger"
	"github.com/lox/holdem-table/internal/phh"
	"github.com/lox/holdem-table/internal/statistics"
	"github.com/lox/holdem-table/poker"
)

var (
	// ErrNoChips rejects a player whose stored stack is empty.
	ErrNoChips = errors.New("no chips left")
	// ErrTableClosed is returned after the table has been shut down.
	ErrTableClosed = errors.New("table closed")
)

// Notifier delivers table messages to every connection following a table.
// build is called once per recipient with that recipient's player ID so each
// client receives its own view.
type Notifier interface {
	Deliver(tableID string, build func(viewer string) (*Message, error))
}

// TableOptions configures a Table.
type TableOptions struct {
	Config        TableConfig
	Ledger        ledger.Ledger
	Notifier      Notifier
	Clock         quartz.Clock
	Logger        *log.Logger
	ActionTimeout time.Duration // Zero disables the timeout
	HandDelay     time.Duration
	HistoryDir    string // Empty disables hand history files
	EngineOptions []game.Option
}

// Table runs one engine and serializes every event that touches it: client
// joins, leaves and actions, plus the action timeout and the delay between
// hands. Ledger I/O happens here, never inside the engine.
type Table struct {
	ID string

	cfg      TableConfig
	opts     TableOptions
	ledger   ledger.Ledger
	notifier Notifier
	clock    quartz.Clock
	logger   *log.Logger
	stats    *statistics.Tracker

	mu          sync.Mutex
	engine      *game.Engine
	actionTimer *quartz.Timer
	nextHand    *quartz.Timer
	hands       int
	closed      bool

	// departed holds the stack saved for each player who left the running
	// hand, so a later abort can credit their refund.
	departed map[string]int
}

// NewTable creates a table with an empty engine.
func NewTable(opts TableOptions) *Table {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.NewMemory(ledger.DefaultStack)
	}
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	t := &Table{
		ID:       opts.Config.Name,
		cfg:      opts.Config,
		opts:     opts,
		ledger:   opts.Ledger,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		logger:   opts.Logger.WithPrefix("table").With("table", opts.Config.Name),
		stats:    statistics.NewTracker(),
		departed: make(map[string]int),
	}
	t.engine = t.newEngine()
	return t
}

func (t *Table) newEngine() *game.Engine {
	opts := []game.Option{
		game.WithBlinds(t.cfg.SmallBlind, t.cfg.BigBlind),
		game.WithMaxSeats(t.cfg.MaxPlayers),
		game.WithLogger(t.logger),
	}
	return game.NewEngine(append(opts, t.opts.EngineOptions...)...)
}

// Join seats a player with the stack stored in the ledger and starts a hand
// once enough players are seated.
func (t *Table) Join(ctx context.Context, playerID string) (game.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return game.Snapshot{}, ErrTableClosed
	}

	chips, err := t.ledger.Load(ctx, playerID)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("loading stack: %w", err)
	}
	if chips <= 0 {
		return game.Snapshot{}, fmt.Errorf("%w: %s", ErrNoChips, playerID)
	}
	if err := t.engine.Join(playerID, chips); err != nil {
		return game.Snapshot{}, err
	}

	t.logger.Info("Player joined", "player", playerID, "chips", chips)
	t.maybeStartHand(ctx)
	t.broadcastState()
	return t.engine.Snapshot(playerID), nil
}

// Leave removes a player, folding their hand if needed, and stores the chips
// they leave with.
func (t *Table) Leave(ctx context.Context, playerID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Close already saved every stack.
	if t.closed {
		return 0, ErrTableClosed
	}

	inHand := t.engine.InProgress()
	chips, err := t.engine.Leave(playerID)
	if err != nil {
		return 0, err
	}
	if err := t.ledger.Save(ctx, playerID, chips); err != nil {
		t.logger.Error("Failed to save stack", "player", playerID, "chips", chips, "error", err)
	}
	t.logger.Info("Player left", "player", playerID, "chips", chips)

	if inHand {
		t.departed[playerID] = chips
		t.afterChange(ctx)
	} else {
		t.resetIfShortHanded()
	}
	t.broadcastState()
	return chips, nil
}

// Act applies a player's decision. Rejected actions change nothing and are
// only reported to the caller.
func (t *Table) Act(ctx context.Context, playerID string, action game.Action, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTableClosed
	}
	if err := t.engine.Act(playerID, action, amount); err != nil {
		if isFatal(err) {
			t.afterChange(ctx)
			t.broadcastState()
		}
		return err
	}

	t.afterChange(ctx)
	t.broadcastState()
	return nil
}

// Snapshot returns the table as seen by viewer.
func (t *Table) Snapshot(viewer string) game.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Snapshot(viewer)
}

// Info summarizes the table for listings.
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := "waiting"
	switch {
	case t.closed:
		status = "closed"
	case t.engine.InProgress():
		status = "playing"
	}
	return TableInfo{
		ID:          t.ID,
		PlayerCount: t.engine.Players(),
		MaxPlayers:  t.cfg.MaxPlayers,
		MinPlayers:  t.cfg.MinPlayers,
		Stakes:      fmt.Sprintf("%d/%d", t.cfg.SmallBlind, t.cfg.BigBlind),
		Status:      status,
		HandsPlayed: t.hands,
	}
}

// Stats summarizes every player's results at this table.
func (t *Table) Stats() statistics.Summary {
	return t.stats.Summary()
}

// Close stops the timers, refunds any running hand and stores every seated
// player's stack.
func (t *Table) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.stopTimers()

	var errs []error
	if t.engine.InProgress() {
		t.engine.Abort("table closed")
		errs = append(errs, t.creditDeparted(ctx, t.engine.Result())...)
	}
	for player, chips := range t.engine.Stacks() {
		if err := t.ledger.Save(ctx, player, chips); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", player, err))
		}
	}
	t.logger.Info("Table closed", "hands", t.hands)
	return errors.Join(errs...)
}

// afterChange reacts to an engine transition: it finishes a completed hand or
// rearms the action timer for whoever acts next.
func (t *Table) afterChange(ctx context.Context) {
	if t.engine.InProgress() {
		t.armActionTimer()
		return
	}
	t.finishHand(ctx)
}

// maybeStartHand starts a hand when none is running or scheduled and enough
// players with chips are seated.
func (t *Table) maybeStartHand(ctx context.Context) {
	if t.closed || t.engine.InProgress() || t.nextHand != nil {
		return
	}
	if t.engine.Playable() < t.cfg.MinPlayers {
		return
	}
	t.startHand(ctx)
}

func (t *Table) startHand(ctx context.Context) {
	err := t.engine.StartHand()
	switch {
	case errors.Is(err, game.ErrInsufficientSeats):
		t.logger.Info("Waiting for players", "seated", t.engine.Players())
		return
	case err != nil:
		t.logger.Error("Failed to start hand", "error", err)
	}
	t.afterChange(ctx)
}

// finishHand persists stacks and the hand history, announces the result and
// schedules the next hand.
func (t *Table) finishHand(ctx context.Context) {
	t.stopActionTimer()

	result := t.engine.Result()
	if result == nil {
		return
	}
	t.hands++
	t.stats.Record(result)

	for player, chips := range t.engine.Stacks() {
		if err := t.ledger.Save(ctx, player, chips); err != nil {
			t.logger.Error("Failed to save stack", "player", player, "chips", chips, "error", err)
		}
	}
	for _, err := range t.creditDeparted(ctx, result) {
		t.logger.Error("Failed to credit departed player", "error", err)
	}
	t.writeHistory(result)

	msg, err := NewMessage(MessageTypeHandEnd, HandEndData{TableID: t.ID, Result: result})
	if err != nil {
		t.logger.Error("Failed to create hand end message", "error", err)
	} else {
		t.notifier.Deliver(t.ID, func(string) (*Message, error) { return msg, nil })
	}

	t.scheduleNextHand()
	t.resetIfShortHanded()
}

// creditDeparted settles players who left during the hand that produced
// result. Their stack was saved when they left; an abort refunds their
// contribution afterwards, so the difference is added to whatever the ledger
// holds now.
func (t *Table) creditDeparted(ctx context.Context, result *game.HandResult) []error {
	defer clear(t.departed)
	if result == nil {
		return nil
	}

	var errs []error
	for _, p := range result.Players {
		saved, ok := t.departed[p.Player]
		if !ok || p.Final == saved {
			continue
		}
		current, err := t.ledger.Load(ctx, p.Player)
		if err == nil {
			err = t.ledger.Save(ctx, p.Player, current+p.Final-saved)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("credit %s: %w", p.Player, err))
			continue
		}
		t.logger.Info("Refund credited", "player", p.Player, "chips", p.Final-saved)
	}
	return errs
}

// writeHistory stores the result as JSON next to a PHH rendering of the hand.
func (t *Table) writeHistory(result *game.HandResult) {
	if t.opts.HistoryDir == "" {
		return
	}
	dir := filepath.Join(t.opts.HistoryDir, t.ID)
	path, err := fileutil.WriteJSON(dir, result.HandID+".json", result)
	if err != nil {
		t.logger.Error("Failed to write hand history", "hand", result.HandID, "error", err)
		return
	}
	t.logger.Debug("Hand history written", "path", path)

	if result.Aborted {
		return
	}
	data, err := phh.EncodeToBytes(phh.FromResult(t.ID, t.cfg.MaxPlayers, result, t.clock.Now()))
	if err == nil {
		err = fileutil.WriteFileAtomic(filepath.Join(dir, result.HandID+".phh"), data, 0o644)
	}
	if err != nil {
		t.logger.Error("Failed to write PHH history", "hand", result.HandID, "error", err)
	}
}

func (t *Table) scheduleNextHand() {
	if t.closed || t.nextHand != nil {
		return
	}
	t.nextHand = t.clock.AfterFunc(t.opts.HandDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		t.nextHand = nil
		if t.closed {
			return
		}
		t.maybeStartHand(context.Background())
		t.broadcastState()
	})
}

// armActionTimer gives the current actor ActionTimeout to decide. When it
// fires the table checks for them if that is legal and folds otherwise.
func (t *Table) armActionTimer() {
	t.stopActionTimer()
	if t.opts.ActionTimeout <= 0 {
		return
	}

	handID := t.engine.HandID()
	actor := t.engine.CurrentActor()
	if actor == "" {
		return
	}

	t.actionTimer = t.clock.AfterFunc(t.opts.ActionTimeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		// The player may have acted just as the timer fired.
		if t.closed || t.engine.HandID() != handID || t.engine.CurrentActor() != actor {
			return
		}
		t.actionTimer = nil
		t.actForTimeout(actor)
	})
}

func (t *Table) actForTimeout(actor string) {
	action := game.Fold
	if owed, err := t.engine.CallAmount(actor); err == nil && owed == 0 {
		action = game.Check
	}
	t.logger.Warn("Action timeout", "player", actor, "action", action)

	if err := t.engine.Act(actor, action, 0); err != nil {
		t.logger.Error("Timeout action rejected", "player", actor, "error", err)
	}

	msg, err := NewMessage(MessageTypePlayerTimeout, PlayerTimeoutData{
		TableID:    t.ID,
		PlayerName: actor,
		Action:     action.String(),
	})
	if err == nil {
		t.notifier.Deliver(t.ID, func(string) (*Message, error) { return msg, nil })
	}

	t.afterChange(context.Background())
	t.broadcastState()
}

func (t *Table) stopActionTimer() {
	if t.actionTimer != nil {
		t.actionTimer.Stop()
		t.actionTimer = nil
	}
}

func (t *Table) stopTimers() {
	t.stopActionTimer()
	if t.nextHand != nil {
		t.nextHand.Stop()
		t.nextHand = nil
	}
}

// resetIfShortHanded discards the engine once fewer than two players remain
// between hands. A lone player is seated again on the fresh engine.
func (t *Table) resetIfShortHanded() {
	if t.closed || t.engine.InProgress() || t.engine.Players() >= 2 {
		return
	}
	// Nothing has been dealt on this engine yet.
	if t.engine.HandID() == "" {
		return
	}

	stacks := t.engine.Stacks()
	t.stopTimers()
	t.engine = t.newEngine()
	for player, chips := range stacks {
		if err := t.engine.Join(player, chips); err != nil {
			t.logger.Error("Failed to reseat player", "player", player, "error", err)
		}
	}
	t.logger.Info("Table short-handed, engine reset", "players", len(stacks))
}

func (t *Table) broadcastState() {
	t.notifier.Deliver(t.ID, func(viewer string) (*Message, error) {
		return NewMessage(MessageTypeGameState, GameStateData{
			TableID: t.ID,
			State:   t.engine.Snapshot(viewer),
		})
	})
}

// isFatal reports whether err aborted the hand rather than rejecting a move.
func isFatal(err error) bool {
	return errors.Is(err, game.ErrCorruptDeck) ||
		errors.Is(err, game.ErrChipConservation) ||
		errors.Is(err, poker.ErrDeckExhausted)
}

type discardNotifier struct{}

func (discardNotifier) Deliver(string, func(string) (*Message, error)) {}
