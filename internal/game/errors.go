package game

import "errors"

var (
	// ErrOutOfTurn rejects an action from a seat that is not the current actor.
	ErrOutOfTurn = errors.New("not your turn")
	// ErrInvalidAction rejects an action that is illegal in the current state.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInsufficientSeats is returned when fewer than two seats can play.
	ErrInsufficientSeats = errors.New("insufficient seats")
	// ErrHandOver is returned for actions when no hand is in progress.
	ErrHandOver = errors.New("no hand in progress")
	// ErrHandInProgress is returned when starting a hand while one is running.
	ErrHandInProgress = errors.New("hand already in progress")
	// ErrUnknownSeat is returned for identities without a seat.
	ErrUnknownSeat = errors.New("unknown seat")
	// ErrSeatTaken is returned when an identity joins twice.
	ErrSeatTaken = errors.New("already seated")
	// ErrTableFull is returned when every seat is occupied.
	ErrTableFull = errors.New("table full")
	// ErrCorruptDeck signals a duplicate or missing card. The hand is aborted.
	ErrCorruptDeck = errors.New("corrupt deck")
	// ErrChipConservation signals that chips were created or destroyed during a hand.
	ErrChipConservation = errors.New("chip conservation violated")
)
