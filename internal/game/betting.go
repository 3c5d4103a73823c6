package game

// placeBet moves min(amount, chips) from the seat into the pot and returns the
// amount moved. A seat can never bet more than its stack; going to zero puts
// it all-in.
func (e *Engine) placeBet(s *Seat, amount int) int {
	if amount <= 0 {
		return 0
	}
	moved := min(amount, s.Chips)
	s.Chips -= moved
	s.Bet += moved
	s.Committed += moved
	e.pot += moved
	if s.Chips == 0 {
		s.AllIn = true
	}
	return moved
}

// currentBet is the highest round bet among seats still contesting the pot.
func (e *Engine) currentBet() int {
	highest := 0
	for _, s := range e.seats {
		if s != nil && s.live() && s.Bet > highest {
			highest = s.Bet
		}
	}
	return highest
}

// callAmount is the gap between the current bet and the seat's own bet.
func (e *Engine) callAmount(s *Seat) int {
	return max(e.currentBet()-s.Bet, 0)
}

// isRoundSettled reports whether every live seat has matched the current bet
// or has no chips left to match it with.
func (e *Engine) isRoundSettled() bool {
	target := e.currentBet()
	for _, s := range e.seats {
		if s == nil || !s.live() {
			continue
		}
		if s.Bet != target && !s.AllIn {
			return false
		}
	}
	return true
}

// roundClosed reports whether betting on the current street is finished: bets
// are settled and the action has come back around to everyone who can still
// act since the last bet or raise. With at most one seat able to act there is
// nobody left to respond, so a settled round closes immediately.
func (e *Engine) roundClosed() bool {
	if !e.isRoundSettled() {
		return false
	}
	actors, waiting := 0, false
	for _, s := range e.seats {
		if s != nil && s.canAct() {
			actors++
			waiting = waiting || !s.acted
		}
	}
	return actors <= 1 || !waiting
}

// reopenAction clears the acted flags of everyone except the aggressor after
// a bet or raise.
func (e *Engine) reopenAction(aggressor *Seat) {
	for _, s := range e.seats {
		if s != nil && s != aggressor {
			s.acted = false
		}
	}
}

// resetRound zeroes round bets between phases. The pot persists.
func (e *Engine) resetRound() {
	for _, s := range e.seats {
		if s != nil {
			s.Bet = 0
			s.acted = false
		}
	}
}
