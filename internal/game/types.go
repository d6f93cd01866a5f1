package game

import (
	"fmt"

	"github.com/lox/pokerfoyer/internal/deck"
)

// Street represents the betting round
type Street int

const (
	Idle Street = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

// String returns the string representation of a betting round
func (s Street) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// ParseStreet parses the wire name of a betting round
func ParseStreet(s string) (Street, error) {
	switch s {
	case "idle":
		return Idle, nil
	case "preflop":
		return Preflop, nil
	case "flop":
		return Flop, nil
	case "turn":
		return Turn, nil
	case "river":
		return River, nil
	case "showdown":
		return Showdown, nil
	default:
		return Idle, fmt.Errorf("unknown street %q", s)
	}
}

// ActionKind represents a player action
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

// String returns the wire name of an action
func (a ActionKind) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// Action is a single action taken by a seat. Amount is the incremental
// chips paid with the action (zero for fold and check).
type Action struct {
	Kind   ActionKind
	Amount int
}

// SeatStatus represents the state of a seat at the table
type SeatStatus int

const (
	SeatEmpty SeatStatus = iota
	SeatActive
	SeatSittingOut
	SeatAllIn
	SeatFolded
	SeatDisconnected
)

// String returns the wire name of a seat status
func (s SeatStatus) String() string {
	switch s {
	case SeatEmpty:
		return "empty"
	case SeatActive:
		return "active"
	case SeatSittingOut:
		return "sitting_out"
	case SeatAllIn:
		return "allin"
	case SeatFolded:
		return "folded"
	case SeatDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ParseSeatStatus parses the wire name of a seat status
func ParseSeatStatus(s string) (SeatStatus, error) {
	switch s {
	case "empty":
		return SeatEmpty, nil
	case "active":
		return SeatActive, nil
	case "sitting_out":
		return SeatSittingOut, nil
	case "allin":
		return SeatAllIn, nil
	case "folded":
		return SeatFolded, nil
	case "disconnected":
		return SeatDisconnected, nil
	default:
		return SeatEmpty, fmt.Errorf("unknown seat status %q", s)
	}
}

// Seat is one position at the table
type Seat struct {
	Index     int
	Name      string
	Stack     int
	Status    SeatStatus
	Committed int         // chips committed this betting round
	Total     int         // chips committed this hand
	HoleCards []deck.Card // known only for the local seat, or at showdown
}

// Occupied returns true if a player holds the seat
func (s *Seat) Occupied() bool {
	return s.Status != SeatEmpty
}

// InHand returns true if the seat still contests the current pot
func (s *Seat) InHand() bool {
	return s.Status == SeatActive || s.Status == SeatAllIn
}

// CanAct returns true if the seat is still eligible to act this round
func (s *Seat) CanAct() bool {
	return s.Status == SeatActive && s.Stack > 0
}

// Pot is one tier of the pot structure. Rank 0 is the main pot; higher
// ranks are side pots belonging to progressively deeper stacks.
type Pot struct {
	Amount   int
	Eligible []int // seat indices eligible to win this pot
}
