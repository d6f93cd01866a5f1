package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerfoyer/internal/deck"
)

// ErrInvalidEvent marks a server event that cannot be applied to the
// current table state. The session treats these as protocol violations.
var ErrInvalidEvent = errors.New("invalid table event")

// Table mirrors the authoritative state of one poker table as streamed by
// the server. It is mutated only from the dispatcher's event loop.
type Table struct {
	logger *log.Logger

	Hand           int
	Street         Street
	Board          []deck.Card
	Seats          []Seat
	Dealer         int
	SmallBlindSeat int
	BigBlindSeat   int
	Acting         int // seat on turn, -1 when nobody is to act
	LocalSeat      int // local player's seat, -1 when observing

	BlindLevel int
	SmallBlind int
	BigBlind   int

	Pots    []Pot
	Awarded int // chips already paid out this hand

	CurrentBet int // highest commitment this round
	LastRaise  int // size of the last raise increment this round
}

// NewTable creates an empty table
func NewTable(logger *log.Logger) *Table {
	return &Table{
		logger:    logger.WithPrefix("table"),
		Acting:    -1,
		LocalSeat: -1,
	}
}

// Snapshot is a full table state as sent by the server after a reconnect.
// Applying one is equivalent to replaying the hand's event stream.
type Snapshot struct {
	Hand           int
	Street         Street
	Board          []deck.Card
	Dealer         int
	SmallBlindSeat int
	BigBlindSeat   int
	Acting         int
	BlindLevel     int
	SmallBlind     int
	BigBlind       int
	Seats          []Seat
	Pots           []Pot
}

// Sit installs the seats announced at game start
func (t *Table) Sit(seats []Seat) {
	t.Seats = make([]Seat, len(seats))
	copy(t.Seats, seats)
	t.Street = Idle
	t.Acting = -1
}

// EndGame clears per-hand state once the server declares the game over.
// Stacks are kept for the final standings display.
func (t *Table) EndGame() {
	t.Street = Idle
	t.Board = nil
	t.Pots = nil
	t.Acting = -1
	t.CurrentBet = 0
	t.LastRaise = 0
	for i := range t.Seats {
		t.Seats[i].Committed = 0
		t.Seats[i].HoleCards = nil
	}
	t.logger.Debug("game ended")
}

// SeatAt returns the seat with the given index
func (t *Table) SeatAt(index int) (*Seat, error) {
	if index < 0 || index >= len(t.Seats) {
		return nil, fmt.Errorf("%w: seat %d out of range", ErrInvalidEvent, index)
	}
	return &t.Seats[index], nil
}

// BeginHand resets per-hand state for the next deal
func (t *Table) BeginHand(hand, dealer, smallBlind, bigBlind int) {
	t.Hand = hand
	t.Dealer = dealer
	t.SmallBlindSeat = smallBlind
	t.BigBlindSeat = bigBlind
	t.Street = Preflop
	t.Board = nil
	t.Pots = nil
	t.Awarded = 0
	t.CurrentBet = 0
	t.LastRaise = 0
	t.Acting = -1

	for i := range t.Seats {
		s := &t.Seats[i]
		s.Committed = 0
		s.Total = 0
		s.HoleCards = nil
		if (s.Status == SeatFolded || s.Status == SeatAllIn) && s.Stack > 0 {
			s.Status = SeatActive
		}
	}

	t.logger.Debug("new hand", "hand", hand, "dealer", dealer)
}

// ApplyBlindLevel updates the blind level; it applies independent of hand
// boundaries.
func (t *Table) ApplyBlindLevel(level, small, big int) {
	t.BlindLevel = level
	t.SmallBlind = small
	t.BigBlind = big
	t.logger.Debug("blind level", "level", level, "small", small, "big", big)
}

// ApplyBoard appends revealed community cards and advances the street.
// The card count must match the street being entered: three for the flop,
// one each for turn and river.
func (t *Table) ApplyBoard(street Street, cards []deck.Card) error {
	var from Street
	var want int

	switch street {
	case Flop:
		from, want = Preflop, 3
	case Turn:
		from, want = Flop, 1
	case River:
		from, want = Turn, 1
	default:
		return fmt.Errorf("%w: %s is not a board street", ErrInvalidEvent, street)
	}

	if t.Street != from {
		return fmt.Errorf("%w: %s dealt during %s", ErrInvalidEvent, street, t.Street)
	}
	if len(cards) != want {
		return fmt.Errorf("%w: %s needs %d cards, got %d", ErrInvalidEvent, street, want, len(cards))
	}

	t.Board = append(t.Board, cards...)
	t.Street = street
	t.Acting = -1
	t.CurrentBet = 0
	t.LastRaise = 0
	for i := range t.Seats {
		t.Seats[i].Committed = 0
	}
	t.rebuildPots()

	t.logger.Debug("board", "street", street, "board", t.Board)
	return nil
}

// ApplyAction applies a seat's action, updating commitments and rotating
// the acting seat to the next one still able to act. Legality is the
// server's business; the client only mirrors what it is told.
func (t *Table) ApplyAction(index int, action Action) error {
	seat, err := t.SeatAt(index)
	if err != nil {
		return err
	}
	if !seat.Occupied() {
		return fmt.Errorf("%w: action from empty seat %d", ErrInvalidEvent, index)
	}

	switch action.Kind {
	case Fold:
		seat.Status = SeatFolded
	case Check:
		// no chips move
	case Call, Bet, Raise, AllIn:
		amount := action.Amount
		if amount > seat.Stack {
			amount = seat.Stack
		}
		seat.Stack -= amount
		seat.Committed += amount
		seat.Total += amount

		if seat.Committed > t.CurrentBet {
			if action.Kind != Call {
				t.LastRaise = seat.Committed - t.CurrentBet
			}
			t.CurrentBet = seat.Committed
		}
		if action.Kind == AllIn || seat.Stack == 0 {
			seat.Status = SeatAllIn
		}
	default:
		return fmt.Errorf("%w: unknown action kind %d", ErrInvalidEvent, action.Kind)
	}

	t.rebuildPots()
	t.Acting = t.NextEligible(index)

	t.logger.Debug("action", "seat", index, "kind", action.Kind, "amount", action.Amount, "acting", t.Acting)
	return nil
}

// ApplyTurnStarted sets the authoritative acting seat
func (t *Table) ApplyTurnStarted(index int) error {
	if _, err := t.SeatAt(index); err != nil {
		return err
	}
	t.Acting = index
	return nil
}

// SetHoleCards records dealt hole cards for a seat
func (t *Table) SetHoleCards(index int, cards []deck.Card) error {
	seat, err := t.SeatAt(index)
	if err != nil {
		return err
	}
	if len(cards) != 2 {
		return fmt.Errorf("%w: expected 2 hole cards, got %d", ErrInvalidEvent, len(cards))
	}
	seat.HoleCards = cards
	return nil
}

// ApplyShowdown attaches revealed hole cards during the showdown
func (t *Table) ApplyShowdown(index int, cards []deck.Card) error {
	if err := t.SetHoleCards(index, cards); err != nil {
		return err
	}
	t.Street = Showdown
	t.Acting = -1
	return nil
}

// ApplyAward credits a pot (or the odd chips of a split) to a seat. The
// recipient is the server's decision and is applied verbatim.
func (t *Table) ApplyAward(potRank, index, amount int) error {
	seat, err := t.SeatAt(index)
	if err != nil {
		return err
	}

	seat.Stack += amount
	t.Awarded += amount

	if potRank >= 0 && potRank < len(t.Pots) {
		t.Pots[potRank].Amount -= amount
		if t.Pots[potRank].Amount < 0 {
			t.Pots[potRank].Amount = 0
		}
	}

	t.logger.Debug("award", "pot", potRank, "seat", index, "amount", amount)
	return nil
}

// ApplyBroke eliminates a seat that lost its whole stack
func (t *Table) ApplyBroke(index int) error {
	seat, err := t.SeatAt(index)
	if err != nil {
		return err
	}
	*seat = Seat{Index: seat.Index, Status: SeatEmpty}
	if t.LocalSeat == index {
		t.LocalSeat = -1
	}
	return nil
}

// ApplySnapshot replaces the whole table state. The server sends one after
// a reconnect; no incremental diffing is attempted.
func (t *Table) ApplySnapshot(snap Snapshot) {
	t.Hand = snap.Hand
	t.Street = snap.Street
	t.Board = append([]deck.Card(nil), snap.Board...)
	t.Dealer = snap.Dealer
	t.SmallBlindSeat = snap.SmallBlindSeat
	t.BigBlindSeat = snap.BigBlindSeat
	t.Acting = snap.Acting
	t.BlindLevel = snap.BlindLevel
	t.SmallBlind = snap.SmallBlind
	t.BigBlind = snap.BigBlind
	t.Seats = append([]Seat(nil), snap.Seats...)
	t.Pots = append([]Pot(nil), snap.Pots...)
	t.Awarded = 0

	t.CurrentBet = 0
	t.LastRaise = 0
	for _, s := range t.Seats {
		if s.Committed > t.CurrentBet {
			t.CurrentBet = s.Committed
		}
	}

	t.logger.Debug("snapshot applied", "hand", snap.Hand, "street", snap.Street)
}

// NextEligible returns the next seat after from that can still act this
// round, wrapping around the table, or -1 when no other seat can.
func (t *Table) NextEligible(from int) int {
	n := len(t.Seats)
	for i := 1; i < n; i++ {
		idx := (from + i) % n
		if t.Seats[idx].CanAct() {
			return idx
		}
	}
	return -1
}

// TotalPot returns the sum of all pot tiers
func (t *Table) TotalPot() int {
	return PotTotal(t.Pots)
}

// rebuildPots derives the pot structure from this hand's commitments
func (t *Table) rebuildPots() {
	commitments := make([]int, len(t.Seats))
	folded := make([]bool, len(t.Seats))
	for i, s := range t.Seats {
		commitments[i] = s.Total
		folded[i] = !s.InHand()
	}
	t.Pots = BuildPots(commitments, folded)
}
