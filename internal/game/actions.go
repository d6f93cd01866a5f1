package game

import "fmt"

// potFractions are the standard preset bet sizings offered to the local
// player: quarter, half, three-quarter and full pot.
var potFractions = [...]struct {
	num, den int
}{
	{1, 4},
	{1, 2},
	{3, 4},
	{1, 1},
}

// Suggestion is the locally predicted set of legal actions and bet sizings
// for the seat on turn. Amounts are chips to put in with the action. These
// are UI suggestions only; the server remains the sole arbiter of legality.
type Suggestion struct {
	CanFold    bool
	CanCheck   bool  // only when nothing is outstanding to call
	CallAmount int   // chips needed to call, 0 when checking is free
	MinRaise   int   // chips for a minimum bet or raise
	PotPresets []int // pot-fraction sizings, ascending, deduplicated
	AllIn      int   // the whole remaining stack
}

// Suggest derives the action suggestions for a seat from the table state.
// Pot-relative sizes are computed against the pot total including all
// commitments already on the table this round (standard pot-bet sizing).
func Suggest(t *Table, index int) (Suggestion, error) {
	seat, err := t.SeatAt(index)
	if err != nil {
		return Suggestion{}, err
	}
	if !seat.CanAct() {
		return Suggestion{}, fmt.Errorf("seat %d cannot act (%s)", index, seat.Status)
	}

	s := Suggestion{
		CanFold: true,
		AllIn:   seat.Stack,
	}

	toCall := t.CurrentBet - seat.Committed
	if toCall <= 0 {
		s.CanCheck = true
		toCall = 0
	}
	if toCall > seat.Stack {
		toCall = seat.Stack
	}
	s.CallAmount = toCall

	// minimum raise: current bet plus at least the last raise increment,
	// or the big blind when opening the betting
	increment := t.LastRaise
	if increment < t.BigBlind {
		increment = t.BigBlind
	}
	if t.CurrentBet == 0 {
		s.MinRaise = t.BigBlind
	} else {
		s.MinRaise = t.CurrentBet + increment - seat.Committed
	}
	if s.MinRaise > seat.Stack {
		s.MinRaise = seat.Stack
	}

	pot := t.TotalPot()
	seen := make(map[int]bool)
	for _, f := range potFractions {
		size := pot * f.num / f.den
		if size < s.MinRaise {
			continue
		}
		if size >= seat.Stack {
			// stack covers no more than this sizing; all-in stands in
			break
		}
		if !seen[size] {
			seen[size] = true
			s.PotPresets = append(s.PotPresets, size)
		}
	}

	return s, nil
}
