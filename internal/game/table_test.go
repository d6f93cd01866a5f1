package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerfoyer/internal/deck"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testTable(t *testing.T, stacks ...int) *Table {
	t.Helper()

	table := NewTable(testLogger())
	seats := make([]Seat, len(stacks))
	for i, stack := range stacks {
		seats[i] = Seat{Index: i, Name: string(rune('A' + i)), Stack: stack, Status: SeatActive}
	}
	table.Sit(seats)
	table.ApplyBlindLevel(1, 5, 10)
	table.BeginHand(1, 0, 1, 2)
	return table
}

func TestBeginHandResetsState(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100, 100)
	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 30}))
	require.NoError(t, table.ApplyAction(1, Action{Kind: Fold}))
	require.NoError(t, table.ApplyBoard(Flop, deck.MustParseCards("AsKd2c")))

	table.BeginHand(2, 1, 2, 0)

	assert.Equal(t, 2, table.Hand)
	assert.Equal(t, Preflop, table.Street)
	assert.Empty(t, table.Board)
	assert.Empty(t, table.Pots)
	assert.Equal(t, -1, table.Acting)
	for _, seat := range table.Seats {
		assert.Zero(t, seat.Committed)
		assert.Zero(t, seat.Total)
		assert.Nil(t, seat.HoleCards)
		assert.Equal(t, SeatActive, seat.Status, "folded seat rejoins the next hand")
	}
}

func TestApplyBoardValidatesCardCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		street Street
		cards  string
		setup  func(*Table)
		ok     bool
	}{
		{"flop of three", Flop, "AsKd2c", nil, true},
		{"flop of two", Flop, "AsKd", nil, false},
		{"turn of one", Turn, "7h", func(tb *Table) {
			_ = tb.ApplyBoard(Flop, deck.MustParseCards("AsKd2c"))
		}, true},
		{"turn of three", Turn, "7h8h9h", func(tb *Table) {
			_ = tb.ApplyBoard(Flop, deck.MustParseCards("AsKd2c"))
		}, false},
		{"river before flop", River, "7h", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table := testTable(t, 100, 100)
			if tt.setup != nil {
				tt.setup(table)
			}

			err := table.ApplyBoard(tt.street, deck.MustParseCards(tt.cards))
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.street, table.Street)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEvent)
			}
		})
	}
}

func TestApplyBoardResetsRoundCommitments(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100)
	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 20}))
	require.NoError(t, table.ApplyAction(1, Action{Kind: Call, Amount: 20}))

	require.NoError(t, table.ApplyBoard(Flop, deck.MustParseCards("AsKd2c")))

	assert.Zero(t, table.CurrentBet)
	assert.Zero(t, table.LastRaise)
	for _, seat := range table.Seats {
		assert.Zero(t, seat.Committed)
		assert.Equal(t, 20, seat.Total, "hand total survives the street change")
	}
	assert.Equal(t, 40, table.TotalPot())
}

func TestTurnRotationSkipsIneligibleSeats(t *testing.T) {
	t.Parallel()

	// seats: A active, B folded, C all-in
	table := testTable(t, 100, 100, 50)
	require.NoError(t, table.ApplyAction(1, Action{Kind: Fold}))
	require.NoError(t, table.ApplyAction(2, Action{Kind: AllIn, Amount: 50}))

	require.NoError(t, table.ApplyAction(0, Action{Kind: Call, Amount: 50}))

	// neither B (folded) nor C (all-in) can act: round closed pending the
	// server's street advance
	assert.Equal(t, -1, table.Acting)
}

func TestApplyActionTracksBetting(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100, 100)

	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 10}))
	assert.Equal(t, 10, table.CurrentBet)
	assert.Equal(t, 10, table.LastRaise)
	assert.Equal(t, 1, table.Acting)

	// raise to 30: seat 1 pays 30, increment is 20
	require.NoError(t, table.ApplyAction(1, Action{Kind: Raise, Amount: 30}))
	assert.Equal(t, 30, table.CurrentBet)
	assert.Equal(t, 20, table.LastRaise)

	// a call never reopens the betting
	require.NoError(t, table.ApplyAction(2, Action{Kind: Call, Amount: 30}))
	assert.Equal(t, 30, table.CurrentBet)
	assert.Equal(t, 20, table.LastRaise)

	assert.Equal(t, 70, table.Seats[1].Stack)
	assert.Equal(t, 70, table.TotalPot())
}

func TestApplyActionCapsAtStack(t *testing.T) {
	t.Parallel()

	table := testTable(t, 25, 100)
	require.NoError(t, table.ApplyAction(1, Action{Kind: Bet, Amount: 40}))
	require.NoError(t, table.ApplyAction(0, Action{Kind: Call, Amount: 40}))

	assert.Equal(t, 0, table.Seats[0].Stack)
	assert.Equal(t, SeatAllIn, table.Seats[0].Status)
	assert.Equal(t, 25, table.Seats[0].Total)
}

func TestShowdownAndAwards(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100)
	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 50}))
	require.NoError(t, table.ApplyAction(1, Action{Kind: Call, Amount: 50}))

	require.NoError(t, table.ApplyShowdown(0, deck.MustParseCards("AsAh")))
	require.NoError(t, table.ApplyShowdown(1, deck.MustParseCards("KsKh")))
	assert.Equal(t, Showdown, table.Street)
	assert.Equal(t, deck.MustParseCards("AsAh"), table.Seats[0].HoleCards)

	require.NoError(t, table.ApplyAward(0, 0, 100))
	assert.Equal(t, 150, table.Seats[0].Stack)
	assert.Equal(t, 100, table.Awarded)
	assert.Zero(t, table.TotalPot())
}

func TestOddChipAwardAppliedVerbatim(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100)
	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 25}))
	require.NoError(t, table.ApplyAction(1, Action{Kind: Call, Amount: 26}))

	// split pot of 51: two awards of 25, odd chip to the server's pick
	require.NoError(t, table.ApplyAward(0, 0, 25))
	require.NoError(t, table.ApplyAward(0, 1, 25))
	require.NoError(t, table.ApplyAward(0, 1, 1))

	assert.Equal(t, 100, table.Seats[0].Stack)
	assert.Equal(t, 100, table.Seats[1].Stack)
	assert.Equal(t, 51, table.Awarded)
}

func TestApplyBrokeEmptiesSeat(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100)
	require.NoError(t, table.ApplyBroke(1))

	assert.Equal(t, SeatEmpty, table.Seats[1].Status)
	assert.Zero(t, table.Seats[1].Stack)
	assert.Empty(t, table.Seats[1].Name)
}

func TestBlindLevelChangesMidHand(t *testing.T) {
	t.Parallel()

	table := testTable(t, 100, 100)
	require.NoError(t, table.ApplyAction(0, Action{Kind: Bet, Amount: 10}))

	table.ApplyBlindLevel(2, 10, 20)

	assert.Equal(t, 2, table.BlindLevel)
	assert.Equal(t, 20, table.BigBlind)
	assert.Equal(t, 10, table.CurrentBet, "betting state unaffected")
}

func TestSnapshotMatchesReplay(t *testing.T) {
	t.Parallel()

	// a client that replayed the whole event stream
	replayed := testTable(t, 100, 100, 100)
	require.NoError(t, replayed.ApplyAction(0, Action{Kind: Bet, Amount: 20}))
	require.NoError(t, replayed.ApplyAction(1, Action{Kind: Call, Amount: 20}))
	require.NoError(t, replayed.ApplyAction(2, Action{Kind: Fold}))
	require.NoError(t, replayed.ApplyBoard(Flop, deck.MustParseCards("AsKd2c")))
	require.NoError(t, replayed.ApplyAction(0, Action{Kind: Bet, Amount: 15}))
	require.NoError(t, replayed.ApplyTurnStarted(1))

	// a reconnecting client that receives the state as one snapshot
	fresh := NewTable(testLogger())
	fresh.ApplySnapshot(Snapshot{
		Hand:           replayed.Hand,
		Street:         replayed.Street,
		Board:          replayed.Board,
		Dealer:         replayed.Dealer,
		SmallBlindSeat: replayed.SmallBlindSeat,
		BigBlindSeat:   replayed.BigBlindSeat,
		Acting:         replayed.Acting,
		BlindLevel:     replayed.BlindLevel,
		SmallBlind:     replayed.SmallBlind,
		BigBlind:       replayed.BigBlind,
		Seats:          replayed.Seats,
		Pots:           replayed.Pots,
	})

	assert.Equal(t, replayed.Hand, fresh.Hand)
	assert.Equal(t, replayed.Street, fresh.Street)
	assert.Equal(t, replayed.Board, fresh.Board)
	assert.Equal(t, replayed.Acting, fresh.Acting)
	assert.Equal(t, replayed.Seats, fresh.Seats)
	assert.Equal(t, replayed.Pots, fresh.Pots)
	assert.Equal(t, replayed.CurrentBet, fresh.CurrentBet)
	assert.Equal(t, replayed.TotalPot(), fresh.TotalPot())

	// the hand continues identically on both clients: pots rebuilt after
	// the snapshot must not lose any committed chips
	for _, table := range []*Table{replayed, fresh} {
		require.NoError(t, table.ApplyAction(1, Action{Kind: Call, Amount: 15}))
		require.NoError(t, table.ApplyBoard(Turn, deck.MustParseCards("7h")))
	}

	assert.Equal(t, replayed.Pots, fresh.Pots)
	assert.Equal(t, 70, fresh.TotalPot())
}
