package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerfoyer/internal/deck"
)

func evaluate(t *testing.T, cards string) HandStrength {
	t.Helper()
	strength, err := Evaluate(deck.MustParseCards(cards))
	require.NoError(t, err)
	return strength
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    string
		category Category
		describe string
	}{
		{"royal flush", "AsKsQsJsTs", RoyalFlush, "Royal Flush"},
		{"straight flush", "9h8h7h6h5h", StraightFlush, "Straight Flush, Nine high"},
		{"wheel straight flush", "Ad2d3d4d5d", StraightFlush, "Straight Flush, Five high"},
		{"four of a kind", "7s7h7d7cKs", FourOfAKind, "Four of a Kind, Sevens"},
		{"full house", "9d9c9h5s5d", FullHouse, "Full House, Nines and Fives"},
		{"flush", "AhJh8h5h2h", Flush, "Flush, Ace high"},
		{"straight", "Jc Th 9s 8d 7c", Straight, "Straight, Jack high"},
		{"wheel straight", "Ah2c3d4s5h", Straight, "Straight, Five high"},
		{"three of a kind", "QsQhQd8c3s", ThreeOfAKind, "Three of a Kind, Queens"},
		{"two pair", "KsKh4d4cAs", TwoPair, "Two Pair, Kings and Fours"},
		{"one pair", "9s9hAcKd2s", OnePair, "Pair of Nines"},
		{"high card", "2c7d9sJhAd", HighCard, "Ace high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strength := evaluate(t, tt.cards)
			assert.Equal(t, tt.category, strength.Category)
			assert.Equal(t, tt.describe, strength.Describe())
		})
	}
}

func TestEvaluateSevenCardPicksBestSubset(t *testing.T) {
	t.Parallel()

	// the spec vector: trips plus a pair among seven cards make a full house
	strength := evaluate(t, "9d9c9h5s5d2c3c")
	assert.Equal(t, FullHouse, strength.Category)
	assert.Equal(t, "Full House, Nines and Fives", strength.Describe())

	// a seventh card completing a flush must be found over the pair
	strength = evaluate(t, "AsKs9s4s2sAhAd")
	assert.Equal(t, Flush, strength.Category)
}

func TestEvaluatePermutationInvariance(t *testing.T) {
	t.Parallel()

	cards := deck.MustParseCards("9d9c9h5s5d2c3c")
	want, err := Evaluate(cards)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]deck.Card(nil), cards...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Evaluate(shuffled)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Compare(want))
		assert.Equal(t, want.Category, got.Category)
	}
}

func TestEvaluateConsistentWithSubsetEnumeration(t *testing.T) {
	t.Parallel()

	hands := []string{
		"AsKsQsJsTs9s8s",
		"9d9c9h5s5d2c3c",
		"2c7d9sJhAd3h4h",
		"AhKh4d4cAs2s2d",
		"6s7s8s9sTsJsQs",
	}

	for _, hand := range hands {
		cards := deck.MustParseCards(hand)

		got, err := Evaluate(cards)
		require.NoError(t, err)

		// exhaustively enumerate all 21 five-card subsets
		var best HandStrength
		first := true
		combinations(len(cards), 5, func(idx []int) {
			subset := make([]deck.Card, 5)
			for i, j := range idx {
				subset[i] = cards[j]
			}
			s := evaluateExact(subset)
			if first || s.Compare(best) > 0 {
				best = s
				first = false
			}
		})

		assert.Equal(t, 0, got.Compare(best), "hand %s", hand)
	}
}

func TestEvaluatePartialHands(t *testing.T) {
	t.Parallel()

	strength := evaluate(t, "AsAh")
	assert.Equal(t, OnePair, strength.Category)
	assert.Equal(t, "Pair of Aces", strength.Describe())

	// four suited cards are not yet a flush
	strength = evaluate(t, "AsKs9s4s")
	assert.Equal(t, HighCard, strength.Category)
	assert.Equal(t, "Ace high", strength.Describe())
}

func TestCompareOrdersKickers(t *testing.T) {
	t.Parallel()

	aceKicker := evaluate(t, "9s9hAcKd2s")
	queenKicker := evaluate(t, "9d9cQcJd2h")
	assert.Equal(t, 1, aceKicker.Compare(queenKicker))
	assert.Equal(t, -1, queenKicker.Compare(aceKicker))

	// wheel loses to a six-high straight
	wheel := evaluate(t, "Ah2c3d4s5h")
	sixHigh := evaluate(t, "2h3c4d5s6h")
	assert.Equal(t, 1, sixHigh.Compare(wheel))
}

func TestEvaluateRejectsBadCounts(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(deck.MustParseCards("As"))
	assert.Error(t, err)

	_, err = Evaluate(deck.MustParseCards("As2s3s4s5s6s7s8s"))
	assert.Error(t, err)
}
