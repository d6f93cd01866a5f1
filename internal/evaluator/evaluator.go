package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/pokerfoyer/internal/deck"
)

// Category enumerates poker hand categories ordered from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the readable name of the category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandStrength is the evaluated strength of a hand: its category plus the
// significance vector used for tie-breaking (group ranks first, then
// kickers, all highest-to-lowest).
type HandStrength struct {
	Category Category
	Ranks    []deck.Rank
}

// Compare returns 1 if h is stronger than other, -1 if weaker, 0 if equal.
func (h HandStrength) Compare(other HandStrength) int {
	if h.Category != other.Category {
		if h.Category > other.Category {
			return 1
		}
		return -1
	}

	n := len(h.Ranks)
	if len(other.Ranks) < n {
		n = len(other.Ranks)
	}
	for i := 0; i < n; i++ {
		if h.Ranks[i] != other.Ranks[i] {
			if h.Ranks[i] > other.Ranks[i] {
				return 1
			}
			return -1
		}
	}

	// More significant cards available beats fewer (partial preflop hands).
	if len(h.Ranks) != len(other.Ranks) {
		if len(h.Ranks) > len(other.Ranks) {
			return 1
		}
		return -1
	}

	return 0
}

// Describe returns the human-readable description of the hand, e.g.
// "Full House, Nines and Fives" or "Ace high".
func (h HandStrength) Describe() string {
	switch h.Category {
	case HighCard:
		return fmt.Sprintf("%s high", h.Ranks[0].Name())
	case OnePair:
		return fmt.Sprintf("Pair of %s", h.Ranks[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", h.Ranks[0].Plural(), h.Ranks[1].Plural())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", h.Ranks[0].Plural())
	case Straight:
		return fmt.Sprintf("Straight, %s high", h.Ranks[0].Name())
	case Flush:
		return fmt.Sprintf("Flush, %s high", h.Ranks[0].Name())
	case FullHouse:
		return fmt.Sprintf("Full House, %s and %s", h.Ranks[0].Plural(), h.Ranks[1].Plural())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", h.Ranks[0].Plural())
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", h.Ranks[0].Name())
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Evaluate determines the best hand makeable from 2-7 cards. With more than
// five cards every five-card subset is evaluated and the strongest kept.
func Evaluate(cards []deck.Card) (HandStrength, error) {
	if len(cards) < 2 || len(cards) > 7 {
		return HandStrength{}, fmt.Errorf("evaluate: need 2-7 cards, got %d", len(cards))
	}

	if len(cards) <= 5 {
		return evaluateExact(cards), nil
	}

	var best HandStrength
	first := true
	subset := make([]deck.Card, 5)

	combinations(len(cards), 5, func(idx []int) {
		for i, j := range idx {
			subset[i] = cards[j]
		}
		s := evaluateExact(subset)
		if first || s.Compare(best) > 0 {
			best = s
			first = false
		}
	})

	return best, nil
}

// combinations invokes fn with every k-element index combination of n items.
func combinations(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)

		// advance to the next combination
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// evaluateExact scores a hand of at most five cards. Straights and flushes
// require a full five cards; smaller hands only form groups and high cards.
func evaluateExact(cards []deck.Card) HandStrength {
	counts := make(map[deck.Rank]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}

	// group ranks sorted by count descending, then rank descending
	groups := make([]rankGroup, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, rankGroup{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	if len(cards) == 5 {
		flush := isFlush(cards)
		straightHigh, isStr := straightHigh(counts)

		switch {
		case flush && isStr && straightHigh == deck.Ace:
			return HandStrength{Category: RoyalFlush, Ranks: []deck.Rank{deck.Ace}}
		case flush && isStr:
			return HandStrength{Category: StraightFlush, Ranks: []deck.Rank{straightHigh}}
		case flush:
			return HandStrength{Category: Flush, Ranks: significance(groups)}
		case isStr:
			return HandStrength{Category: Straight, Ranks: []deck.Rank{straightHigh}}
		}
	}

	switch {
	case groups[0].count == 4:
		return HandStrength{Category: FourOfAKind, Ranks: significance(groups)}
	case groups[0].count == 3 && len(groups) > 1 && groups[1].count >= 2:
		return HandStrength{Category: FullHouse, Ranks: []deck.Rank{groups[0].rank, groups[1].rank}}
	case groups[0].count == 3:
		return HandStrength{Category: ThreeOfAKind, Ranks: significance(groups)}
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		return HandStrength{Category: TwoPair, Ranks: significance(groups)}
	case groups[0].count == 2:
		return HandStrength{Category: OnePair, Ranks: significance(groups)}
	default:
		return HandStrength{Category: HighCard, Ranks: significance(groups)}
	}
}

// rankGroup is one rank multiplicity group within a hand
type rankGroup struct {
	rank  deck.Rank
	count int
}

// significance flattens groups into the tie-break vector: one entry per
// distinct rank, group ranks leading, kickers trailing high-to-low.
func significance(groups []rankGroup) []deck.Rank {
	ranks := make([]deck.Rank, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}
	return ranks
}

func isFlush(cards []deck.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// straightHigh reports whether five distinct ranks form a straight and
// returns the high card. The wheel (A-2-3-4-5) is five-high.
func straightHigh(counts map[deck.Rank]int) (deck.Rank, bool) {
	if len(counts) != 5 {
		return 0, false
	}

	lo, hi := deck.Ace+1, deck.Two-1
	for r := range counts {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}

	if hi-lo == 4 {
		return hi, true
	}

	// wheel: ace plays low
	if counts[deck.Ace] == 1 && counts[deck.Two] == 1 && counts[deck.Three] == 1 &&
		counts[deck.Four] == 1 && counts[deck.Five] == 1 {
		return deck.Five, true
	}

	return 0, false
}
