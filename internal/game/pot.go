package game

import "sort"

// BuildPots partitions the chips committed this hand into a main pot and
// side pots. Thresholds are the distinct commitment totals of non-folded
// seats, ascending; each tier collects from every seat (folded chips stay
// in the pot) up to its threshold, and only non-folded seats that covered
// the threshold are eligible to win the tier.
//
// The winner of each pot is never decided here; the ledger only
// partitions the money.
func BuildPots(commitments []int, folded []bool) []Pot {
	thresholds := make([]int, 0, len(commitments))
	seen := make(map[int]bool)
	for i, c := range commitments {
		if c > 0 && !folded[i] && !seen[c] {
			seen[c] = true
			thresholds = append(thresholds, c)
		}
	}
	sort.Ints(thresholds)

	total := 0
	for _, c := range commitments {
		total += c
	}

	// No live commitment: any folded chips still sit on the table as a
	// single tier with no eligible winner. The award is the server's call.
	if len(thresholds) == 0 {
		if total == 0 {
			return nil
		}
		return []Pot{{Amount: total}}
	}

	pots := make([]Pot, 0, len(thresholds))
	allocated := 0
	prev := 0

	for _, threshold := range thresholds {
		pot := Pot{}
		for i, c := range commitments {
			contribution := min(c, threshold) - min(c, prev)
			pot.Amount += contribution
			if !folded[i] && c >= threshold {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		allocated += pot.Amount
		pots = append(pots, pot)
		prev = threshold
	}

	// Chips committed beyond the deepest live threshold (a fold after a
	// raise nobody matched) stay in the last pot.
	if remainder := total - allocated; remainder > 0 {
		pots[len(pots)-1].Amount += remainder
	}

	return pots
}

// PotTotal sums all pot tiers
func PotTotal(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
