// Package coin implements the machine's denomination set: validation of
// deposited coins and greedy change decomposition.
package coin

// Denominations holds the accepted coin values, largest first. The order
// matters for MakeChange.
var Denominations = []int64{100, 50, 20, 10, 5}

// Valid reports whether n is an accepted coin.
func Valid(n int64) bool {
	for _, d := range Denominations {
		if n == d {
			return true
		}
	}
	return false
}

// MakeChange decomposes amount into coins, largest denomination first. The
// result sums exactly to amount. Greedy is minimal for this denomination set.
//
// Amount must be a non-negative multiple of 5; callers guard that at the
// boundary. Zero yields an empty slice.
func MakeChange(amount int64) []int64 {
	coins := make([]int64, 0, 4)
	for _, d := range Denominations {
		for amount >= d {
			coins = append(coins, d)
			amount -= d
		}
	}
	return coins
}
