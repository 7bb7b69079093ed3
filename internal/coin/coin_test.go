package coin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	accepted := map[int64]bool{5: true, 10: true, 20: true, 50: true, 100: true}
	for n := int64(-200); n <= 200; n++ {
		assert.Equal(t, accepted[n], Valid(n), "n=%d", n)
	}
}

func TestMakeChangeZero(t *testing.T) {
	assert.Empty(t, MakeChange(0))
}

func TestMakeChangeKnownValues(t *testing.T) {
	cases := []struct {
		amount int64
		want   []int64
	}{
		{5, []int64{5}},
		{15, []int64{10, 5}},
		{30, []int64{20, 10}},
		{40, []int64{20, 20}},
		{65, []int64{50, 10, 5}},
		{80, []int64{50, 20, 10}},
		{185, []int64{100, 50, 20, 10, 5}},
		{300, []int64{100, 100, 100}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MakeChange(tc.amount), "amount=%d", tc.amount)
	}
}

// minCoins is a brute-force minimal coin count used to cross-check that the
// greedy decomposition is optimal for this denomination set.
func minCoins(amount int64) int {
	const inf = 1 << 30
	best := make([]int, amount+1)
	for i := int64(1); i <= amount; i++ {
		best[i] = inf
		for _, d := range Denominations {
			if i >= d && best[i-d]+1 < best[i] {
				best[i] = best[i-d] + 1
			}
		}
	}
	return best[amount]
}

func TestMakeChangeSumsAndIsMinimal(t *testing.T) {
	for amount := int64(0); amount <= 1000; amount += 5 {
		coins := MakeChange(amount)

		var sum int64
		prev := int64(1 << 30)
		for _, c := range coins {
			require.True(t, Valid(c), "amount=%d emitted invalid coin %d", amount, c)
			require.LessOrEqual(t, c, prev, "amount=%d not largest-first", amount)
			sum += c
			prev = c
		}
		require.Equal(t, amount, sum, "amount=%d", amount)

		if amount > 0 {
			require.Equal(t, minCoins(amount), len(coins), "amount=%d not minimal", amount)
		}
	}
}

func TestMakeChangeDeterministic(t *testing.T) {
	for amount := int64(0); amount <= 500; amount += 5 {
		assert.Equal(t, MakeChange(amount), MakeChange(amount))
	}
}
