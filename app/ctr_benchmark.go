package app

import (
	"math"
	"sort"
)

// CtrBenchmark is the shared expected click-through-rate table. Every
// scorer interpolates against this one instance.
//
// Values are industry benchmark CTR percentages by average position.
type CtrBenchmark struct {
	table     map[int]float64
	positions []int // sorted keys
}

// Benchmark points: sparse beyond position 10, interpolated in between.
var defaultCtrTable = map[int]float64{
	1:  28.0,
	2:  22.0,
	3:  18.0,
	4:  15.0,
	5:  12.0,
	6:  10.0,
	7:  9.0,
	8:  8.0,
	9:  7.0,
	10: 6.0,
	15: 3.0,
	20: 2.0,
	30: 0.8,
	50: 0.2,
}

// NewCtrBenchmark creates the benchmark table
func NewCtrBenchmark() *CtrBenchmark {
	positions := make([]int, 0, len(defaultCtrTable))
	for p := range defaultCtrTable {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	return &CtrBenchmark{
		table:     defaultCtrTable,
		positions: positions,
	}
}

// ExpectedCTR returns the benchmark CTR percentage for an average
// position. Positions between benchmark points are linearly interpolated;
// positions beyond the table edges clamp to the edge values. Unranked or
// invalid positions (<= 0 after flooring) return a residual 0.1%.
func (b *CtrBenchmark) ExpectedCTR(position float64) float64 {
	p := int(math.Floor(position))
	if p <= 0 {
		return 0.1
	}

	if v, ok := b.table[p]; ok {
		return v
	}

	// Nearest table keys on each side, defaulting to the table edges
	// when one side is absent.
	lower := b.positions[0]
	upper := b.positions[len(b.positions)-1]
	for _, key := range b.positions {
		if key <= p {
			lower = key
		}
		if key >= p {
			upper = key
			break
		}
	}

	if lower == upper {
		return b.table[lower]
	}

	lowerVal := b.table[lower]
	upperVal := b.table[upper]
	ratio := float64(p-lower) / float64(upper-lower)
	return lowerVal + ratio*(upperVal-lowerVal)
}
