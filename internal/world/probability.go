package world

import "fmt"

// Ratio is one category's integer weight in a probability table.
type Ratio[T any] struct {
	Category T
	Weight   int
}

// Range is the half-open sampling interval [Lower, Upper) of one category.
type Range[T any] struct {
	Category T
	Lower    float64
	Upper    float64
}

// Share returns the interval width, i.e. the category's probability.
func (r Range[T]) Share() float64 {
	return r.Upper - r.Lower
}

// Table maps draws in [0, 1) to categories through contiguous cumulative ranges.
type Table[T any] struct {
	ranges []Range[T]
}

// BuildTable converts integer ratios into cumulative ranges, in input order.
// Panics if ratios is empty, any weight is negative, or the weights sum to zero.
func BuildTable[T any](ratios []Ratio[T]) Table[T] {
	if len(ratios) == 0 {
		panic("world: probability table needs at least one category")
	}
	total := 0
	for _, r := range ratios {
		if r.Weight < 0 {
			panic(fmt.Sprintf("world: negative weight %d in probability table", r.Weight))
		}
		total += r.Weight
	}
	if total == 0 {
		panic("world: probability table weights sum to zero")
	}

	ranges := make([]Range[T], 0, len(ratios))
	acc := 0.0
	for _, r := range ratios {
		lower := acc
		acc += float64(r.Weight) / float64(total)
		ranges = append(ranges, Range[T]{Category: r.Category, Lower: lower, Upper: acc})
	}
	// Accumulated rounding can leave the final bound just short of 1.
	ranges[len(ranges)-1].Upper = 1.0

	return Table[T]{ranges: ranges}
}

// Sample returns the first category whose range contains draw. A draw that
// lands in no range falls back to the first-listed category.
func (t Table[T]) Sample(draw float64) T {
	for _, r := range t.ranges {
		if draw >= r.Lower && draw < r.Upper {
			return r.Category
		}
	}
	return t.ranges[0].Category
}

// Ranges returns the table's ranges in order.
func (t Table[T]) Ranges() []Range[T] {
	return t.ranges
}

// Len returns the number of categories.
func (t Table[T]) Len() int {
	return len(t.ranges)
}
