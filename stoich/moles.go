package stoich

import (
	"fmt"
	"math"
)

// Moles maps elements to relative amounts of substance.
type Moles map[Symbol]float64

// Ratios maps elements to atomic ratios anchored at 1.0.
type Ratios map[Symbol]float64

// maxExact is the largest magnitude below which every integer is an exact float64.
const maxExact = 1 << 53

// ToMoles divides each wt% by the element's atomic weight.
func ToMoles(c Composition, weights WeightTable) (Moles, error) {
	m := make(Moles, len(c))
	for _, s := range sortedKeys(c) {
		w, err := weights.Lookup(s)
		if err != nil {
			return nil, fmt.Errorf("converting %s to moles: %w", s, err)
		}
		m[s] = c[s] / w
	}
	return m, nil
}

// ToRatios divides every entry by the smallest strictly positive one.
// Zero entries stay zero. Ratios past 2^53 cannot be told apart from
// their neighbouring integers and fail with ErrDomain.
func ToRatios(m Moles) (Ratios, error) {
	smallest := math.Inf(1)
	for _, s := range sortedKeys(m) {
		if v := m[s]; v > 0 && v < smallest {
			smallest = v
		}
	}
	if math.IsInf(smallest, 1) {
		return nil, fmt.Errorf("normalizing %d mole values: %w", len(m), ErrDomain)
	}

	r := make(Ratios, len(m))
	for _, s := range sortedKeys(m) {
		v := m[s] / smallest
		if !(v <= maxExact) {
			return nil, fmt.Errorf("normalizing %d mole values: ratio of %s is %g: %w", len(m), s, v, ErrDomain)
		}
		r[s] = v
	}
	return r, nil
}

// Symbols returns the elements of r in declaration order.
func (r Ratios) Symbols() []Symbol {
	return sortedKeys(r)
}
