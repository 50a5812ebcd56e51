package stoich

import (
	"fmt"
	"math"
	"sort"
)

// DefaultDriftAllowance is how far (in wt%) a composition may sum away from
// 100 before the drift is worth reporting.
const DefaultDriftAllowance = 0.6

// Composition maps the selected elements to their wt%.
type Composition map[Symbol]float64

// CompositionFromMap converts spectrometer style results keyed by element
// name. Elements that are not supported are returned in ignored, sorted.
func CompositionFromMap(m map[string]float64) (c Composition, ignored []string, err error) {
	c = make(Composition, len(m))
	for name, v := range m {
		s, err := ParseSymbol(name)
		if err != nil {
			ignored = append(ignored, name)
			continue
		}
		if _, dup := c[s]; dup {
			return nil, nil, fmt.Errorf("element %s given more than once", s)
		}
		c[s] = v
	}
	sort.Strings(ignored)
	return c, ignored, nil
}

// Symbols returns the elements of c in declaration order.
func (c Composition) Symbols() []Symbol {
	return sortedKeys(c)
}

func (c Composition) Sum() float64 {
	var sum float64
	for _, s := range sortedKeys(c) {
		sum += c[s]
	}
	return sum
}

func (c Composition) Validate() error {
	for _, s := range sortedKeys(c) {
		if !s.Valid() {
			return fmt.Errorf("%w: %s", ErrLookup, s)
		}
		v := c[s]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s is %v", ErrNegative, s, v)
		}
	}
	return nil
}

// Drift describes how far the raw wt% values sum away from 100.
type Drift struct {
	Sum      float64 `json:"sum"`
	Delta    float64 `json:"delta"`
	Exceeded bool    `json:"exceeded"`
}

// CheckDrift is informational only; renormalization always proceeds.
// A negative allowance reports any drift at all.
func CheckDrift(c Composition, allowance float64) Drift {
	allowance = math.Max(allowance, 0)
	sum := c.Sum()
	return Drift{
		Sum:      sum,
		Delta:    sum - 100,
		Exceeded: math.Abs(sum-100) > allowance,
	}
}

// NormalizeComposition rescales c so its values sum to 100. A composition
// summing to 0 is returned unchanged. c itself is never modified.
func NormalizeComposition(c Composition) Composition {
	out := make(Composition, len(c))
	sum := c.Sum()
	for s, v := range c {
		if sum == 0 {
			out[s] = v
			continue
		}
		out[s] = v * 100 / sum
	}
	return out
}
