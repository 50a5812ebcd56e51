package stoich

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultMaxMultiplier = 24
	DefaultTolerance     = 0.05
)

// Formula holds the integer coefficient of each element.
type Formula map[Symbol]int

// Solution is the outcome of the multiplier search.
type Solution struct {
	Formula    Formula
	Multiplier int
	Deviation  float64 // summed distance of the scaled ratios to their nearest integers
}

// round rounds half away from zero, so 2.5 becomes 3.
func round(x float64) float64 {
	return math.Round(x)
}

// multiplierLimit is the largest multiplier keeping every scaled ratio within
// exact integer range, never below 1.
func multiplierLimit(r Ratios, keys []Symbol) int {
	var top float64
	for _, s := range keys {
		top = math.Max(top, math.Abs(r[s]))
	}
	if top <= 1 {
		return math.MaxInt32
	}
	return max(int(maxExact/top), 1)
}

func deviation(r Ratios, keys []Symbol, mult int) float64 {
	var d float64
	for _, s := range keys {
		x := r[s] * float64(mult)
		d += math.Abs(round(x) - x)
	}
	return d
}

// Solve searches multipliers 1..maxMult for the one whose scaled ratios lie
// closest to whole numbers. Only a strictly better deviation replaces the
// current best, so ties keep the smaller multiplier, and the search stops at
// the first improvement that gets below tol. maxMult below 1 is treated as 1,
// and multipliers that would scale a ratio past 2^53 are not tried.
// r must come from ToRatios.
func Solve(r Ratios, maxMult int, tol float64) Solution {
	if maxMult < 1 {
		maxMult = 1
	}
	keys := sortedKeys(r)
	if lim := multiplierLimit(r, keys); lim < maxMult {
		maxMult = lim
	}

	bestMult, bestDev := 1, math.Inf(1)
	for mult := 1; mult <= maxMult; mult++ {
		d := deviation(r, keys, mult)
		if d < bestDev {
			bestMult, bestDev = mult, d
			if d < tol {
				break
			}
		}
	}

	f := make(Formula, len(r))
	allZero := true
	for _, s := range keys {
		n := int(round(r[s] * float64(bestMult)))
		f[s] = n
		if n != 0 {
			allZero = false
		}
	}
	if allZero {
		for s := range f {
			f[s] = 1
		}
	}

	if g := f.GCD(); g > 1 {
		for s := range f {
			f[s] /= g
		}
	}

	return Solution{Formula: f, Multiplier: bestMult, Deviation: bestDev}
}

// SolveIntegerFormula returns the reduced integer formula for r and the
// multiplier that produced it.
func SolveIntegerFormula(r Ratios, maxMult int, tol float64) (Formula, int) {
	sol := Solve(r, maxMult, tol)
	return sol.Formula, sol.Multiplier
}

// GCD of all coefficients with zeros counted as 1, so a formula holding a
// zero coefficient is never reduced. An empty formula has GCD 1.
func (f Formula) GCD() int {
	g := 0
	for _, s := range sortedKeys(f) {
		n := f[s]
		if n < 0 {
			n = -n
		}
		if n == 0 {
			n = 1
		}
		g = gcd(g, n)
	}
	if g == 0 {
		return 1
	}
	return g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Format renders f densely, e.g. "Al4Ce". Elements follow order; any not in
// order are appended in declaration order. A coefficient of 1 is implicit and
// zero coefficients are left out.
func (f Formula) Format(order []Symbol) string {
	var (
		sb   strings.Builder
		done [numSymbols]bool
	)
	write := func(s Symbol) {
		if !s.Valid() || done[s] {
			return
		}
		done[s] = true
		n, ok := f[s]
		if !ok || n == 0 {
			return
		}
		sb.WriteString(s.String())
		if n != 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	for _, s := range order {
		write(s)
	}
	for _, s := range sortedKeys(f) {
		write(s)
	}
	return sb.String()
}

func (f Formula) String() string {
	return f.Format(DefaultDisplayOrder)
}
