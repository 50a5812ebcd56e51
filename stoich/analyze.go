package stoich

const (
	// NoEarlyStop as a tolerance makes the search try every multiplier.
	NoEarlyStop = -1.0

	// NoDriftAllowance reports a composition summing to anything but 100.
	NoDriftAllowance = -1.0
)

// Options tune Analyze. Zero values fall back to the package defaults, so a
// zero Tolerance means DefaultTolerance and a zero DriftAllowance means
// DefaultDriftAllowance; use NoEarlyStop and NoDriftAllowance instead.
type Options struct {
	Weights        WeightTable
	MaxMultiplier  int
	Tolerance      float64
	DriftAllowance float64
	DisplayOrder   []Symbol
}

// Literal takes a zero Tolerance or DriftAllowance at face value, for
// settings a user typed in: tolerance 0 never stops early and drift
// allowance 0 reports any drift.
func (o Options) Literal() Options {
	if o.Tolerance == 0 {
		o.Tolerance = NoEarlyStop
	}
	if o.DriftAllowance == 0 {
		o.DriftAllowance = NoDriftAllowance
	}
	return o
}

func (o Options) withDefaults() Options {
	if o.Weights == nil {
		o.Weights = StandardWeights()
	}
	if o.MaxMultiplier == 0 {
		o.MaxMultiplier = DefaultMaxMultiplier
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.DriftAllowance == 0 {
		o.DriftAllowance = DefaultDriftAllowance
	}
	if len(o.DisplayOrder) == 0 {
		o.DisplayOrder = DefaultDisplayOrder
	}
	return o
}

// Analysis keeps every stage of the wt% to formula conversion.
type Analysis struct {
	Input         Composition `json:"input"`
	Drift         Drift       `json:"drift"`
	Normalized    Composition `json:"normalized"`
	Moles         Moles       `json:"moles"`
	Ratios        Ratios      `json:"ratios"`
	Formula       Formula     `json:"formula"`
	FormulaString string      `json:"formula_string"`
	Multiplier    int         `json:"multiplier"`
	Deviation     float64     `json:"deviation"`
}

// Analyze converts a wt% composition to its small-integer formula.
func Analyze(c Composition, opts Options) (*Analysis, error) {
	opts = opts.withDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	a := &Analysis{
		Input: c,
		Drift: CheckDrift(c, opts.DriftAllowance),
	}
	a.Normalized = NormalizeComposition(c)

	var err error
	if a.Moles, err = ToMoles(a.Normalized, opts.Weights); err != nil {
		return nil, err
	}
	if a.Ratios, err = ToRatios(a.Moles); err != nil {
		return nil, err
	}

	sol := Solve(a.Ratios, opts.MaxMultiplier, opts.Tolerance)
	a.Formula = sol.Formula
	a.Multiplier = sol.Multiplier
	a.Deviation = sol.Deviation
	a.FormulaString = sol.Formula.Format(opts.DisplayOrder)
	return a, nil
}
