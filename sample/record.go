package sample

import (
	"time"

	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/google/uuid"
)

type Record struct {
	AnalysisID string          `json:"analysis_id,omitempty"`
	SampleName string          `json:"sample_name"`
	Furnace    string          `json:"furnace"`
	TimeStamp  time.Time       `json:"time_stamp"`
	Results    []ElementResult `json:"results,omitempty"`

	Stoichiometry *Stoichiometry `json:"stoichiometry,omitempty"`

	ResultsMap map[string]float64 `json:"-"` // all wt% results by element, display or not
	Spectro    int                `json:"spectro"` // spectro machine from which the sample was taken
}

type ElementResult struct {
	Element string  `json:"element"`
	Value   float64 `json:"value"`
}

// Stoichiometry is the small-integer formula of the supported elements in a sample.
type Stoichiometry struct {
	Formula    string             `json:"formula,omitempty"`
	Multiplier int                `json:"multiplier,omitempty"`
	Deviation  float64            `json:"deviation"`
	Ratios     map[string]float64 `json:"ratios,omitempty"`
	WtSum      float64            `json:"wt_sum"` // of the supported elements only
	Error      string             `json:"error,omitempty"`
}

// Arrange fills Results from ResultsMap in display order. A record decoded
// from another host's JSON has no ResultsMap, it is rebuilt from Results first.
func (r *Record) Arrange(elementOrder map[string]int) {
	if r.ResultsMap == nil {
		r.ResultsMap = make(map[string]float64, len(r.Results))
		for _, res := range r.Results {
			if res.Element != "" {
				r.ResultsMap[res.Element] = res.Value
			}
		}
	}

	r.Results = make([]ElementResult, len(elementOrder))
	for el, order := range elementOrder {
		if elRes, ok := r.ResultsMap[el]; ok {
			r.Results[order].Element = el
			r.Results[order].Value = elRes
		}
	}
}

// Analyze works out the stoichiometry of the supported elements in the sample.
// A sample that cannot be analyzed keeps the reason in Stoichiometry.Error.
func (r *Record) Analyze(opts stoich.Options) {
	if r.AnalysisID == "" {
		r.AnalysisID = uuid.NewString()
	}

	st := &Stoichiometry{}
	r.Stoichiometry = st

	comp, _, err := stoich.CompositionFromMap(r.ResultsMap)
	if err != nil {
		st.Error = err.Error()
		return
	}
	st.WtSum = comp.Sum()

	a, err := stoich.Analyze(comp, opts)
	if err != nil {
		st.Error = err.Error()
		return
	}

	st.Formula = a.FormulaString
	st.Multiplier = a.Multiplier
	st.Deviation = a.Deviation
	st.Ratios = make(map[string]float64, len(a.Ratios))
	for s, v := range a.Ratios {
		st.Ratios[s.String()] = v
	}
}
