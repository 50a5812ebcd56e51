package sample

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/RoanBrand/StoichDashboard/stoich"
)

func TestArrange(t *testing.T) {
	r := Record{ResultsMap: map[string]float64{"Al": 43.5, "Ce": 56.5, "Fe": 0.2}}
	r.Arrange(map[string]int{"Ce": 0, "Al": 1, "Si": 2})

	if len(r.Results) != 3 {
		t.Fatalf("results %v", r.Results)
	}
	if r.Results[0] != (ElementResult{"Ce", 56.5}) || r.Results[1] != (ElementResult{"Al", 43.5}) {
		t.Fatalf("results %v", r.Results)
	}
	if r.Results[2].Element != "" {
		t.Fatalf("missing element should leave an empty slot, got %v", r.Results[2])
	}
}

func TestArrangeDecoded(t *testing.T) {
	b := []byte(`{"sample_name":"R1","results":[{"element":"Ni","value":50},{"element":"","value":0},{"element":"Al","value":50}]}`)
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatal(err)
	}

	r.Arrange(map[string]int{"Al": 0, "Ni": 1})
	if r.Results[0] != (ElementResult{"Al", 50}) || r.Results[1] != (ElementResult{"Ni", 50}) {
		t.Fatalf("results %v", r.Results)
	}
	r.Analyze(stoich.Options{})
	if r.Stoichiometry.Formula != "Al37Ni17" {
		t.Fatalf("stoichiometry %+v", r.Stoichiometry)
	}
}

func TestAnalyze(t *testing.T) {
	r := Record{
		SampleName: "A1234T",
		TimeStamp:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ResultsMap: map[string]float64{"Al": 43.5, "Ce": 56.5, "Fe": 0.4},
	}
	r.Analyze(stoich.Options{})

	st := r.Stoichiometry
	if st == nil || st.Error != "" {
		t.Fatalf("stoichiometry %+v", st)
	}
	if st.Formula != "Al4Ce" || st.Multiplier != 1 {
		t.Fatalf("formula %q x%d", st.Formula, st.Multiplier)
	}
	if st.WtSum != 100 {
		t.Fatalf("Fe should not count towards the sum, got %v", st.WtSum)
	}
	if st.Ratios["Ce"] != 1 {
		t.Fatalf("ratios %v", st.Ratios)
	}
	if r.AnalysisID == "" {
		t.Fatal("analysis id not set")
	}

	id := r.AnalysisID
	r.Analyze(stoich.Options{})
	if r.AnalysisID != id {
		t.Fatal("analysis id changed on re-analysis")
	}
}

func TestAnalyzeNoSupportedElements(t *testing.T) {
	r := Record{ResultsMap: map[string]float64{"Fe": 98, "C": 2}}
	r.Analyze(stoich.Options{})

	if r.Stoichiometry == nil || r.Stoichiometry.Error == "" {
		t.Fatalf("expected an error, got %+v", r.Stoichiometry)
	}
	if r.Stoichiometry.Formula != "" {
		t.Fatalf("formula %q", r.Stoichiometry.Formula)
	}
}

func TestRecordJSON(t *testing.T) {
	r := Record{SampleName: "S1", ResultsMap: map[string]float64{"Al": 50, "Ni": 50}, Spectro: 2}
	r.Analyze(stoich.Options{})

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"formula":"Al37Ni17"`) {
		t.Fatalf("json %s", s)
	}
	if strings.Contains(s, "ResultsMap") {
		t.Fatalf("results map should not be serialized: %s", s)
	}
}
