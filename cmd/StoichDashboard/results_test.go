package main

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/sample"
)

func TestMain(m *testing.M) {
	log.Discard()
	os.Exit(m.Run())
}

func testConfig(numResults int) *config.Config {
	conf := config.Default()
	conf.NumberOfResults = numResults
	conf.ElementsToDisplay = []string{"Al", "Ce", "Ni"}
	conf.ElementOrder = map[string]int{"Al": 0, "Ce": 1, "Ni": 2}
	return conf
}

func at(day int) time.Time {
	return time.Date(2024, 3, day, 10, 0, 0, 0, time.Local)
}

func TestMergeResults(t *testing.T) {
	conf := testConfig(3)

	local := []*sample.Record{
		{SampleName: "L1", TimeStamp: at(1), Spectro: 2, ResultsMap: map[string]float64{"Al": 43.5, "Ce": 56.5}},
		{SampleName: "L3", TimeStamp: at(3), Spectro: 2, ResultsMap: map[string]float64{"Al": 50, "Ni": 50}},
	}
	remote := []*sample.Record{
		{SampleName: "R2", TimeStamp: at(2), Spectro: 2, Results: []sample.ElementResult{{Element: "Al", Value: 71.67}, {Element: "Ce", Value: 28.33}}},
		{SampleName: "R4", TimeStamp: at(4), Spectro: 2, Results: []sample.ElementResult{{Element: "Fe", Value: 99}}},
	}

	all := mergeResults(conf, local, remote)
	if len(all) != 3 {
		t.Fatalf("got %d results", len(all))
	}

	names := []string{all[0].SampleName, all[1].SampleName, all[2].SampleName}
	if names[0] != "R4" || names[1] != "L3" || names[2] != "R2" {
		t.Fatalf("order %v", names)
	}
	if all[0].Spectro != remoteSpectro || all[0].Stoichiometry.Error == "" {
		t.Fatalf("remote sample without supported elements: %+v", all[0].Stoichiometry)
	}
	if all[1].Stoichiometry.Formula != "Al37Ni17" || all[2].Stoichiometry.Formula != "Al92Ce7" {
		t.Fatalf("formulas %q %q", all[1].Stoichiometry.Formula, all[2].Stoichiometry.Formula)
	}
	if len(all[1].Results) != 3 || all[1].Results[2].Element != "Ni" {
		t.Fatalf("arranged results %v", all[1].Results)
	}
}

func TestMergeLastFurnaceResults(t *testing.T) {
	local := []sample.Record{
		{SampleName: "L1", Furnace: "F1", TimeStamp: at(2), Spectro: 2},
		{SampleName: "L2", Furnace: "F2", TimeStamp: at(5), Spectro: 2},
	}
	remote := []sample.Record{
		{SampleName: "R1", Furnace: "F1", TimeStamp: at(3), Spectro: 2, Stoichiometry: &sample.Stoichiometry{Formula: "Al4Ce"}},
		{SampleName: "R2", Furnace: "F2", TimeStamp: at(4), Spectro: 2},
	}

	res := mergeLastFurnaceResults(local, remote)
	if res[0].SampleName != "R1" || res[0].Spectro != remoteSpectro || res[0].Stoichiometry.Formula != "Al4Ce" {
		t.Fatalf("newer remote sample not used: %+v", res[0])
	}
	if res[1].SampleName != "L2" {
		t.Fatalf("older remote sample used: %+v", res[1])
	}
}

const spectroXML = `<SampleResults><SampleResult RecalculationDateTime="2024-03-01T10:00:00">
<SampleIDs><SampleID><IDName>Sample ID</IDName><IDValue>X1</IDValue></SampleID></SampleIDs>
<MeasurementStatistics><Measurement><Elements>
<Element ElementName="Al"><ElementResult StatType="Reported" Unit="%"><ResultValue>43.5</ResultValue></ElementResult></Element>
<Element ElementName="Ce"><ElementResult StatType="Reported" Unit="%"><ResultValue>56.5</ResultValue></ElementResult></Element>
</Elements></Measurement></MeasurementStatistics>
</SampleResult></SampleResults>`

func TestGetResults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "spectro_1.xml"), []byte(spectroXML), 0644); err != nil {
		t.Fatal(err)
	}

	remote := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		json.NewEncoder(w).Encode([]sample.Record{
			{AnalysisID: "remote-id", SampleName: "R1", TimeStamp: at(5), Spectro: 2,
				Results: []sample.ElementResult{{Element: "Al", Value: 50}, {Element: "Ni", Value: 50}}},
		})
	}))
	defer remote.Close()

	conf := testConfig(10)
	conf.DataType = "xml"
	conf.DataSource = dir
	conf.RemoteMachineAddress = remote.URL

	p := &app{conf: conf}
	b, err := p.getResults()
	if err != nil {
		t.Fatal(err)
	}

	var res []sample.Record
	if err = json.Unmarshal(b, &res); err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || res[0].SampleName != "R1" || res[1].SampleName != "X1" {
		t.Fatalf("results %s", b)
	}
	if res[0].AnalysisID != "remote-id" || res[0].Spectro != remoteSpectro || res[0].Stoichiometry.Formula != "Al37Ni17" {
		t.Fatalf("remote sample %+v", res[0])
	}
	if res[1].Stoichiometry == nil || res[1].Stoichiometry.Formula != "Al4Ce" {
		t.Fatalf("results %s", b)
	}

	// served from cache
	remote.Close()
	b2, err := p.getResults()
	if err != nil {
		t.Fatal(err)
	}
	if string(b2) != string(b) {
		t.Fatal("cached result differs")
	}
}
