package resultdb

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/sample"
	"github.com/RoanBrand/StoichDashboard/stoich"
)

func TestInsertStatement(t *testing.T) {
	s := &sample.Record{
		SampleName: "A100T",
		Furnace:    "F1",
		TimeStamp:  time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local),
		Spectro:    3,
		ResultsMap: map[string]float64{"Ce": 56.5, "Al": 43.5, "Fe": 0.3},
	}
	s.Analyze(stoich.Options{})

	q, args := insertStatement("AccStoich", s)

	want := `INSERT INTO "AccStoich" ("DateTimeStamp", "SampleName", "Furname", "Spectro", "AnalysisID", "Formula", "Multiplier", "Deviation", "Al", "Ce") VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10);`
	if q != want {
		t.Fatalf("query\n%s\nwant\n%s", q, want)
	}
	if len(args) != 10 {
		t.Fatalf("args %v", args)
	}
	if args[0] != "2024-03-01 10:30:00" || args[3] != 3 || args[5] != "Al4Ce" || args[6] != 1 {
		t.Fatalf("args %v", args)
	}
	if args[8] != 43.5 || args[9] != 56.5 {
		t.Fatalf("element args %v", args[8:])
	}
	if strings.Contains(q, "Fe") {
		t.Fatalf("unsupported element column in %s", q)
	}
}

func analyzed(name string, ts time.Time, results map[string]float64) *sample.Record {
	s := &sample.Record{SampleName: name, Furnace: "F1", TimeStamp: ts, Spectro: 2, ResultsMap: results}
	s.Analyze(stoich.Options{})
	return s
}

func TestInsertNewResultsConcurrent(t *testing.T) {
	db, tbl, err := openMemDB(t.Name())
	if err != nil {
		t.Fatal(err)
	}
	conf := config.Default()
	conf.ResultsDatabase.Table = "Stoich"
	rdb := &ResultDB{conf: conf, db: db}
	defer rdb.Stop()

	day := func(d int) time.Time { return time.Date(2024, 3, d, 10, 0, 0, 0, time.Local) }
	samples := []*sample.Record{ // newest first
		analyzed("S3", day(3), map[string]float64{"Al": 50, "Ni": 50}),
		analyzed("S2", day(2), map[string]float64{"Fe": 99}), // cannot be analyzed, skipped
		analyzed("S1", day(1), map[string]float64{"Al": 43.5, "Ce": 56.5}),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- rdb.InsertNewResults(samples)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	rows := tbl.rows()
	if len(rows) != 2 || rows[0].name != "S1" || rows[1].name != "S3" {
		t.Fatalf("inserted %+v", rows)
	}

	newer := append([]*sample.Record{analyzed("S4", day(4), map[string]float64{"Mg": 55, "Si": 45})}, samples...)
	if err = rdb.InsertNewResults(newer); err != nil {
		t.Fatal(err)
	}
	rows = tbl.rows()
	if len(rows) != 3 || rows[2].name != "S4" || rows[2].stamp != "2024-03-04 10:00:00" {
		t.Fatalf("inserted %+v", rows)
	}
}
