package fileparser

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/RoanBrand/StoichDashboard/sample"
)

const timestampLayout = "2006-01-02T15:04:05"

// Record is one sample result read from a spectro XML file.
type Record struct {
	ID        string             `json:"id"`
	Furnace   string             `json:"furnace"`
	Operator  string             `json:"operator,omitempty"`
	TimeStamp time.Time          `json:"time_stamp"`
	Results   map[string]float64 `json:"results"` // wt% by element
}

// Sample converts r for the dashboard.
func (r *Record) Sample(spectro int) *sample.Record {
	return &sample.Record{
		SampleName: r.ID,
		Furnace:    r.Furnace,
		TimeStamp:  r.TimeStamp,
		ResultsMap: r.Results,
		Spectro:    spectro,
	}
}

// resultFiles lists spectro result files in folder, newest first.
// Spectro XML file names contain dates, so sorting by name sorts by time.
func resultFiles(xmlFolder string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(xmlFolder, "*"))
	if err != nil {
		return nil, err
	}

	xmlFiles := files[:0]
	for _, file := range files {
		if strings.EqualFold(filepath.Ext(file), ".xml") && strings.Contains(strings.ToLower(filepath.Base(file)), "spectro") {
			xmlFiles = append(xmlFiles, file)
		}
	}

	sort.Slice(xmlFiles, func(i, j int) bool {
		return xmlFiles[i] > xmlFiles[j]
	})
	return xmlFiles, nil
}

// ParseFile decodes all sample results in one XML file.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file sampleResultsXMLFile
	if err = xml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filepath.Base(path), err)
	}

	recs := make([]Record, 0, len(file.SampleResults))
	for i := range file.SampleResults {
		sr := &file.SampleResults[i]
		ts, err := time.ParseInLocation(timestampLayout, sr.Timestamp, time.Local)
		if err != nil {
			continue
		}

		r := Record{
			ID:        sr.SampleID(),
			Furnace:   sr.Furnace(),
			Operator:  sr.Operator(),
			TimeStamp: ts,
			Results:   make(map[string]float64),
		}
		if len(sr.MeasurementStatistics) > 0 {
			for _, el := range sr.MeasurementStatistics[0].Elements {
				if res, ok := el.reportedResult(); ok {
					r.Results[el.Name] = res.ResultValue
				}
			}
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// GetResults returns the latest numResults sample results in xmlFolder, newest first.
func GetResults(xmlFolder string, numResults int) ([]Record, error) {
	files, err := resultFiles(xmlFolder)
	if err != nil {
		return nil, err
	}

	recs := make([]Record, 0, numResults)
	for _, file := range files {
		if len(recs) >= numResults {
			break
		}
		res, err := ParseFile(file)
		if err != nil {
			return nil, err
		}
		recs = append(recs, res...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].TimeStamp.After(recs[j].TimeStamp)
	})
	if len(recs) > numResults {
		recs = recs[:numResults]
	}
	return recs, nil
}

// GetLastFurnaceResults returns the newest sample of each furnace, in the
// order the furnaces were given. Furnaces without samples are left out.
// With tSamplesOnly only samples whose ID ends in T are considered.
func GetLastFurnaceResults(xmlFolder string, furnaces []string, tSamplesOnly bool) ([]Record, error) {
	files, err := resultFiles(xmlFolder)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]Record, len(furnaces))
	for _, f := range furnaces {
		latest[strings.ToUpper(f)] = Record{}
	}
	remaining := len(latest)

	for _, file := range files {
		if remaining == 0 {
			break
		}
		res, err := ParseFile(file)
		if err != nil {
			return nil, err
		}
		for _, r := range res {
			if tSamplesOnly && !isTSample(r.ID) {
				continue
			}
			key := strings.ToUpper(r.Furnace)
			cur, wanted := latest[key]
			if !wanted {
				continue
			}
			if cur.TimeStamp.IsZero() {
				remaining--
			}
			if r.TimeStamp.After(cur.TimeStamp) {
				latest[key] = r
			}
		}
	}

	recs := make([]Record, 0, len(furnaces))
	for _, f := range furnaces {
		if r := latest[strings.ToUpper(f)]; !r.TimeStamp.IsZero() {
			recs = append(recs, r)
		}
	}
	return recs, nil
}

// isTSample reports whether id names a T sample, e.g. "A1234T".
func isTSample(id string) bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(id)), "T")
}
