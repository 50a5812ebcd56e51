package mdb_spectro

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/RoanBrand/StoichDashboard/sample"
	_ "github.com/mattn/go-adodb"
)

// Driver has problems with multiple connections.
// DB is a file on disk anyway.
var querySerializer sync.Mutex

// ElementFromKey decodes result keys like "0x00000015-Al" to the element symbol.
func ElementFromKey(key string) (string, bool) {
	i := strings.LastIndexByte(key, '-')
	if i < 0 || i == len(key)-1 || !strings.HasPrefix(key, "0x") {
		return "", false
	}
	return key[i+1:], true
}

func GetLastFurnaceResults(dsn string, furnaces []string, tSamplesOnly bool) ([]sample.Record, error) {
	if len(furnaces) == 0 {
		return nil, nil
	}

	querySerializer.Lock()
	defer querySerializer.Unlock()

	db, err := sql.Open("adodb", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	defer db.Close()

	sampleRows, err := db.Query(lastFurnaceQuery(furnaces, tSamplesOnly))
	if err != nil {
		return nil, fmt.Errorf("error querying 'KSampleResultTbl': %w", err)
	}
	defer sampleRows.Close()

	recs := make([]sample.Record, 0, len(furnaces))
	for sampleRows.Next() {
		var r sample.Record
		if err := sampleRows.Scan(&r.SampleName, &r.Furnace, &r.TimeStamp); err != nil {
			return nil, fmt.Errorf("error scanning row from 'KSampleResultTbl': %w", err)
		}
		r.Spectro = 2
		recs = append(recs, r)
	}

	return recs, sampleRows.Err()
}

func lastFurnaceQuery(furnaces []string, tSamplesOnly bool) string {
	qry := strings.Builder{}
	for i, f := range furnaces {
		if i > 0 {
			qry.WriteString(` UNION `)
		}
		qry.WriteString(`
			(SELECT TOP 1 SampleName, Quality, StoreDateTime
			FROM KSampleResultTbl WHERE UCASE(Quality) = '` + strings.ToUpper(strings.ReplaceAll(f, "'", "''")) + `'`)
		if tSamplesOnly {
			qry.WriteString(` AND UCASE(Right(SampleName,1)) = 'T' `)
		}
		qry.WriteString(` ORDER BY SampleResultID DESC)`)
	}
	return qry.String()
}

func GetResults(dsn string, numResults int) ([]*sample.Record, error) {
	querySerializer.Lock()
	defer querySerializer.Unlock()

	db, err := sql.Open("adodb", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	defer db.Close()

	sampleRows, err := db.Query(`
		SELECT TOP ` + strconv.Itoa(numResults) + `
		SampleResultID, SampleName, Quality
		FROM KSampleResultTbl
		ORDER BY SampleResultID DESC;`)
	if err != nil {
		return nil, fmt.Errorf("error querying 'KSampleResultTbl': %w", err)
	}
	defer sampleRows.Close()

	recs := make([]*sample.Record, 0, numResults)
	ids := make([]int64, 0, numResults)

	for sampleRows.Next() {
		var id int64
		var sampleName sql.NullString
		var furnace sql.NullString
		r := &sample.Record{Spectro: 2}

		err := sampleRows.Scan(&id, &sampleName, &furnace)
		if err != nil {
			return nil, fmt.Errorf("error scanning row from 'KSampleResultTbl': %w", err)
		}

		if sampleName.Valid {
			r.SampleName = sampleName.String
		}
		if furnace.Valid {
			r.Furnace = furnace.String
		}

		recs = append(recs, r)
		ids = append(ids, id)
	}

	if err = sampleRows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows from 'KSampleResultTbl': %w", err)
	}

	for i, r := range recs {
		measureResultRows, err := db.Query(`
			SELECT m.Timestamp, r.ResultKey, r.Value
			FROM KMeasureResultTbl m
			LEFT JOIN KResultValueTbl r ON ((r.MeasureResultID = m.MeasureResultID) AND (r.ResultType = 2) AND (r.Value > 0.0))
			WHERE m.SampleResultID = ` + strconv.FormatInt(ids[i], 10) + ` AND m.ResultType = 1;`)
		if err != nil {
			return nil, fmt.Errorf("error querying 'KMeasureResultTbl': %w", err)
		}

		err = readMeasureResults(measureResultRows, r)
		measureResultRows.Close()
		if err != nil {
			return nil, err
		}
	}

	return recs, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// readMeasureResults fills r's timestamp and wt% results. The first value
// per element wins.
func readMeasureResults(rows rowScanner, r *sample.Record) error {
	r.ResultsMap = make(map[string]float64)

	for rows.Next() {
		var elCode sql.NullString
		var elValue sql.NullFloat64

		if err := rows.Scan(&r.TimeStamp, &elCode, &elValue); err != nil {
			return fmt.Errorf("error scanning row from 'KMeasureResultTbl': %w", err)
		}

		if !elCode.Valid || !elValue.Valid {
			continue
		}

		if el, ok := ElementFromKey(elCode.String); ok {
			if _, ok := r.ResultsMap[el]; !ok {
				r.ResultsMap[el] = elValue.Float64
			}
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error reading rows from 'KMeasureResultTbl': %w", err)
	}
	return nil
}
