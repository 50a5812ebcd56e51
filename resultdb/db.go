package resultdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RoanBrand/StoichDashboard/config"
	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/sample"
	"github.com/RoanBrand/StoichDashboard/stoich"
	_ "github.com/denisenkom/go-mssqldb"
)

const wallClock = "2006-01-02 15:04:05"

type ResultDB struct {
	conf       *config.Config
	connString string

	mu sync.Mutex // guards db and serializes inserts
	db *sql.DB
}

func Setup(conf *config.Config) *ResultDB {
	c := &conf.ResultsDatabase

	rdb := &ResultDB{
		conf:       conf,
		connString: fmt.Sprintf("server=%s;user id=%s;password=%s;database=%s", c.Address, c.User, c.Password, c.Database),
	}

	if err := rdb.openDB(); err != nil {
		log.Println(err)
	}

	return rdb
}

func (rdb *ResultDB) Stop() error {
	rdb.mu.Lock()
	defer rdb.mu.Unlock()

	if rdb.db == nil {
		return nil
	}

	err := rdb.db.Close()
	rdb.db = nil
	if err != nil {
		return fmt.Errorf("failed closing results DB: %w", err)
	}

	return nil
}

func (rdb *ResultDB) openDB() error {
	db, err := sql.Open("mssql", rdb.connString)
	if err != nil {
		return fmt.Errorf("failed opening results DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed pinging after opening results DB: %w", err)
	}

	rdb.db = db
	return nil
}

// InsertNewResults stores analyzed samples newer than the last one stored
// for their spectro in the foundry's MS SQL Server database.
// samples must be sorted newest first. Calls run one at a time so
// overlapping refreshes never insert the same sample twice.
func (rdb *ResultDB) InsertNewResults(samples []*sample.Record) error {
	rdb.mu.Lock()
	defer rdb.mu.Unlock()

	if rdb.db == nil {
		if err := rdb.openDB(); err != nil {
			return err
		}
	}

	tx, err := rdb.db.Begin()
	if err != nil {
		return err
	}

	table := rdb.conf.ResultsDatabase.Table
	lastTimes := make(map[int]time.Time)

	for i := len(samples) - 1; i >= 0; i-- { // reverse order: older to newer
		s := samples[i]
		if s.Stoichiometry == nil || s.Stoichiometry.Error != "" {
			continue
		}

		lastTime, ok := lastTimes[s.Spectro]
		if !ok {
			if lastTime, err = lastStored(tx, table, s.Spectro); err != nil {
				tx.Rollback()
				return err
			}
			lastTimes[s.Spectro] = lastTime

			if rdb.conf.DebugMode {
				log.Printf("results DB last sample timestamp for spectro %d: %s\n", s.Spectro, lastTime)
			}
		}
		if !s.TimeStamp.After(lastTime) {
			continue
		}

		q, args := insertStatement(table, s)
		if rdb.conf.DebugMode {
			log.Debug("results DB insert", "query", q, "args", args)
		}
		if _, err := tx.Exec(q, args...); err != nil {
			tx.Rollback()
			return errors.New("error executing insert statement: " + q + " Error: " + err.Error())
		}
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

func lastStored(tx *sql.Tx, table string, spectro int) (time.Time, error) {
	var lastTime time.Time
	err := tx.QueryRow(`SELECT TOP (1) DateTimeStamp FROM "`+table+`" WHERE "Spectro" = @p1 ORDER BY ID DESC;`, spectro).Scan(&lastTime)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, err
	}

	// We insert wall time (without TZ), so DB returns as UTC. Convert here to local, preserving wall clock time.
	return time.ParseInLocation(wallClock, lastTime.Format(wallClock), time.Local)
}

// insertStatement builds a parameterized insert for one analyzed sample.
// Element columns are only included for the supported elements the sample has.
func insertStatement(table string, s *sample.Record) (string, []interface{}) {
	st := s.Stoichiometry
	cols := []string{"DateTimeStamp", "SampleName", "Furname", "Spectro", "AnalysisID", "Formula", "Multiplier", "Deviation"}
	args := []interface{}{
		s.TimeStamp.Format(wallClock), // DB column is DATETIME, with no timezone
		s.SampleName,
		s.Furnace,
		s.Spectro,
		s.AnalysisID,
		st.Formula,
		st.Multiplier,
		st.Deviation,
	}

	for _, sym := range stoich.Symbols() {
		if v, ok := s.ResultsMap[sym.String()]; ok {
			cols = append(cols, sym.String())
			args = append(args, v)
		}
	}

	qry := strings.Builder{}
	qry.WriteString(`INSERT INTO "`)
	qry.WriteString(table)
	qry.WriteString(`" ("`)
	qry.WriteString(strings.Join(cols, `", "`))
	qry.WriteString(`") VALUES (`)
	for i := range args {
		if i > 0 {
			qry.WriteString(", ")
		}
		qry.WriteString("@p")
		qry.WriteString(strconv.Itoa(i + 1))
	}
	qry.WriteString(");")

	return qry.String(), args
}
