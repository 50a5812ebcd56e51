package resultdb

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// memTable is a results table kept in memory behind a database/sql driver.
type memTable struct {
	sync.Mutex
	inserted []memRow
}

type memRow struct {
	stamp   string
	name    string
	spectro int64
}

func (t *memTable) rows() []memRow {
	t.Lock()
	defer t.Unlock()
	return append([]memRow(nil), t.inserted...)
}

var (
	memTablesMu sync.Mutex
	memTables   = map[string]*memTable{}
)

func init() {
	sql.Register("memresults", memDriver{})
}

// openMemDB returns a database whose table is only visible through tbl.
func openMemDB(name string) (*sql.DB, *memTable, error) {
	tbl := &memTable{}
	memTablesMu.Lock()
	memTables[name] = tbl
	memTablesMu.Unlock()

	db, err := sql.Open("memresults", name)
	return db, tbl, err
}

type memDriver struct{}

func (memDriver) Open(name string) (driver.Conn, error) {
	memTablesMu.Lock()
	defer memTablesMu.Unlock()
	tbl, ok := memTables[name]
	if !ok {
		return nil, errors.New("no table " + name)
	}
	return &memConn{tbl: tbl}, nil
}

type memConn struct{ tbl *memTable }

func (c *memConn) Prepare(query string) (driver.Stmt, error) {
	return &memStmt{tbl: c.tbl, query: query}, nil
}
func (c *memConn) Close() error              { return nil }
func (c *memConn) Begin() (driver.Tx, error) { return memTx{}, nil }

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

type memStmt struct {
	tbl   *memTable
	query string
}

func (s *memStmt) Close() error  { return nil }
func (s *memStmt) NumInput() int { return -1 }

func (s *memStmt) Exec(args []driver.Value) (driver.Result, error) {
	if !strings.HasPrefix(s.query, "INSERT INTO") {
		return nil, errors.New("unexpected statement " + s.query)
	}
	s.tbl.Lock()
	defer s.tbl.Unlock()
	s.tbl.inserted = append(s.tbl.inserted, memRow{
		stamp:   args[0].(string),
		name:    args[1].(string),
		spectro: args[3].(int64),
	})
	return driver.RowsAffected(1), nil
}

// Query answers the last stored timestamp lookup. It is slow enough for
// concurrent callers to overlap.
func (s *memStmt) Query(args []driver.Value) (driver.Rows, error) {
	if !strings.HasPrefix(s.query, "SELECT TOP (1) DateTimeStamp") {
		return nil, errors.New("unexpected query " + s.query)
	}
	time.Sleep(20 * time.Millisecond)

	s.tbl.Lock()
	defer s.tbl.Unlock()
	for i := len(s.tbl.inserted) - 1; i >= 0; i-- {
		r := s.tbl.inserted[i]
		if r.spectro != args[0].(int64) {
			continue
		}
		ts, err := time.Parse(wallClock, r.stamp) // DATETIME comes back as UTC
		if err != nil {
			return nil, err
		}
		return &memRows{values: []driver.Value{ts}}, nil
	}
	return &memRows{}, nil
}

type memRows struct {
	values []driver.Value
	done   bool
}

func (r *memRows) Columns() []string { return []string{"DateTimeStamp"} }
func (r *memRows) Close() error      { return nil }

func (r *memRows) Next(dest []driver.Value) error {
	if r.done || len(r.values) == 0 {
		return io.EOF
	}
	r.done = true
	copy(dest, r.values)
	return nil
}
