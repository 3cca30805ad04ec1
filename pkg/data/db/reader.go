package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"

	"github.com/peter-kozarec/ringstat/pkg/common"
)

const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Reader loads samples from a table with ts, sensor and value columns.
type Reader struct {
	driverName     string
	dataSourceName string
	db             *sql.DB
}

func NewReader(driverName, dataSourceName string) *Reader {
	return &Reader{
		driverName:     driverName,
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect(ctx context.Context) error {
	db, err := sql.Open(r.driverName, r.dataSourceName)
	if err != nil {
		return errors.Wrapf(err, "sql.Open %s", r.driverName)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "ping %s", r.driverName)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

// DB exposes the connection, mainly for seeding fixtures.
func (r *Reader) DB() *sql.DB {
	return r.db
}

// LoadSamples streams the rows with from <= ts <= to ordered by time.
func (r *Reader) LoadSamples(ctx context.Context, table string, from, to time.Time, handler func(common.Sample) error) error {
	if !tableName.MatchString(table) {
		return errors.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`SELECT ts, sensor, value FROM %s WHERE ts BETWEEN %s AND %s ORDER BY ts`,
		table, r.placeholder(1), r.placeholder(2))

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return errors.Wrap(err, "error preparing query")
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var sample common.Sample
		if err := rows.Scan(&sample.TimeStamp, &sample.Sensor, &sample.Value); err != nil {
			return errors.Wrap(err, "error scanning row")
		}
		if err := handler(sample); err != nil {
			return errors.Wrap(err, "error processing sample")
		}
	}

	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "error scanning rows")
	}
	return nil
}

func (r *Reader) placeholder(n int) string {
	if r.driverName == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
