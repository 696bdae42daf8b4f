package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// QueryParams narrows a table query. Where and OrderBy are SQL fragments
// over the entry field names, e.g. Where "SessionID = ?" with Args
// {"cq1..."} and OrderBy "TimeMs DESC". A zero Limit returns every row.
type QueryParams struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

func (p QueryParams) where() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) selectFrom(table string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT * FROM %s%s", table, p.where())

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", p.Limit, p.Offset)
	}

	return b.String()
}

func (p QueryParams) countFrom(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, p.where())
}

// DataReader reads tables written by a DataRecorder.
type DataReader interface {
	// MapTable associates a table with the entry type it holds. A table
	// must be mapped before it can be queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables in mapping order.
	ListTables() []string

	// Query returns pointers to entries of the mapped type, together with
	// the number of rows matching params regardless of Limit.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the underlying database.
	Close() error
}

type sqliteReader struct {
	*sql.DB

	entryTypes map[string]reflect.Type
	tables     []string
}

// NewReader opens a recording file for reading.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:         db,
		entryTypes: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	if _, ok := r.entryTypes[tableName]; !ok {
		r.tables = append(r.tables, tableName)
	}

	r.entryTypes[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	return append([]string(nil), r.tables...)
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, ok := r.entryTypes[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("datarecording: table %s is not mapped",
			tableName)
	}

	var total int
	err := r.QueryRowContext(ctx, params.countFrom(tableName), params.Args...).
		Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.QueryContext(ctx, params.selectFrom(tableName),
		params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanEntries(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// scanEntries fills one entry per row. Columns without a matching field are
// discarded.
func scanEntries(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make([]int, len(columns))
	for i, c := range columns {
		fieldIndex[i] = -1
		if f, ok := entryType.FieldByName(c); ok && len(f.Index) == 1 {
			fieldIndex[i] = f.Index[0]
		}
	}

	var (
		entries []any
		discard any
	)

	targets := make([]any, len(columns))

	for rows.Next() {
		entry := reflect.New(entryType)

		for i, idx := range fieldIndex {
			if idx < 0 {
				targets[i] = &discard
				continue
			}
			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		entries = append(entries, entry.Interface())
	}

	return entries, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}
