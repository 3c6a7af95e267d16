// Package datarecording stores flat records, such as per-tick snapshots, in
// SQLite tables and reads them back.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

var (
	// ErrFileExists is returned when the recording file is already present.
	ErrFileExists = errors.New("datarecording: file already exists")

	// ErrInvalidEntry is returned for entries that are not flat structs of
	// scalar fields.
	ErrInvalidEntry = errors.New("datarecording: entry is invalid")

	// ErrNoSuchTable is returned when inserting into a table that was never
	// created.
	ErrNoSuchTable = errors.New("datarecording: table does not exist")

	// ErrClosed is returned when using a recorder after Close.
	ErrClosed = errors.New("datarecording: recorder is closed")
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any) error

	// ListTables returns the names of the tables created so far.
	ListTables() []string

	// Flush writes all buffered entries into the database.
	Flush() error

	// Close flushes and releases the database.
	Close() error
}

type table struct {
	structType reflect.Type
	entries    []any
}

// SQLiteWriter records data into a SQLite database.
type SQLiteWriter struct {
	*sql.DB

	mu         sync.Mutex
	filename   string
	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool
}

// New creates the database file <path>.sqlite3 and a recorder writing to it.
// An empty path picks a unique name. Buffered entries are flushed when the
// program exits through atexit.Exit.
func New(path string) (*SQLiteWriter, error) {
	if path == "" {
		path = "stopwatch_trace_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	w := newSQLiteWriter(db)
	w.filename = filename

	atexit.Register(func() { _ = w.Close() })

	return w, nil
}

// NewWithDB creates a recorder on an open database. The caller keeps
// ownership of db, but Close will close it.
func NewWithDB(db *sql.DB) *SQLiteWriter {
	return newSQLiteWriter(db)
}

func newSQLiteWriter(db *sql.DB) *SQLiteWriter {
	return &SQLiteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}
}

// Filename returns the database file, or "" for recorders built on an open
// database.
func (w *SQLiteWriter) Filename() string {
	return w.filename
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a struct", ErrInvalidEntry, entry)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() || !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("%w: field %s of %s", ErrInvalidEntry, field.Name, t)
		}
	}

	return nil
}

// CreateTable creates a table with one column per field of sampleEntry.
func (w *SQLiteWriter) CreateTable(tableName string, sampleEntry any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if !tableNamePattern.MatchString(tableName) {
		return fmt.Errorf("datarecording: invalid table name %q", tableName)
	}

	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`

	if _, err := w.Exec(createTableSQL); err != nil {
		return fmt.Errorf("datarecording: creating table %s: %w", tableName, err)
	}

	w.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}

	return nil
}

// InsertData buffers an entry and flushes once the batch is full.
func (w *SQLiteWriter) InsertData(tableName string, entry any) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}

	t, exists := w.tables[tableName]
	if !exists {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSuchTable, tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		w.mu.Unlock()
		return fmt.Errorf("%w: %T does not match table %s",
			ErrInvalidEntry, entry, tableName)
	}

	t.entries = append(t.entries, entry)
	w.entryCount++
	full := w.entryCount >= w.batchSize
	w.mu.Unlock()

	if full {
		return w.Flush()
	}

	return nil
}

// ListTables returns the names of the tables created so far.
func (w *SQLiteWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

// Flush writes every buffered entry in a single transaction.
func (w *SQLiteWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.flushLocked()
}

func (w *SQLiteWriter) flushLocked() error {
	if w.entryCount == 0 || w.closed {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return err
	}

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		if err := insertAll(tx, tableName, t.entries); err != nil {
			_ = tx.Rollback()
			return err
		}

		t.entries = nil
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	w.entryCount = 0

	return nil
}

func insertAll(tx *sql.Tx, tableName string, entries []any) error {
	placeholders := structs.Names(entries[0])
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := tx.Prepare("INSERT INTO " + tableName +
		" VALUES (" + strings.Join(placeholders, ", ") + ")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		v := reflect.ValueOf(entry)
		args := make([]any, 0, v.NumField())

		for i := 0; i < v.NumField(); i++ {
			args = append(args, v.Field(i).Interface())
		}

		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("datarecording: inserting into %s: %w", tableName, err)
		}
	}

	return nil
}

// Close flushes the buffered entries and closes the database. Calling Close
// more than once is a no-op.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	err := w.flushLocked()
	w.closed = true

	return errors.Join(err, w.DB.Close())
}

var _ DataRecorder = (*SQLiteWriter)(nil)
