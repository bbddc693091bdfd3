package db

import (
	"context"
	"fmt"
	"regexp"

	"grafik/pkg/journal"
)

// identifier matches the table names accepted by the store:
// they are inserted in the queries as is.
var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// journalColumns lists the columns filled for each record.
var journalColumns = []string{"created_at", "severity", "app", "instance", "message"}

// JournalStore :
// Implementation of the journal store persisting the records
// in a table of the database.
//
// The `dbase` is the database to write to.
//
// The `table` is the name of the table receiving the records.
type JournalStore struct {
	dbase *DB
	table string
}

// NewJournalStore :
// Creates a store writing records to `table`. The table name
// must be a plain identifier.
//
// Returns the created store along with any error.
func NewJournalStore(dbase *DB, table string) (*JournalStore, error) {
	if dbase == nil {
		return nil, ErrInvalidDB
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: \"%s\"", ErrInvalidTable, table)
	}

	return &JournalStore{
		dbase: dbase,
		table: table,
	}, nil
}

// schema returns the statement creating the journal table.
func (s *JournalStore) schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id bigserial PRIMARY KEY,
	created_at timestamp with time zone NOT NULL,
	severity text NOT NULL,
	app text NOT NULL,
	instance text NOT NULL,
	message text NOT NULL
)`, s.table)
}

// EnsureSchema :
// Creates the journal table if it does not exist yet.
func (s *JournalStore) EnsureSchema(ctx context.Context) error {
	return s.dbase.DBExecute(ctx, s.schema())
}

// rows converts the records into the values of the copy.
func rows(records []journal.Record) [][]interface{} {
	out := make([][]interface{}, 0, len(records))

	for _, r := range records {
		out = append(out, []interface{}{
			r.Time,
			r.Level.Name(),
			r.AppName,
			r.InstanceID,
			r.Message,
		})
	}

	return out
}

// Store :
// Inserts the whole batch of records. The copy is atomic: either
// all records are inserted or none is.
func (s *JournalStore) Store(ctx context.Context, records []journal.Record) error {
	count, err := s.dbase.CopyFrom(ctx, s.table, journalColumns, rows(records))
	if err != nil {
		return err
	}

	if count != len(records) {
		return fmt.Errorf("inserted %d record(s) out of %d in \"%s\"", count, len(records), s.table)
	}

	return nil
}
