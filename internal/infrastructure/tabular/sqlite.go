package tabular

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultTableName = "report"

// SQLiteWriter renders a Table into one flat table of TEXT columns named
// after the header.  An existing table of the same name is replaced.
type SQLiteWriter struct {
	Path      string
	TableName string
}

// Write implements Writer.
func (w *SQLiteWriter) Write(t Table) error {
	if len(t.Header) == 0 {
		return outputErr(fmt.Errorf("sqlite output needs a header row"), w.Path)
	}
	if err := ensureDir(w.Path); err != nil {
		return err
	}
	name := w.TableName
	if name == "" {
		name = defaultTableName
	}

	db, err := sql.Open("sqlite", w.Path)
	if err != nil {
		return outputErr(fmt.Errorf("open sqlite: %w", err), w.Path)
	}
	defer func() { _ = db.Close() }()

	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT NOT NULL DEFAULT ''"
		marks[i] = "?"
	}

	tx, err := db.Begin()
	if err != nil {
		return outputErr(err, w.Path)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoteIdent(name)); err != nil {
		return outputErr(fmt.Errorf("drop table: %w", err), w.Path)
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(name), strings.Join(cols, ", "))); err != nil {
		return outputErr(fmt.Errorf("create table: %w", err), w.Path)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return outputErr(fmt.Errorf("prepare insert: %w", err), w.Path)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]interface{}, len(t.Header))
	for _, r := range t.Rows {
		for i := range args {
			args[i] = Cell(r, i)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return outputErr(fmt.Errorf("insert row: %w", err), w.Path)
		}
	}
	if err := tx.Commit(); err != nil {
		return outputErr(fmt.Errorf("commit: %w", err), w.Path)
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

//Personal.AI order the ending
