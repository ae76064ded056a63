package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Format names an output rendering.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// ParseFormat validates a format name.  The empty string is FormatCSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatSQLite:
		return f, nil
	default:
		return "", errors.InvalidConfig("unknown output format " + s).
			WithDetail("expected csv, xlsx or sqlite")
	}
}

// FormatFromPath infers the format from the file extension, defaulting to
// FormatCSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// Writer renders a whole Table to its destination.
type Writer interface {
	Write(t Table) error
}

// WriterOptions tunes the non-CSV writers.
type WriterOptions struct {
	// Sheet is the XLSX worksheet name.
	Sheet string
	// TableName is the SQLite table name.
	TableName string
}

// NewWriter returns the Writer for format that writes to path.
func NewWriter(format Format, path string, opts WriterOptions) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return &CSVWriter{Path: path}, nil
	case FormatXLSX:
		return &XLSXWriter{Path: path, Sheet: opts.Sheet}, nil
	case FormatSQLite:
		return &SQLiteWriter{Path: path, TableName: opts.TableName}, nil
	default:
		return nil, errors.InvalidConfig("unknown output format " + string(format))
	}
}

// CSVWriter writes a comma-separated UTF-8 file, creating parent
// directories as needed.
type CSVWriter struct {
	Path string
}

// Write implements Writer.
func (w *CSVWriter) Write(t Table) error {
	if err := ensureDir(w.Path); err != nil {
		return err
	}
	f, err := os.Create(w.Path)
	if err != nil {
		return outputErr(err, w.Path)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return outputErr(err, w.Path)
	}
	if err := f.Close(); err != nil {
		return outputErr(err, w.Path)
	}
	return nil
}

// WriteCSV encodes t to dst.
func WriteCSV(dst io.Writer, t Table) error {
	cw := csv.NewWriter(dst)
	if t.Header != nil {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return outputErr(err, dir)
	}
	return nil
}

func outputErr(err error, path string) error {
	return errors.Wrap(err, errors.ErrCodeOutputWriteFailure, "write failed").WithDetail(path)
}

//Personal.AI order the ending
