// Package tabular reads and writes the delimited tables that flow through a
// run: raw regulatory exports, the normalized tables produced by cleaning,
// and the compiled report in CSV, XLSX or SQLite form.
package tabular

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Supported source encodings.  The empty name means UTF-8.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "latin-1"
)

var encodings = map[string]encoding.Encoding{
	"":                  unicode.UTF8,
	EncodingUTF8:        unicode.UTF8,
	"utf8":              unicode.UTF8,
	EncodingWindows1252: charmap.Windows1252,
	"cp1252":            charmap.Windows1252,
	EncodingLatin1:      charmap.ISO8859_1,
	"latin1":            charmap.ISO8859_1,
	"iso-8859-1":        charmap.ISO8859_1,
}

// KnownEncodings lists the accepted encoding names, sorted.
func KnownEncodings() []string {
	out := make([]string, 0, len(encodings))
	for name := range encodings {
		if name != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ValidEncoding reports whether name is a supported encoding.
func ValidEncoding(name string) bool {
	_, ok := encodings[strings.ToLower(name)]
	return ok
}

// Options controls how a delimited table is read.
type Options struct {
	// Delimiter is the field separator.  Zero means ','.
	Delimiter rune
	// FromLine is the 1-based line of the first record returned.  Records
	// starting before it are skipped.  Zero and one both mean "from the top".
	FromLine int
	// Encoding names the source character set.  A byte-order mark, when
	// present, always wins.
	Encoding string
}

// Row is one record with the line it starts on.
type Row struct {
	Line   int
	Fields []string
}

// Cell returns field i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	return Cell(r.Fields, i)
}

// Cell returns fields[i], or "" when i is out of range.
func Cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// RowReader streams rows from a table.  Next returns io.EOF after the last
// row.
type RowReader interface {
	Next() (Row, error)
	Close() error
}

// Opener opens a named table.  FileOpener reads from disk; tests substitute
// in-memory tables.
type Opener interface {
	Open(path string, opts Options) (RowReader, error)
}

// FileOpener opens tables from the local filesystem.
type FileOpener struct{}

// Open implements Opener.
func (FileOpener) Open(path string, opts Options) (RowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceRead(err, path)
	}
	r, err := newReader(f, path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Reader is the csv-backed RowReader.
type Reader struct {
	csv    *csv.Reader
	name   string
	from   int
	closer io.Closer
}

// newReader reads a table from src.  name is used in error messages only.
func newReader(src io.Reader, name string, opts Options) (*Reader, error) {
	enc, ok := encodings[strings.ToLower(opts.Encoding)]
	if !ok {
		return nil, errors.InvalidConfig("unsupported encoding " + opts.Encoding).
			WithDetail(name)
	}
	decoded := transform.NewReader(bufio.NewReader(src), unicode.BOMOverride(enc.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.Comma = ','
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr, name: name, from: opts.FromLine}, nil
}

// Next implements RowReader.
func (r *Reader) Next() (Row, error) {
	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			return Row{}, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				return Row{}, errors.SourceRead(err, fmt.Sprintf("%s:%d", r.name, perr.StartLine))
			}
			return Row{}, errors.SourceRead(err, r.name)
		}
		line, _ := r.csv.FieldPos(0)
		if line < r.from {
			continue
		}
		return Row{Line: line, Fields: rec}, nil
	}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ForEach opens path through o and calls fn for every row.  A non-nil error
// from fn stops the iteration and is returned as is.
func ForEach(o Opener, path string, opts Options, fn func(Row) error) error {
	rr, err := o.Open(path, opts)
	if err != nil {
		return err
	}
	defer func() { _ = rr.Close() }()
	for {
		row, err := rr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// MemOpener serves tables from memory, keyed by path.
type MemOpener map[string]string

// Open implements Opener.
func (m MemOpener) Open(path string, opts Options) (RowReader, error) {
	content, ok := m[path]
	if !ok {
		return nil, errors.SourceRead(os.ErrNotExist, path)
	}
	return newReader(strings.NewReader(content), path, opts)
}

//Personal.AI order the ending
