// Package loader reads tabular event sources into normalized in-memory tables.
package loader

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-defense-metrics/internal/model"
)

// ErrSourceUnavailable is matched (errors.Is) by every error caused by a
// missing or unreadable source.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceError reports which source could not be read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{ErrSourceUnavailable, e.Err} }

// Kind is the semantic type the loader assigned to a column.
type Kind int

const (
	KindRaw    Kind = iota // untouched text
	KindID                 // nullable integer
	KindString             // trimmed text
)

// Column is one named column. Text is always populated; for KindID columns
// it holds the canonical integer text, or "" when the value is missing.
type Column struct {
	Name string
	Kind Kind
	Text []string
	Ints []model.NullInt // KindID only
}

// Table is a column-oriented, normalized table.
type Table struct {
	Source  string
	Columns []Column
	Rows    int

	index map[string]int
}

// Normalization names the columns coerced on load. Absent columns are skipped.
type Normalization struct {
	IDColumns     []string
	StringColumns []string
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil || name == "" {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.Columns[i], true
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Names returns the column names in source order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Load reads the CSV source at path (optionally .gz, .bz2 or .zst compressed)
// and normalizes it.
func Load(path string, norm Normalization) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	src, closeFn, err := decompress(path, f)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer closeFn()

	t, err := Read(src, norm)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	t.Source = path
	return t, nil
}

// decompress wraps r in a decoder chosen by the file suffix.
func decompress(path string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(r), noop, nil
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("gzip: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	}
	return r, noop, nil
}

// Read parses CSV with a header row from r. An empty input yields an empty table.
func Read(r io.Reader, norm Normalization) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	// Keep the first occurrence of each column name.
	t := &Table{index: make(map[string]int, len(header))}
	var srcIdx []int
	for i, name := range header {
		if _, dup := t.index[name]; dup {
			continue
		}
		t.index[name] = len(t.Columns)
		t.Columns = append(t.Columns, Column{Name: name})
		srcIdx = append(srcIdx, i)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.Rows+1, err)
		}
		for ci, si := range srcIdx {
			v := ""
			if si < len(rec) {
				v = rec[si]
			}
			t.Columns[ci].Text = append(t.Columns[ci].Text, v)
		}
		t.Rows++
	}

	t.normalize(norm)
	return t, nil
}

func (t *Table) normalize(norm Normalization) {
	for _, name := range norm.IDColumns {
		c, ok := t.Column(name)
		if !ok {
			continue
		}
		c.Kind = KindID
		c.Ints = make([]model.NullInt, len(c.Text))
		for i, v := range c.Text {
			n := ParseNullInt(v)
			c.Ints[i] = n
			if n.Valid {
				c.Text[i] = strconv.FormatInt(n.Int, 10)
			} else {
				c.Text[i] = ""
			}
		}
	}
	for _, name := range norm.StringColumns {
		c, ok := t.Column(name)
		if !ok || c.Kind == KindID {
			continue
		}
		c.Kind = KindString
		for i, v := range c.Text {
			c.Text[i] = strings.TrimSpace(v)
		}
	}
}

// ParseNullInt coerces s to an integer. Empty, non-numeric and non-integral
// values are missing rather than errors.
func ParseNullInt(s string) model.NullInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.NullInt{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.IntOf(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return model.NullInt{}
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return model.NullInt{}
	}
	return model.IntOf(int64(f))
}
