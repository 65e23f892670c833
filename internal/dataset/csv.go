package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RawTable is a delimited file as loaded: columns as originally named, one
// record per source row, no interpretation of cells.
type RawTable struct {
	Header  []string
	Records [][]string
	// Skipped counts records the CSV reader rejected as malformed.
	Skipped int
}

// Index returns the position of a header column, or -1.
func (r *RawTable) Index(name string) int {
	for i, h := range r.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns record row's value at column position c, or "" when the
// record is shorter than the header.
func (r *RawTable) Cell(row, c int) string {
	rec := r.Records[row]
	if c < 0 || c >= len(rec) {
		return ""
	}
	return rec[c]
}

// ReadCSV loads a comma-delimited table with a header row. Records with a
// different field count than the header are kept (missing cells read as
// empty); records the reader cannot parse are skipped and counted.
func ReadCSV(r io.Reader) (*RawTable, error) {
	br := bufio.NewReader(r)
	// Strip a UTF-8 BOM; spreadsheet exports of the public datasets carry one.
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	raw := &RawTable{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			raw.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		raw.Records = append(raw.Records, rec)
	}
	return raw, nil
}

// WriteCSV writes the table with a header row. Null cells are written as
// empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.columns))
	for _, row := range t.rows {
		for c, v := range row {
			rec[c] = v.Text()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
