// Package tabular turns delimited text and spreadsheet representations of
// COUNTER reports into the normalized report model.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/miku/counterkit/report"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// RowSource yields one report row at a time as a list of cells, io.EOF at
// the end. Adapters exist for CSV, TSV, XLSX and in-memory rows; none of
// them knows anything about report semantics.
type RowSource interface {
	Next() ([]string, error)
}

type sliceSource struct {
	rows [][]string
	i    int
}

func (s *sliceSource) Next() ([]string, error) {
	if s.i >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.i]
	s.i++
	return row, nil
}

// Rows adapts already split rows into a RowSource.
func Rows(rows [][]string) RowSource {
	return &sliceSource{rows: rows}
}

type delimitedSource struct {
	r *csv.Reader
}

func (d *delimitedSource) Next() ([]string, error) {
	return d.r.Read()
}

// NewDelimited reads comma or tab separated rows from r. Records may have a
// varying number of fields; vendor files are ragged.
func NewDelimited(r io.Reader, comma rune) RowSource {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &delimitedSource{r: cr}
}

// readXLSX extracts the first worksheet of a workbook row major, blank cells
// mapped to empty strings.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// Parse parses a COUNTER file, guessing the file type from the extension,
// then from the content.
func Parse(path string) (*report.Report, error) {
	return ParseFile(path, "")
}

// ParseFile parses a COUNTER file of the given type ("csv", "tsv" or
// "xlsx"); with an empty type the format is detected. Files compressed with
// gzip or zstd are decompressed transparently.
func ParseFile(path, filetype string) (*report.Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err = decompress(b)
	if err != nil {
		return nil, err
	}
	if filetype == "" {
		filetype = guessType(path, b)
	}
	switch filetype {
	case "xlsx":
		rows, err := readXLSX(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		return ParseRows(Rows(rows))
	case "tsv":
		return ParseRows(NewDelimited(bytes.NewReader(decode(b)), '\t'))
	case "csv":
		return ParseRows(NewDelimited(bytes.NewReader(decode(b)), ','))
	}
	return nil, fmt.Errorf("unknown file type %s", filetype)
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func decompress(b []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(b, gzipMagic):
		r, err := pgzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case bytes.HasPrefix(b, zstdMagic):
		r, err := zstd.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	return b, nil
}

// guessType looks for a known file extension, then for signatures in the
// content: zip containers are workbooks, a tab anywhere means TSV, anything
// else is treated as CSV.
func guessType(path string, b []byte) string {
	name := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".zst")
	switch filepath.Ext(name) {
	case ".tsv":
		return "tsv"
	case ".xlsx":
		return "xlsx"
	case ".csv":
		return "csv"
	}
	switch {
	case bytes.HasPrefix(b, []byte("PK")):
		return "xlsx"
	case bytes.ContainsRune(b, '\t'):
		return "tsv"
	}
	return "csv"
}

// decode strips a UTF-8 BOM and falls back to Latin-1 for files that are not
// valid UTF-8, which accepts any byte at the cost of possibly odd results.
func decode(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte{0xef, 0xbb, 0xbf})
	if utf8.Valid(b) {
		return b
	}
	log.Warnf("input is not valid UTF-8, falling back to Latin-1")
	var buf bytes.Buffer
	for _, c := range b {
		buf.WriteRune(rune(c))
	}
	return buf.Bytes()
}
