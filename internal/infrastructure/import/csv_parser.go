package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads an uploaded CSV: strips a UTF-8 BOM, rejects non-UTF-8
// content, and maps each data row onto the header names.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser)

// WithDelimiter overrides the field delimiter (comma by default)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) { p.delimiter = d }
}

// WithLazyQuotes toggles lenient quote handling
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) { p.lazyQuotes = lazy }
}

// WithTrimSpace toggles whitespace trimming on headers and cells
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) { p.trimSpace = trim }
}

// NewCSVParser wraps a reader. Fails up front on empty or non-UTF-8 input.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)
	if err := prepareInput(buf); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = p.lazyQuotes
	p.reader.TrimLeadingSpace = p.trimSpace
	// rows may legitimately have fewer cells than the header
	p.reader.FieldsPerRecord = -1

	return p, nil
}

// ParseFromBytes builds a parser over an in-memory upload
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

// prepareInput discards a leading UTF-8 BOM and checks the first chunk
// of the file decodes as UTF-8.
func prepareInput(buf *bufio.Reader) error {
	head, err := buf.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.Equal(head, utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}

	const checkSize = 4096
	content, err := buf.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader consumes the first row and indexes its column names
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(record) == 0 {
		return ErrMissingHeader
	}

	p.headers = make([]string, len(record))
	for i, name := range record {
		if p.trimSpace {
			name = strings.TrimSpace(name)
		}
		p.headers[i] = name
		p.headerMap[name] = i
	}

	p.currentRow = 1
	return nil
}

// Headers returns the column names in file order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HeaderMap returns column name to index
func (p *CSVParser) HeaderMap() map[string]int {
	return p.headerMap
}

// HasHeader reports whether a column exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// ValidateHeaders returns the required columns the file is missing
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// GetColumnIndex returns the index of a named column
func (p *CSVParser) GetColumnIndex(name string) (int, bool) {
	idx, ok := p.headerMap[name]
	return idx, ok
}

// Row is one parsed data row. LineNumber counts from the top of the file,
// header included, so it matches what the user sees in a spreadsheet.
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the cell under the named column ("" when absent)
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the cell, or defaultVal when absent or empty
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty reports whether every cell of the row is empty
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Short rows are padded with empty
// cells; extra cells beyond the header are kept only in RawFields.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	p.currentRow++
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}
	for i, header := range p.headers {
		var value string
		if i < len(record) {
			value = record[i]
			if p.trimSpace {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[header] = value
	}

	return row, nil
}

// ReadAllRows drains the file, dropping rows that are entirely empty
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the last line number read (header is line 1)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns how many data rows were read so far
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}
