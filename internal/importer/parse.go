package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/summitops/guest-transport/internal/model"
)

// Parse failures that abort an import before a session is created.
var (
	ErrEmptyFile  = errors.New("empty file: no header row found")
	ErrNoDataRows = errors.New("file contains no data rows")
)

// ParseWarning is a non-fatal problem found while reading the file.
type ParseWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ParseResult is the raw parsed spreadsheet: ordered headers, typed
// rows and any warnings.  Row numbers are 1-based file positions,
// header included, so they match what a reviewer sees in their own
// spreadsheet program.
type ParseResult struct {
	Columns  []string       `json:"columns"`
	Rows     []model.RawRow `json:"rows"`
	Warnings []ParseWarning `json:"warnings,omitempty"`
}

var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04} // zip container

// ParseSpreadsheet reads an uploaded roster in xlsx or CSV form.
// The format is sniffed from the content, not trusted from the file
// name; exports renamed to the wrong extension are common.
func ParseSpreadsheet(name string, data []byte) (*ParseResult, error) {
	if bytes.HasPrefix(data, xlsxMagic) || strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return parseXLSX(data)
	}
	return parseCSV(data)
}

// parseXLSX reads the sheet with the most data rows; roster files
// regularly carry an empty "Sheet2" or an instructions tab next to
// the real list.  RawCellValue keeps excelize from applying display
// formats, so date cells come back as serial numbers that the date
// transformer recognizes.
func parseXLSX(data []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var best [][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		if countDataRows(rows) > countDataRows(best) {
			best = rows
		}
	}
	if len(best) == 0 {
		return nil, ErrEmptyFile
	}
	return buildResult(best)
}

// parseCSV decodes the payload to UTF-8, sniffs the delimiter and
// reads it leniently: variable field counts are padded or truncated
// with a warning instead of failing the whole file.
func parseCSV(data []byte) (*ParseResult, error) {
	decoded, err := decodeToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep the row count honest so later row numbers line up.
			grid = append(grid, nil)
			continue
		}
		grid = append(grid, record)
	}
	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}
	return buildResult(grid)
}

// buildResult turns a raw cell grid into headers plus typed rows.
// The first non-empty line is the header; fully empty lines below
// it are skipped but still advance the file row number.
func buildResult(grid [][]string) (*ParseResult, error) {
	headerIdx := -1
	for i, line := range grid {
		if countNonEmpty(line) > 0 {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, ErrEmptyFile
	}

	columns := headerNames(grid[headerIdx])
	res := &ParseResult{Columns: columns}

	for i := headerIdx + 1; i < len(grid); i++ {
		fileRow := i + 1
		line := grid[i]
		if line == nil {
			res.Warnings = append(res.Warnings, ParseWarning{Row: fileRow, Message: "unreadable row skipped"})
			continue
		}
		if countNonEmpty(line) == 0 {
			continue
		}
		if len(line) < len(columns) {
			res.Warnings = append(res.Warnings, ParseWarning{
				Row:     fileRow,
				Message: fmt.Sprintf("row has %d columns, expected %d; missing values treated as empty", len(line), len(columns)),
			})
			padded := make([]string, len(columns))
			copy(padded, line)
			line = padded
		} else if len(line) > len(columns) {
			res.Warnings = append(res.Warnings, ParseWarning{
				Row:     fileRow,
				Message: fmt.Sprintf("row has %d columns, expected %d; extra columns ignored", len(line), len(columns)),
			})
			line = line[:len(columns)]
		}

		cells := make(map[string]model.Cell, len(columns))
		for j, col := range columns {
			raw := strings.TrimSpace(line[j])
			cells[col] = model.Cell{Kind: InferCellKind(raw), Raw: raw}
		}
		res.Rows = append(res.Rows, model.RawRow{Row: fileRow, Cells: cells})
	}

	if len(res.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return res, nil
}

// headerNames trims headers and disambiguates duplicates, which
// otherwise silently shadow each other in the per-row cell map.
func headerNames(line []string) []string {
	seen := make(map[string]int, len(line))
	out := make([]string, 0, len(line))
	for i, h := range line {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[strings.ToLower(name)]; n > 0 {
			name = fmt.Sprintf("%s (%d)", name, n+1)
		}
		seen[strings.ToLower(name)]++
		out = append(out, name)
	}
	return out
}

func countNonEmpty(line []string) int {
	n := 0
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func countDataRows(grid [][]string) int {
	n := 0
	for _, line := range grid {
		if countNonEmpty(line) > 0 {
			n++
		}
	}
	if n > 0 {
		n-- // header
	}
	return n
}

// sniffDelimiter picks the separator that splits the header line
// the most; semicolon and tab exports are routine from European
// locales and copy-pasted sheets.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, bestCount := ',', strings.Count(string(header), ",")
	for _, c := range []rune{';', '\t'} {
		if n := strings.Count(string(header), string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeToUTF8 detects the payload encoding and converts it.  BOMs
// win, valid UTF-8 passes through, anything else is read as
// Latin-1 so no byte sequence can fail the upload outright.
func decodeToUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		return dec.Bytes(data[len(bomUTF16LE):])
	case bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		return dec.Bytes(data[len(bomUTF16BE):])
	case utf8.Valid(data):
		return data, nil
	default:
		return charmap.ISO8859_1.NewDecoder().Bytes(data)
	}
}
