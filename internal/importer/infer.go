package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// Cell patterns, checked in a fixed order by InferCellKind.
var (
	emailRe       = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	isoDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})$`)
	monthDateRe   = regexp.MustCompile(`^(\d{1,2})[ /\-]([A-Za-z]{3,9})\.?[ /\-](\d{2,4})$`)
	timeRe        = regexp.MustCompile(`^(-?)(\d{1,2}):(\d{2})(?::\d{2})?$`)
	integerRe     = regexp.MustCompile(`^-?\d+$`)
	decimalRe     = regexp.MustCompile(`^-?\d+[.,]\d+$`)
)

var booleanSynonyms = map[string]struct{}{
	"yes": {}, "no": {}, "true": {}, "false": {}, "y": {}, "n": {},
}

var nullSynonyms = map[string]struct{}{
	"null": {}, "n/a": {}, "na": {}, "none": {}, "-": {}, "--": {},
}

// InferCellKind classifies one raw cell value.  The checks run in a
// fixed order so ambiguous values always resolve the same way: "1"
// is a number, never a boolean, and "2026-09-14" is a date before
// it is text.
func InferCellKind(raw string) model.CellKind {
	v := strings.TrimSpace(raw)
	if v == "" {
		return model.KindEmpty
	}
	lower := strings.ToLower(v)
	switch {
	case emailRe.MatchString(v):
		return model.KindEmail
	case isoDatePrefix.MatchString(v), numericDateRe.MatchString(v), monthDateRe.MatchString(v):
		return model.KindDate
	case timeRe.MatchString(v):
		return model.KindTime
	case integerRe.MatchString(v):
		return model.KindNumber
	case decimalRe.MatchString(v):
		return model.KindDecimal
	default:
		if _, ok := booleanSynonyms[lower]; ok {
			return model.KindBoolean
		}
		if _, ok := nullSynonyms[lower]; ok {
			return model.KindNull
		}
		return model.KindText
	}
}

// ExpectedKindForHeader guesses what a column should contain from
// its header alone.  An empty return means unconstrained.  Flight
// columns are deliberately unconstrained: "BA117" reads as text and
// would drown the report in false alarms under a date expectation.
func ExpectedKindForHeader(header string) model.CellKind {
	h := strings.ToLower(strings.TrimSpace(header))
	norm := normalizeHeader(h)
	switch {
	case strings.Contains(h, "email") || strings.Contains(h, "e-mail"):
		return model.KindEmail
	case strings.Contains(h, "flight"):
		return ""
	case strings.Contains(h, "time") && !strings.Contains(h, "date"):
		return model.KindTime
	case strings.Contains(h, "date"),
		strings.Contains(h, "arrival"),
		strings.Contains(h, "departure"),
		strings.Contains(norm, "checkin"),
		strings.Contains(norm, "checkout"):
		return model.KindDate
	case strings.Contains(h, "name") || strings.Contains(h, "first") || strings.Contains(h, "last"):
		return model.KindText
	case headerWantsNumber(h, norm):
		return model.KindNumber
	}
	return ""
}

// headerWantsNumber matches counter-style headers.  "id" only
// counts as a whole word or a suffix behind a separator; substrings
// like "paid" or "valid" must not trip it.
func headerWantsNumber(h, norm string) bool {
	if strings.Contains(h, "count") || strings.Contains(h, "number") || strings.Contains(h, "qty") {
		return true
	}
	if norm == "id" {
		return true
	}
	return strings.HasSuffix(norm, "id") && strings.ContainsAny(h, " _-")
}

const maxCellIssues = 50

// ValidateCells compares every cell's detected kind against its
// column's expected kind and reports the mismatches worth a
// reviewer's attention.  Empty and null-like cells are never
// flagged, and plain text is allowed to hold anything.  The report
// is capped; past fifty findings the file has a systemic problem
// that individual rows no longer illuminate.
func ValidateCells(columns []string, rows []model.RawRow) []model.CellIssue {
	expected := make(map[string]model.CellKind, len(columns))
	for _, col := range columns {
		expected[col] = ExpectedKindForHeader(col)
	}

	kindsSeen := make(map[string]map[model.CellKind]struct{}, len(columns))
	var issues []model.CellIssue

	for _, row := range rows {
		for _, col := range columns {
			cell := row.Cells[col]
			if cell.Kind == model.KindEmpty || cell.Kind == model.KindNull {
				continue
			}
			if kindsSeen[col] == nil {
				kindsSeen[col] = make(map[model.CellKind]struct{})
			}
			kindsSeen[col][cell.Kind] = struct{}{}

			want := expected[col]
			if want == "" || want == cell.Kind || want == model.KindText {
				continue
			}
			if want == model.KindNumber && cell.Kind == model.KindDecimal {
				continue
			}
			if want == model.KindDate && cell.Kind == model.KindNumber && isSerialDate(cell.Raw) {
				continue
			}
			issues = append(issues, model.CellIssue{
				Row:      row.Row,
				Column:   col,
				Severity: mismatchSeverity(want),
				Detected: cell.Kind,
				Expected: want,
				Message:  fmt.Sprintf("value %q reads as %s, column expects %s", cell.Raw, cell.Kind, want),
			})
		}
	}

	for _, col := range columns {
		if len(kindsSeen[col]) > 2 {
			issues = append(issues, model.CellIssue{
				Column:   col,
				Severity: model.SeverityInfo,
				Message:  fmt.Sprintf("column mixes %d value types", len(kindsSeen[col])),
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return severityRank(issues[i].Severity) < severityRank(issues[j].Severity)
		}
		if issues[i].Row != issues[j].Row {
			return issues[i].Row < issues[j].Row
		}
		return issues[i].Column < issues[j].Column
	})
	if len(issues) > maxCellIssues {
		issues = issues[:maxCellIssues]
	}
	return issues
}

// mismatchSeverity grades a kind mismatch.  Email and date columns
// feed identity matching and transport planning, so violations
// there are errors; everything else is advisory.
func mismatchSeverity(expected model.CellKind) model.Severity {
	switch expected {
	case model.KindEmail, model.KindDate:
		return model.SeverityError
	case model.KindTime, model.KindNumber:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityError:
		return 0
	case model.SeverityWarning:
		return 1
	default:
		return 2
	}
}
