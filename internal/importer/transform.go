package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/summitops/guest-transport/internal/model"
)

// Spreadsheet serial dates count days from this epoch (the 1900
// leap-year bug is baked into the offset).  The window keeps plain
// numbers like seat counts or phone extensions from turning into
// dates: anything outside roughly 1954..2119 reads as a number.
var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	serialDateMin = 20000
	serialDateMax = 80000
)

func isSerialDate(raw string) bool {
	v := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f >= serialDateMin && f <= serialDateMax
}

// TransformDate normalizes a date in any of the accepted shapes to
// ISO YYYY-MM-DD.  Ambiguous numeric dates follow the session's
// date order, except that a component too large to be a month
// forces the other reading.  Unparseable input reports ok=false;
// the transformers never guess.
func TransformDate(raw string, order model.DateOrder) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}

	if m := isoDatePrefix.FindStringSubmatch(v); m != nil {
		t, err := time.Parse("2006-01-02", m[0])
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}

	if isSerialDate(v) {
		f, _ := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
		return serialDateEpoch.AddDate(0, 0, int(f)).Format("2006-01-02"), true
	}

	if m := numericDateRe.FindStringSubmatch(v); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		day, month := a, b
		if order == model.DateOrderMonthFirst {
			day, month = b, a
		}
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		return civilDate(year, month, day)
	}

	if m := monthDateRe.FindStringSubmatch(v); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthByName(m[2])
		if !ok {
			return "", false
		}
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return civilDate(year, month, day)
	}

	return "", false
}

// civilDate validates through a time.Date round trip; the stdlib
// normalizes Feb 31 to Mar 3 instead of failing, so the components
// are compared back.
func civilDate(year, month, day int) (string, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func monthByName(name string) (int, bool) {
	n := strings.ToLower(name)
	if len(n) > 3 {
		n = n[:3]
	}
	m, ok := monthNames[n]
	return m, ok
}

// TransformTime normalizes a wall-clock time to zero-padded HH:MM.
// Seconds are dropped.  A leading minus is tolerated by the cell
// inferencer but rejected here: a negative value is not a time of
// day.
func TransformTime(raw string) (string, bool) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil || m[1] == "-" {
		return "", false
	}
	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

var truthy = map[string]struct{}{"yes": {}, "y": {}, "true": {}, "1": {}}
var falsy = map[string]struct{}{"no": {}, "n": {}, "false": {}, "0": {}}

// TransformBoolean maps the accepted synonyms to "true"/"false".
// Unrecognized input reports ok=false rather than defaulting to
// false; a blank or garbled cell says nothing about the guest.
func TransformBoolean(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := truthy[v]; ok {
		return "true", true
	}
	if _, ok := falsy[v]; ok {
		return "false", true
	}
	return "", false
}

// TransformField dispatches on the canonical field's name: date
// fields through the date transformer, time fields through the time
// transformer, the needs*/extend*/is* flags through the boolean
// one, everything else trimmed but otherwise verbatim.  Email case
// is preserved; matching folds it, storage does not.
func TransformField(field model.CanonicalField, raw string, order model.DateOrder) (string, bool) {
	name := string(field)
	switch {
	case strings.Contains(name, "Date"):
		return TransformDate(raw, order)
	case strings.Contains(name, "Time"):
		return TransformTime(raw)
	case strings.HasPrefix(name, "needs"),
		strings.HasPrefix(name, "extend"),
		strings.HasPrefix(name, "is"):
		return TransformBoolean(raw)
	default:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", false
		}
		return v, true
	}
}

// FieldKind reports the semantic kind a canonical field carries,
// used to tag field changes with provenance.
func FieldKind(field model.CanonicalField) model.CellKind {
	name := string(field)
	switch {
	case field == model.FieldEmail:
		return model.KindEmail
	case strings.Contains(name, "Date"):
		return model.KindDate
	case strings.Contains(name, "Time"):
		return model.KindTime
	case strings.HasPrefix(name, "needs"),
		strings.HasPrefix(name, "extend"),
		strings.HasPrefix(name, "is"):
		return model.KindBoolean
	default:
		return model.KindText
	}
}

// ApplyMapping converts parsed rows to canonical rows using the
// session's column mapping.  Null-like and empty cells produce no
// entry at all, and values the transformers reject are likewise
// omitted: an absent field is never compared during diffing, so bad
// input can only ever cause a missed update, not a wrong one.
// Unmapped columns survive in the row's unknown bucket.
func ApplyMapping(rows []model.RawRow, mapping model.ColumnMapping, order model.DateOrder) []model.CanonicalRow {
	out := make([]model.CanonicalRow, 0, len(rows))
	for _, row := range rows {
		cr := model.CanonicalRow{Row: row.Row, Fields: make(map[model.CanonicalField]string)}
		for col, cell := range row.Cells {
			field, mapped := mapping[col]
			if !mapped {
				if cell.Kind != model.KindEmpty && cell.Kind != model.KindNull {
					if cr.Unknown == nil {
						cr.Unknown = make(map[string]string)
					}
					cr.Unknown[col] = strings.TrimSpace(cell.Raw)
				}
				continue
			}
			if cell.Kind == model.KindEmpty || cell.Kind == model.KindNull {
				continue
			}
			if v, ok := TransformField(field, cell.Raw, order); ok {
				cr.Fields[field] = v
			}
		}
		out = append(out, cr)
	}
	return out
}
