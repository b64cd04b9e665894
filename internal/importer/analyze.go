package importer

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/summitops/guest-transport/internal/model"
)

const (
	alertItemLimit   = 5
	addedVolumeLimit = 50
	removedFloor     = 10
)

// Fields whose change is worth calling out even when the diff is
// otherwise routine: identity and everything transport planning
// hangs off.
var criticalFields = map[model.CanonicalField]struct{}{
	model.FieldEmail:                 {},
	model.FieldArrivalDate:           {},
	model.FieldDepartureDate:         {},
	model.FieldArrivalFlightNumber:   {},
	model.FieldDepartureFlightNumber: {},
}

// AnalyzeDiff runs the advisory heuristics over a computed diff.
// Alerts point a reviewer at the rows worth a second look; they
// carry no veto, and applying a diff with open alerts is allowed.
// The guest list is the same snapshot the diff was computed from,
// needed to evaluate modified guests with their changes applied.
func AnalyzeDiff(diff *model.ImportDiff, guests []model.Guest) []model.Alert {
	byID := make(map[uint64]*model.Guest, len(guests))
	for i := range guests {
		byID[guests[i].ID] = &guests[i]
	}

	var alerts []model.Alert
	add := func(t model.Severity, title, desc string, items []string) {
		a := model.Alert{Type: t, Title: title, Description: desc, Items: items}
		if len(items) > alertItemLimit {
			a.Items = items[:alertItemLimit]
			a.Overflow = len(items) - alertItemLimit
		}
		alerts = append(alerts, a)
	}

	if n := len(diff.Added); n > addedVolumeLimit {
		add(model.SeverityWarning, "Unusually large import",
			fmt.Sprintf("%d new guests in one file; check that the right roster was uploaded", n), nil)
	}

	if r, a := len(diff.Removed), len(diff.Added); r > removedFloor && r > a {
		add(model.SeverityWarning, "More removals than additions",
			fmt.Sprintf("%d existing guests are absent from the file against %d additions; the export may be truncated or filtered", r, a), nil)
	}

	if items := arrivalAfterDeparture(diff, byID); len(items) > 0 {
		add(model.SeverityError, "Arrival after departure",
			"these guests would arrive after they leave", items)
	}

	if items := missingFlightInfo(diff.Added); len(items) > 0 {
		add(model.SeverityWarning, "Transfer requested without flight details",
			"a transfer cannot be scheduled until the flight number is known", items)
	}

	if items := invalidEmails(diff.Added); len(items) > 0 {
		add(model.SeverityError, "Invalid email addresses",
			"these rows carry an email that cannot identify a guest", items)
	}

	if items := duplicateNames(diff); len(items) > 0 {
		add(model.SeverityInfo, "Possible duplicate names",
			"same full name on several guests; verify these are different people", items)
	}

	if items := criticalChanges(diff.Modified); len(items) > 0 {
		add(model.SeverityInfo, "Critical fields changing",
			"identity or travel fields change for these guests", items)
	}

	if items := sameDayTrips(diff.Added); len(items) > 0 {
		add(model.SeverityInfo, "Same-day arrival and departure",
			"these guests arrive and leave on the same date", items)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Type) < severityRank(alerts[j].Type)
	})
	return alerts
}

func arrivalAfterDeparture(diff *model.ImportDiff, byID map[uint64]*model.Guest) []string {
	var items []string
	for _, row := range diff.Added {
		arr, dep := row.Fields[model.FieldArrivalDate], row.Fields[model.FieldDepartureDate]
		if arr != "" && dep != "" && arr > dep {
			items = append(items, fmt.Sprintf("row %d: %s (arrival %s, departure %s)", row.Row, rowName(row), arr, dep))
		}
	}
	for _, mg := range diff.Modified {
		g, ok := byID[mg.GuestID]
		if !ok {
			continue
		}
		arr := effectiveValue(g, mg, model.FieldArrivalDate)
		dep := effectiveValue(g, mg, model.FieldDepartureDate)
		if arr != "" && dep != "" && arr > dep {
			items = append(items, fmt.Sprintf("%s (arrival %s, departure %s)", mg.Name, arr, dep))
		}
	}
	return items
}

// effectiveValue is the guest's field as it would read after the
// diff is applied.
func effectiveValue(g *model.Guest, mg model.ModifiedGuest, f model.CanonicalField) string {
	for _, c := range mg.Changes {
		if c.Field == f {
			return c.NewValue
		}
	}
	return g.Field(f)
}

func missingFlightInfo(added []model.CanonicalRow) []string {
	var items []string
	for _, row := range added {
		if row.Fields[model.FieldNeedsArrivalTransfer] == "true" && row.Fields[model.FieldArrivalFlightNumber] == "" {
			items = append(items, fmt.Sprintf("row %d: %s needs an arrival transfer, no flight number", row.Row, rowName(row)))
		}
		if row.Fields[model.FieldNeedsDepartureTransfer] == "true" && row.Fields[model.FieldDepartureFlightNumber] == "" {
			items = append(items, fmt.Sprintf("row %d: %s needs a departure transfer, no flight number", row.Row, rowName(row)))
		}
	}
	return items
}

func invalidEmails(added []model.CanonicalRow) []string {
	var items []string
	for _, row := range added {
		if email := row.Fields[model.FieldEmail]; email != "" && !emailRe.MatchString(email) {
			items = append(items, fmt.Sprintf("row %d: %q", row.Row, email))
		}
	}
	return items
}

// duplicateNames folds names case- and diacritic-insensitively, so
// "José García" and "Jose Garcia" collide, across both the incoming
// additions and the guests the file leaves untouched.
func duplicateNames(diff *model.ImportDiff) []string {
	count := make(map[string]int)
	display := make(map[string]string)
	note := func(name string) {
		folded := foldName(name)
		if folded == "" {
			return
		}
		count[folded]++
		if _, ok := display[folded]; !ok {
			display[folded] = name
		}
	}
	for _, row := range diff.Added {
		note(rowName(row))
	}
	for _, ref := range diff.Unchanged {
		note(ref.Name)
	}

	var folds []string
	for f, n := range count {
		if n > 1 {
			folds = append(folds, f)
		}
	}
	sort.Strings(folds)
	items := make([]string, 0, len(folds))
	for _, f := range folds {
		items = append(items, fmt.Sprintf("%s appears %d times", display[f], count[f]))
	}
	return items
}

func criticalChanges(modified []model.ModifiedGuest) []string {
	var items []string
	for _, mg := range modified {
		var fields []string
		for _, c := range mg.Changes {
			if _, ok := criticalFields[c.Field]; ok {
				fields = append(fields, string(c.Field))
			}
		}
		if len(fields) > 0 {
			items = append(items, fmt.Sprintf("%s: %s", mg.Name, strings.Join(fields, ", ")))
		}
	}
	return items
}

func sameDayTrips(added []model.CanonicalRow) []string {
	var items []string
	for _, row := range added {
		arr := row.Fields[model.FieldArrivalDate]
		if arr != "" && arr == row.Fields[model.FieldDepartureDate] {
			items = append(items, fmt.Sprintf("row %d: %s (%s)", row.Row, rowName(row), arr))
		}
	}
	return items
}

func rowName(row model.CanonicalRow) string {
	name := strings.TrimSpace(row.Fields[model.FieldFirstName] + " " + row.Fields[model.FieldLastName])
	if name == "" {
		return row.Fields[model.FieldEmail]
	}
	return name
}

// foldName lowercases, strips diacritics through NFD decomposition
// and collapses runs of whitespace.
func foldName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	prevSpace := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
