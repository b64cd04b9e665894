package importer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// fieldPatterns pairs each canonical field with the lowercased
// header spellings seen in the wild.  Order follows the canonical
// field declaration order and doubles as the auto-map tie-break.
var fieldPatterns = []struct {
	field    model.CanonicalField
	patterns []string
}{
	{model.FieldEmail, []string{"email", "e-mail", "email address", "mail"}},
	{model.FieldFirstName, []string{"first name", "given name", "forename", "first"}},
	{model.FieldLastName, []string{"last name", "surname", "family name", "last"}},
	{model.FieldOrganization, []string{"organization", "organisation", "company", "affiliation", "org"}},
	{model.FieldArrivalDate, []string{"arrival date", "date of arrival", "arr date", "arrival", "arrive"}},
	{model.FieldArrivalTime, []string{"arrival time", "arr time"}},
	{model.FieldArrivalFlightNumber, []string{"arrival flight", "arrival flight number", "inbound flight", "flight in", "arr flight"}},
	{model.FieldDepartureDate, []string{"departure date", "date of departure", "dep date", "departure", "depart"}},
	{model.FieldDepartureTime, []string{"departure time", "dep time"}},
	{model.FieldDepartureFlightNumber, []string{"departure flight", "departure flight number", "outbound flight", "flight out", "dep flight"}},
	{model.FieldHotel, []string{"hotel", "accommodation", "lodging"}},
	{model.FieldCheckInDate, []string{"check in", "check in date", "hotel check in"}},
	{model.FieldCheckOutDate, []string{"check out", "check out date", "hotel check out"}},
	{model.FieldNeedsArrivalTransfer, []string{"arrival transfer", "airport pickup", "pickup", "transfer from airport", "needs arrival transfer"}},
	{model.FieldNeedsDepartureTransfer, []string{"departure transfer", "airport dropoff", "dropoff", "drop off", "transfer to airport", "needs departure transfer"}},
	{model.FieldExtendStay, []string{"extend stay", "extended stay", "extension", "extra nights"}},
	{model.FieldIsVIP, []string{"vip", "vip status", "is vip"}},
	{model.FieldRegistrationStatus, []string{"registration status", "reg status", "registration", "status"}},
	{model.FieldNotes, []string{"notes", "comments", "remarks", "special requests"}},
}

// normalizeHeader lowercases and strips separators so "First Name",
// "first_name" and "FIRSTNAME" all compare equal.
var headerSeparators = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "(", "", ")", "", "/", "", "?", "", ":", "")

func normalizeHeader(h string) string {
	return headerSeparators.Replace(strings.ToLower(strings.TrimSpace(h)))
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

func headerTokens(h string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range tokenRe.FindAllString(strings.ToLower(h), -1) {
		out[t] = struct{}{}
	}
	return out
}

// matchScore rates one column header against one field's patterns.
// Exact matches beat normalized equality beat substring containment
// beat token overlap; containment is scaled by how much of the
// header the pattern covers, so "email" claims "Email Address" more
// strongly than it claims "Assistant Email Address".
func matchScore(header string, patterns []string) float64 {
	lower := strings.ToLower(strings.TrimSpace(header))
	norm := normalizeHeader(header)
	tokens := headerTokens(header)

	best := 0.0
	for _, p := range patterns {
		pNorm := normalizeHeader(p)
		var s float64
		switch {
		case lower == p:
			s = 1.0
		case norm == pNorm:
			s = 0.95
		case strings.Contains(norm, pNorm):
			s = 0.55 + 0.4*float64(len(pNorm))/float64(len(norm))
		default:
			s = 0.9 * tokenJaccard(tokens, headerTokens(p))
		}
		if s > best {
			best = s
		}
	}
	return best
}

func tokenJaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

const autoMapThreshold = 0.55

// AutoMap proposes a column mapping for a fresh upload.  Every
// (column, field) pair is scored, the pairs are sorted by
// descending score, and assignments are made greedily so the
// strongest claims win regardless of file column order.  Ties break
// on field declaration order, then column order, keeping the result
// deterministic.  Columns whose best claim falls under the
// threshold stay unmapped and ride along in the unknown bucket.
func AutoMap(columns []string) model.ColumnMapping {
	type candidate struct {
		column   string
		colIdx   int
		field    model.CanonicalField
		fieldIdx int
		score    float64
	}

	var pairs []candidate
	for ci, col := range columns {
		for fi, fp := range fieldPatterns {
			if s := matchScore(col, fp.patterns); s >= autoMapThreshold {
				pairs = append(pairs, candidate{col, ci, fp.field, fi, s})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].fieldIdx != pairs[j].fieldIdx {
			return pairs[i].fieldIdx < pairs[j].fieldIdx
		}
		return pairs[i].colIdx < pairs[j].colIdx
	})

	mapping := make(model.ColumnMapping)
	usedCol := make(map[string]struct{})
	usedField := make(map[model.CanonicalField]struct{})
	for _, p := range pairs {
		if _, ok := usedCol[p.column]; ok {
			continue
		}
		if _, ok := usedField[p.field]; ok {
			continue
		}
		mapping[p.column] = p.field
		usedCol[p.column] = struct{}{}
		usedField[p.field] = struct{}{}
	}
	return mapping
}

// KnownField reports whether the given name is a canonical field,
// guarding the manual-mapping endpoint against typos.
func KnownField(name string) (model.CanonicalField, bool) {
	for _, f := range model.AllCanonicalFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// MissingRequired lists the required canonical fields the mapping
// does not cover yet.  Diffing is refused until it returns empty.
func MissingRequired(mapping model.ColumnMapping) []model.CanonicalField {
	assigned := make(map[model.CanonicalField]struct{}, len(mapping))
	for _, f := range mapping {
		assigned[f] = struct{}{}
	}
	var missing []model.CanonicalField
	for _, f := range model.RequiredCanonicalFields {
		if _, ok := assigned[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
