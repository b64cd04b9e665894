package importer

import (
	"fmt"
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// ComputeDiff reconciles canonical import rows against the current
// guest list and returns the merge plan for review.  It is a pure
// function over its inputs: recomputing it is free and applying it
// is a separate, explicit step.
//
// Every row lands in exactly one bucket.  Rows failing validation
// go to Errors and take no further part; the rest match existing
// guests by email, case-insensitively, and become Modified or
// Unchanged, or become Added when no guest matches.  Guests no row
// accounted for are Removed candidates, which only an apply with
// the remove flag acts on.
func ComputeDiff(rows []model.CanonicalRow, guests []model.Guest) *model.ImportDiff {
	diff := &model.ImportDiff{
		Added:     []model.CanonicalRow{},
		Modified:  []model.ModifiedGuest{},
		Removed:   []model.GuestRef{},
		Unchanged: []model.GuestRef{},
		Errors:    []model.RowError{},
	}

	seen := make(map[string]int, len(rows))
	valid := make([]model.CanonicalRow, 0, len(rows))
	for _, row := range rows {
		if err, ok := validateRow(row, seen); !ok {
			diff.Errors = append(diff.Errors, err)
			continue
		}
		seen[strings.ToLower(row.Fields[model.FieldEmail])] = row.Row
		valid = append(valid, row)
	}

	byEmail := make(map[string]*model.Guest, len(guests))
	for i := range guests {
		if guests[i].DeletedAt != nil {
			continue
		}
		byEmail[strings.ToLower(guests[i].Email)] = &guests[i]
	}

	matched := make(map[uint64]struct{}, len(valid))
	for _, row := range valid {
		g, ok := byEmail[strings.ToLower(row.Fields[model.FieldEmail])]
		if !ok {
			diff.Added = append(diff.Added, row)
			continue
		}
		matched[g.ID] = struct{}{}
		changes := CompareFields(g, row)
		if len(changes) == 0 {
			diff.Unchanged = append(diff.Unchanged, guestRef(g))
			continue
		}
		diff.Modified = append(diff.Modified, model.ModifiedGuest{
			GuestID: g.ID,
			Email:   g.Email,
			Name:    g.FullName(),
			Row:     row.Row,
			Version: g.Version,
			Changes: changes,
		})
	}

	for i := range guests {
		if guests[i].DeletedAt != nil {
			continue
		}
		if _, ok := matched[guests[i].ID]; !ok {
			diff.Removed = append(diff.Removed, guestRef(&guests[i]))
		}
	}

	return diff
}

// validateRow rejects rows that must never reach the store: missing
// required fields, malformed email, or an email already claimed by
// an earlier row of the same file.
func validateRow(row model.CanonicalRow, seen map[string]int) (model.RowError, bool) {
	email := row.Fields[model.FieldEmail]
	if email == "" {
		return model.RowError{Row: row.Row, Field: model.FieldEmail, Message: "required field email is missing"}, false
	}
	if !emailRe.MatchString(email) {
		return model.RowError{Row: row.Row, Field: model.FieldEmail, Message: fmt.Sprintf("%q is not a valid email address", email)}, false
	}
	for _, f := range []model.CanonicalField{model.FieldFirstName, model.FieldLastName} {
		if row.Fields[f] == "" {
			return model.RowError{Row: row.Row, Field: f, Message: fmt.Sprintf("required field %s is missing", f)}, false
		}
	}
	if first, dup := seen[strings.ToLower(email)]; dup {
		return model.RowError{Row: row.Row, Field: model.FieldEmail, Message: fmt.Sprintf("duplicate email %q, first used on row %d", email, first)}, false
	}
	return model.RowError{}, true
}

// CompareFields lists the changes an import row would make to one
// guest.  Only fields the row actually carries are compared, so a
// narrow export never appears to blank the columns it left out.
// Email compares case-insensitively; a case-only change is not a
// change.
func CompareFields(g *model.Guest, row model.CanonicalRow) []model.FieldChange {
	var changes []model.FieldChange
	for _, f := range model.AllCanonicalFields {
		newV, ok := row.Fields[f]
		if !ok {
			continue
		}
		oldV := g.Field(f)
		if f == model.FieldEmail {
			if strings.EqualFold(oldV, newV) {
				continue
			}
		} else if oldV == newV {
			continue
		}
		changes = append(changes, model.FieldChange{
			Field:    f,
			OldValue: oldV,
			NewValue: newV,
			Kind:     FieldKind(f),
		})
	}
	return changes
}

func guestRef(g *model.Guest) model.GuestRef {
	return model.GuestRef{GuestID: g.ID, Email: g.Email, Name: g.FullName(), Version: g.Version}
}
