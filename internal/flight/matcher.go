package flight

import (
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// ReferenceData supplies the planning tables the matching engine
// reads: codeshare groups, manual time corrections and the
// pre-planned transport groups.  It is injected rather than read
// from globals so tests and tooling can swap the backing store.
type ReferenceData interface {
	// CodeshareGroup returns every flight number sold for the same
	// plane as the given one, normalized form, not including the
	// flight itself.  Unknown flights return nil.
	CodeshareGroup(flight string) []string
	// TimeCorrection returns the manual override for a flight on a
	// date, if one was entered.
	TimeCorrection(flight, date string) (model.TimeCorrection, bool)
	// GroupsOn returns the transport groups planned for a date.
	GroupsOn(date string) []model.TransportGroup
}

// Matcher answers flight identity and transport lookup questions on
// top of a ReferenceData source.
type Matcher struct {
	ref ReferenceData
}

// NewMatcher constructs a Matcher.  A nil source is a programming
// error and panics immediately rather than at first use.
func NewMatcher(ref ReferenceData) *Matcher {
	if ref == nil {
		panic("flight: matcher requires a non-nil reference data source")
	}
	return &Matcher{ref: ref}
}

// NormalizeFlight upper-cases a flight number and strips interior
// spaces, so "ba 117" and "BA117" compare equal.
func NormalizeFlight(flight string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(flight)), " ", "")
}

// AreCodeshares reports whether two flight numbers refer to the
// same physical plane.  A flight is always a codeshare of itself.
// Both directions of the table are consulted, so the relation stays
// symmetric even when the table only lists one side.
func (m *Matcher) AreCodeshares(a, b string) bool {
	na, nb := NormalizeFlight(a), NormalizeFlight(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return m.inGroup(na, nb) || m.inGroup(nb, na)
}

func (m *Matcher) inGroup(flight, other string) bool {
	for _, f := range m.ref.CodeshareGroup(flight) {
		if NormalizeFlight(f) == other {
			return true
		}
	}
	return false
}

// EquivalentFlights returns the flight plus every codeshare of it,
// normalized and deduplicated, the set to search guest records and
// group plans with.
func (m *Matcher) EquivalentFlights(flight string) []string {
	nf := NormalizeFlight(flight)
	if nf == "" {
		return nil
	}
	out := []string{nf}
	seen := map[string]struct{}{nf: {}}
	for _, f := range m.ref.CodeshareGroup(nf) {
		n := NormalizeFlight(f)
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// EffectiveTime resolves the time to plan around for a flight on a
// date.  A manual correction beats the scheduled time; the returned
// note is empty when the scheduled time stands.
func (m *Matcher) EffectiveTime(flight, date, scheduled string) (string, string) {
	corr, ok := m.ref.TimeCorrection(NormalizeFlight(flight), date)
	if !ok {
		return scheduled, ""
	}
	note := corr.Note
	if note == "" {
		note = "manually corrected time"
	}
	return corr.Time, note
}

// FindTransportGroup locates the pre-planned group that covers a
// flight on a date, matching through codeshares: a guest booked on
// the marketing flight number still belongs with the operating
// flight's group.  Returns nil when no group covers the flight.
func (m *Matcher) FindTransportGroup(flight, date string) *model.TransportGroup {
	for _, group := range m.ref.GroupsOn(date) {
		for _, gf := range group.Flights {
			if m.AreCodeshares(gf, flight) {
				g := group
				return &g
			}
		}
	}
	return nil
}
