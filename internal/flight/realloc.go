package flight

import (
	"fmt"
	"sort"

	"github.com/summitops/guest-transport/internal/model"
)

// Tier grades how well a candidate schedule's pickup time suits a
// flight.
type Tier string

const (
	TierGood       Tier = "good"
	TierAcceptable Tier = "acceptable"
	TierPoor       Tier = "poor"
)

// Windows sets the tier boundaries in minutes.  Poor candidates are
// still listed; a dispatcher with no better option may take one
// knowingly.
type Windows struct {
	Good       int
	Acceptable int
}

// DefaultWindows matches how long guests tolerate waiting at an
// airport: half an hour is fine, an hour is workable.
var DefaultWindows = Windows{Good: 30, Acceptable: 60}

func (w Windows) tier(delta int) Tier {
	switch {
	case delta <= w.Good:
		return TierGood
	case delta <= w.Acceptable:
		return TierAcceptable
	default:
		return TierPoor
	}
}

// RankedCandidate is one schedule a guest could move to, scored by
// time proximity to the guest's flight.
type RankedCandidate struct {
	Schedule    model.ScheduleOccupancy `json:"schedule"`
	DeltaMin    int                     `json:"delta_min"`
	Tier        Tier                    `json:"tier"`
	Recommended bool                    `json:"recommended"`
}

// RankCandidates orders possible reassignment targets for a flight
// time.  The caller supplies schedules already narrowed to the
// right direction and service date; cancelled and full schedules
// are dropped here, the rest are scored by absolute minutes between
// the flight time and the pickup time and sorted closest first.
// Exactly the closest candidate inside the acceptable window is
// flagged recommended; when even the closest is poor, nothing is.
func RankCandidates(flightTime string, schedules []model.ScheduleOccupancy, w Windows) ([]RankedCandidate, error) {
	target, ok := ClockMinutes(flightTime)
	if !ok {
		return nil, fmt.Errorf("invalid flight time %q", flightTime)
	}
	if w.Good <= 0 {
		w = DefaultWindows
	}

	candidates := make([]RankedCandidate, 0, len(schedules))
	for _, s := range schedules {
		if s.Schedule.Status != model.ScheduleStatusActive {
			continue
		}
		if s.Assigned >= s.Capacity {
			continue
		}
		pickup, ok := ClockMinutes(s.Schedule.PickupTime)
		if !ok {
			continue
		}
		delta := target - pickup
		if delta < 0 {
			delta = -delta
		}
		candidates = append(candidates, RankedCandidate{
			Schedule: s,
			DeltaMin: delta,
			Tier:     w.tier(delta),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DeltaMin != candidates[j].DeltaMin {
			return candidates[i].DeltaMin < candidates[j].DeltaMin
		}
		return candidates[i].Schedule.Schedule.ID < candidates[j].Schedule.Schedule.ID
	})

	if len(candidates) > 0 && candidates[0].Tier != TierPoor {
		candidates[0].Recommended = true
	}
	return candidates, nil
}
