package refdata

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/model"
)

// tables is the on-disk shape of the transport plan.  Codeshare
// groups are written once per plane; the provider expands them into
// a symmetric lookup.
type tables struct {
	GoodMinutes       int                    `koanf:"good_minutes"`
	AcceptableMinutes int                    `koanf:"acceptable_minutes"`
	Codeshares        [][]string             `koanf:"codeshares"`
	Corrections       []model.TimeCorrection `koanf:"corrections"`
	Groups            []model.TransportGroup `koanf:"groups"`
}

// Provider serves the flight-matching reference tables.  It
// implements flight.ReferenceData and is immutable once built;
// plan updates mean a restart, which ops prefers over a plan that
// shifts under a dispatcher mid-review.
type Provider struct {
	codeshares  map[string][]string
	corrections map[string]model.TimeCorrection
	groups      map[string][]model.TransportGroup
	windows     flight.Windows
}

// Load reads the transport plan by layering the YAML file under
// PLAN_-prefixed environment overrides, the same precedence as the
// rest of the service configuration: file first, env wins.
func Load(path string) (*Provider, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load transport plan %s: %w", path, err)
	}

	envProvider := env.Provider("PLAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "plan_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	t := tables{GoodMinutes: flight.DefaultWindows.Good, AcceptableMinutes: flight.DefaultWindows.Acceptable}
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse transport plan: %w", err)
	}
	return build(t)
}

// NewStatic builds a provider from in-memory tables, for tests and
// for running without a plan file.
func NewStatic(codeshares [][]string, corrections []model.TimeCorrection, groups []model.TransportGroup) *Provider {
	p, err := build(tables{
		GoodMinutes:       flight.DefaultWindows.Good,
		AcceptableMinutes: flight.DefaultWindows.Acceptable,
		Codeshares:        codeshares,
		Corrections:       corrections,
		Groups:            groups,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func build(t tables) (*Provider, error) {
	if t.GoodMinutes <= 0 || t.AcceptableMinutes < t.GoodMinutes {
		return nil, fmt.Errorf("reallocation windows out of order: good=%d acceptable=%d", t.GoodMinutes, t.AcceptableMinutes)
	}

	p := &Provider{
		codeshares:  make(map[string][]string),
		corrections: make(map[string]model.TimeCorrection, len(t.Corrections)),
		groups:      make(map[string][]model.TransportGroup),
		windows:     flight.Windows{Good: t.GoodMinutes, Acceptable: t.AcceptableMinutes},
	}

	for gi, group := range t.Codeshares {
		members := make([]string, 0, len(group))
		for _, f := range group {
			if n := flight.NormalizeFlight(f); n != "" {
				members = append(members, n)
			}
		}
		if len(members) < 2 {
			return nil, fmt.Errorf("codeshare group %d needs at least two flights", gi+1)
		}
		for _, f := range members {
			for _, other := range members {
				if other != f {
					p.codeshares[f] = append(p.codeshares[f], other)
				}
			}
		}
	}

	for i, c := range t.Corrections {
		if _, ok := flight.ClockMinutes(c.Time); !ok {
			return nil, fmt.Errorf("correction %d (%s on %s): invalid time %q", i+1, c.Flight, c.Date, c.Time)
		}
		key := correctionKey(c.Flight, c.Date)
		p.corrections[key] = c
	}

	for i, g := range t.Groups {
		if g.Name == "" || g.Date == "" || len(g.Flights) == 0 {
			return nil, fmt.Errorf("transport group %d: name, date and flights are required", i+1)
		}
		if g.Direction != model.DirectionArrival && g.Direction != model.DirectionDeparture {
			return nil, fmt.Errorf("transport group %q: unknown direction %q", g.Name, g.Direction)
		}
		p.groups[g.Date] = append(p.groups[g.Date], g)
	}

	return p, nil
}

func correctionKey(flightNo, date string) string {
	return flight.NormalizeFlight(flightNo) + "|" + date
}

// CodeshareGroup implements flight.ReferenceData.
func (p *Provider) CodeshareGroup(flightNo string) []string {
	return p.codeshares[flight.NormalizeFlight(flightNo)]
}

// TimeCorrection implements flight.ReferenceData.
func (p *Provider) TimeCorrection(flightNo, date string) (model.TimeCorrection, bool) {
	c, ok := p.corrections[correctionKey(flightNo, date)]
	return c, ok
}

// GroupsOn implements flight.ReferenceData.
func (p *Provider) GroupsOn(date string) []model.TransportGroup {
	return p.groups[date]
}

// Windows returns the reallocation tier boundaries from the plan.
func (p *Provider) Windows() flight.Windows {
	return p.windows
}
