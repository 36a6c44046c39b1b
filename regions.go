package main

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// This file loads the static administrative-region lookup tables that drive
// the regional emergency-board path: long-form name <-> short-form name, and
// name -> proprietary numeric board code. The tables are immutable
// configuration embedded at build time and validated for completeness at
// startup, so a missing mapping is a deploy failure rather than a
// per-request surprise.

//go:embed regions.yaml
var regionsYAML []byte

type provinceEntry struct {
	Name      string         `yaml:"name"`
	Short     string         `yaml:"short"`
	Code      int            `yaml:"code"`
	Districts map[string]int `yaml:"districts"`
}

type regionsFile struct {
	Provinces []provinceEntry `yaml:"provinces"`
}

// RegionTable resolves administrative-region names to the numeric codes the
// regional board expects. Lookups accept both long-form ("서울특별시") and
// short-form ("서울") province names.
type RegionTable struct {
	byName map[string]*provinceEntry
	order  []string
}

// LoadRegionTable parses the embedded region tables and validates them.
func LoadRegionTable() (*RegionTable, error) {
	var file regionsFile
	if err := yaml.Unmarshal(regionsYAML, &file); err != nil {
		return nil, fmt.Errorf("could not parse region tables: %w", err)
	}
	if len(file.Provinces) == 0 {
		return nil, fmt.Errorf("region tables contain no provinces")
	}

	table := &RegionTable{byName: make(map[string]*provinceEntry)}
	seenCodes := make(map[int]string)
	for i := range file.Provinces {
		p := &file.Provinces[i]
		if p.Name == "" || p.Short == "" {
			return nil, fmt.Errorf("province entry %d is missing a name or short name", i)
		}
		if p.Code <= 0 {
			return nil, fmt.Errorf("province %q has no board code", p.Name)
		}
		if prev, dup := seenCodes[p.Code]; dup {
			return nil, fmt.Errorf("provinces %q and %q share board code %d", prev, p.Name, p.Code)
		}
		seenCodes[p.Code] = p.Name

		for district, code := range p.Districts {
			if code <= 0 {
				return nil, fmt.Errorf("district %q of %q has no board code", district, p.Name)
			}
		}

		table.byName[p.Name] = p
		table.byName[p.Short] = p
		table.order = append(table.order, p.Name)
	}

	return table, nil
}

// Provinces returns the long-form province names in table order.
func (t *RegionTable) Provinces() []string {
	return t.order
}

// LongName canonicalizes a province name to its long form. Unknown names are
// returned unchanged.
func (t *RegionTable) LongName(region1 string) string {
	if p, ok := t.byName[normalizeRegionName(region1)]; ok {
		return p.Name
	}
	return region1
}

// RegionCode resolves region1 (and optionally region2) to the numeric code
// the regional board expects. A missing mapping yields ErrUnsupportedRegion:
// callers must not guess a code.
func (t *RegionTable) RegionCode(region1, region2 string) (int, error) {
	p, ok := t.byName[normalizeRegionName(region1)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedRegion, region1)
	}
	if region2 == "" {
		return p.Code, nil
	}
	code, ok := p.Districts[normalizeRegionName(region2)]
	if !ok {
		return 0, fmt.Errorf("%w: %q %q", ErrUnsupportedRegion, region1, region2)
	}
	return code, nil
}

// ProvinceForAddress extracts the province whose long or short name prefixes
// the given address string, used when a reverse-geocoded address has to be
// mapped back onto the regional path.
func (t *RegionTable) ProvinceForAddress(address string) (string, bool) {
	trimmed := strings.TrimSpace(address)
	for _, name := range t.order {
		p := t.byName[name]
		if strings.HasPrefix(trimmed, p.Name) || strings.HasPrefix(trimmed, p.Short) {
			return p.Name, true
		}
	}
	return "", false
}

func normalizeRegionName(name string) string {
	return strings.Join(strings.Fields(name), "")
}
