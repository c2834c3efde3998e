package domain

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster is the immutable category -> names table used to seed the staff
// table. Runtime membership changes go through the staff repository, never
// through a Roster.
type Roster struct {
	names map[StaffCategory][]string
}

type rosterFile struct {
	Categories map[string][]string `yaml:"categories"`
}

var defaultRoster = map[StaffCategory][]string{
	CategoryDiscordSupport:     {"Asher", "Ogea", "Jerome"},
	CategoryCouncilman:         {"Tony", "Hanson", "Smith", "Knight", "Zen", "Riggs"},
	CategoryChairman:           {"Amy", "Williams", "BMac"},
	CategoryCommissioner:       {"Fenix"},
	CategoryLieutenantGovernor: {"Gibbs"},
	CategoryCommunityManager:   {"Epik"},
	CategoryGovernor:           {"Jimmy"},
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() *Roster {
	r, _ := newRoster(defaultRoster)
	return r
}

// LoadRoster reads a YAML roster file. An empty path yields the default.
//
//	categories:
//	  Governor: [Jimmy]
//	  Councilman: [Tony, Hanson]
func LoadRoster(path string) (*Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes roster YAML. Unknown categories are rejected.
func ParseRoster(data []byte) (*Roster, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	names := make(map[StaffCategory][]string, len(file.Categories))
	for raw, members := range file.Categories {
		category, ok := ParseStaffCategory(raw)
		if !ok {
			return nil, fmt.Errorf("roster: unknown category %q", raw)
		}
		names[category] = members
	}
	return newRoster(names)
}

func newRoster(in map[StaffCategory][]string) (*Roster, error) {
	seen := map[string]StaffCategory{}
	names := make(map[StaffCategory][]string, len(in))
	for category, members := range in {
		list := make([]string, 0, len(members))
		for _, m := range members {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if prev, dup := seen[m]; dup {
				return nil, fmt.Errorf("roster: %q listed under both %q and %q", m, prev, category)
			}
			seen[m] = category
			list = append(list, m)
		}
		sort.Strings(list)
		names[category] = list
	}
	return &Roster{names: names}, nil
}

// namesIn returns a copy of the names listed under category.
func (r *Roster) namesIn(category StaffCategory) []string {
	return append([]string(nil), r.names[category]...)
}

// Members flattens the roster in category display order, names sorted.
func (r *Roster) Members() []StaffMember {
	var out []StaffMember
	for _, category := range StaffCategories {
		for _, name := range r.namesIn(category) {
			out = append(out, StaffMember{Name: name, Category: category})
		}
	}
	return out
}
