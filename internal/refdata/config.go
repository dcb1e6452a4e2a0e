// Package refdata loads the static division and branch reference
// configuration (config_colores.json) used to classify purchase rows
// and style every report view.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
)

// UnmappedPolicy decides what happens to account codes that are absent
// from the division mapping.
type UnmappedPolicy string

const (
	// PolicyDrop excludes unmapped codes from division-scoped views.
	PolicyDrop UnmappedPolicy = "drop"
	// PolicyBucket assigns unmapped codes to the Unclassified division.
	PolicyBucket UnmappedPolicy = "bucket"
)

// UnclassifiedDivision is the bucket name used under PolicyBucket.
const UnclassifiedDivision = "Sin clasificar"

// Style carries the presentation attributes of a division or branch.
type Style struct {
	Color  string `json:"color" validate:"required,hexcolor"`
	Abbrev string `json:"abreviatura" validate:"required"`
}

type divisionEntry struct {
	Style
	Codes []string `json:"codigos" validate:"required,min=1"`
}

type configFile struct {
	Divisions map[string]divisionEntry `json:"divisiones" validate:"required,min=1"`
	Branches  map[string]Style         `json:"sucursales" validate:"required,min=1"`
}

// Config exposes the loaded reference lookups. It is immutable after Load.
type Config struct {
	codeToDivision map[string]string
	divisionStyles map[string]Style
	branchStyles   map[string]Style
	divisions      []string
	branches       []string
	policy         UnmappedPolicy
}

// Load reads and validates the reference configuration. A missing or
// malformed file is a startup error; callers are expected to exit.
func Load(path string, policy UnmappedPolicy) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: read %s: %w", path, err)
	}
	var file configFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("refdata: parse %s: %w", path, err)
	}

	validate := validator.New()
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("refdata: invalid config: %w", err)
	}
	for name, entry := range file.Divisions {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("refdata: division %q: %w", name, err)
		}
	}
	for name, style := range file.Branches {
		if err := validate.Struct(style); err != nil {
			return nil, fmt.Errorf("refdata: sucursal %q: %w", name, err)
		}
	}
	if policy == "" {
		policy = PolicyDrop
	}
	if policy != PolicyDrop && policy != PolicyBucket {
		return nil, fmt.Errorf("refdata: unknown unmapped-code policy %q", policy)
	}

	cfg := &Config{
		codeToDivision: make(map[string]string),
		divisionStyles: make(map[string]Style, len(file.Divisions)),
		branchStyles:   make(map[string]Style, len(file.Branches)),
		policy:         policy,
	}
	for name, entry := range file.Divisions {
		cfg.divisionStyles[name] = entry.Style
		cfg.divisions = append(cfg.divisions, name)
		for _, code := range entry.Codes {
			if owner, dup := cfg.codeToDivision[code]; dup && owner != name {
				return nil, fmt.Errorf("refdata: code %q mapped to both %q and %q", code, owner, name)
			}
			cfg.codeToDivision[code] = name
		}
	}
	for name, style := range file.Branches {
		cfg.branchStyles[name] = style
		cfg.branches = append(cfg.branches, name)
	}
	sort.Strings(cfg.divisions)
	sort.Strings(cfg.branches)
	return cfg, nil
}

// DivisionOf returns the division a code belongs to, ignoring the
// unmapped-code policy.
func (c *Config) DivisionOf(code string) (string, bool) {
	name, ok := c.codeToDivision[code]
	return name, ok
}

// Resolve applies the configured unmapped-code policy. The second
// return reports whether the record participates in division views.
func (c *Config) Resolve(code string) (string, bool) {
	if name, ok := c.codeToDivision[code]; ok {
		return name, true
	}
	if c.policy == PolicyBucket {
		return UnclassifiedDivision, true
	}
	return "", false
}

// Policy returns the active unmapped-code policy.
func (c *Config) Policy() UnmappedPolicy {
	return c.policy
}

// DivisionStyle resolves presentation attributes for a division.
// The Unclassified bucket gets a neutral gray.
func (c *Config) DivisionStyle(name string) Style {
	if style, ok := c.divisionStyles[name]; ok {
		return style
	}
	if name == UnclassifiedDivision {
		return Style{Color: "#9CA3AF", Abbrev: "SC"}
	}
	return Style{Color: "#6B7280", Abbrev: "?"}
}

// BranchStyle resolves presentation attributes for a branch.
func (c *Config) BranchStyle(name string) Style {
	if style, ok := c.branchStyles[name]; ok {
		return style
	}
	return Style{Color: "#6B7280", Abbrev: "?"}
}

// BranchAbbrev returns the branch abbreviation, or the branch name
// itself when the branch is not configured.
func (c *Config) BranchAbbrev(name string) string {
	if style, ok := c.branchStyles[name]; ok {
		return style.Abbrev
	}
	return name
}

// AbbrevOf returns the division abbreviation for an account code, or
// the code itself when unmapped.
func (c *Config) AbbrevOf(code string) string {
	if name, ok := c.codeToDivision[code]; ok {
		return c.divisionStyles[name].Abbrev
	}
	return code
}

// Divisions lists the configured division names in stable order.
func (c *Config) Divisions() []string {
	return append([]string(nil), c.divisions...)
}

// Branches lists the configured branch names in stable order.
func (c *Config) Branches() []string {
	return append([]string(nil), c.branches...)
}
