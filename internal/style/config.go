// Package style implements a non-scripted alternative to internal/policy's
// Lua-driven relation/member selection: a YAML tag-match style file
// deciding which relations are "interesting" (e.g. type=multipolygon) and
// which of their members to wait for.
package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/etresoft/libosmium/internal/model"
)

// Config is the root of a style YAML file.
type Config struct {
	// Relations filters which relations select_relation accepts, by tag.
	Relations *FilterConfig `yaml:"relations,omitempty"`
	// Members restricts which member kinds/roles select_member accepts.
	Members *MemberConfig `yaml:"members,omitempty"`
}

// FilterConfig defines tag-based filtering rules, unchanged from an
// osm2pgsql-style geometry-table filter (the original Points/Lines/
// Polygons shape), now applied to relation tags instead of
// output-table eligibility.
type FilterConfig struct {
	Include    map[string][]string `yaml:"include,omitempty"`
	Exclude    map[string][]string `yaml:"exclude,omitempty"`
	RequireAny []string            `yaml:"require_any,omitempty"`
}

// MemberConfig restricts which members of an already-selected relation
// are tracked as "interesting" (select_member).
type MemberConfig struct {
	// Kinds, if non-empty, lists the only member kinds considered
	// interesting ("node", "way", "relation").
	Kinds []string `yaml:"kinds,omitempty"`
	// IncludeRoles, if non-empty, lists the only member roles considered
	// interesting. An empty role ("") may be listed explicitly.
	IncludeRoles []string `yaml:"include_roles,omitempty"`
}

// LoadConfig loads a style configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("style: failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("style: failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultConfig returns a configuration that selects every relation and
// every member — equivalent to libosmium's simplest "accept everything"
// manager policy.
func DefaultConfig() *Config {
	return &Config{}
}

// Filter checks tags against a FilterConfig.
type Filter struct {
	cfg *FilterConfig
}

// NewFilter creates a Filter from cfg. A nil cfg matches everything.
func NewFilter(cfg *FilterConfig) *Filter {
	if cfg == nil {
		cfg = &FilterConfig{}
	}
	return &Filter{cfg: cfg}
}

// Match reports whether tags satisfy the filter's require_any, include
// and exclude rules.
func (f *Filter) Match(tags map[string]string) bool {
	if f.cfg == nil {
		return true
	}

	if len(f.cfg.RequireAny) > 0 {
		found := false
		for _, key := range f.cfg.RequireAny {
			if _, ok := tags[key]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.cfg.Include) > 0 {
		matched := false
		for key, values := range f.cfg.Include {
			tagValue, ok := tags[key]
			if !ok {
				continue
			}
			if len(values) == 0 {
				matched = true
				break
			}
			for _, v := range values {
				if v == tagValue || v == "*" {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.cfg.Exclude) > 0 {
		for key, values := range f.cfg.Exclude {
			tagValue, ok := tags[key]
			if !ok {
				continue
			}
			if len(values) == 0 {
				return false
			}
			for _, v := range values {
				if v == tagValue || v == "*" {
					return false
				}
			}
		}
	}

	return true
}

// HasFilter reports whether any rule is configured.
func (f *Filter) HasFilter() bool {
	if f.cfg == nil {
		return false
	}
	return len(f.cfg.Include) > 0 || len(f.cfg.Exclude) > 0 || len(f.cfg.RequireAny) > 0
}

func kindName(k model.ItemKind) string {
	return k.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
