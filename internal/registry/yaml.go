package registry

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// routesFile is the YAML schema for route table overrides
type routesFile struct {
	Routes []routeSpec `yaml:"routes"`
}

type routeSpec struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords,omitempty"`
	Boundary string   `yaml:"boundary,omitempty"`
}

// FromYAML loads category routes from a YAML file, merged over the built-in
// defaults. A route with the same category replaces the default one. Boundary
// expressions should embed their own flags; patterns without inline flags get
// (?is) prepended so multi-page bodies match.
func FromYAML(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	var parsed routesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}

	r := Default()
	for i, rs := range parsed.Routes {
		if rs.Category == "" {
			return nil, fmt.Errorf("routes file: route %d has no category", i+1)
		}

		route := CategoryRoute{Category: rs.Category, Keywords: rs.Keywords}
		if rs.Boundary != "" {
			expr := rs.Boundary
			if len(expr) < 2 || expr[0:2] != "(?" {
				expr = "(?is)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("routes file: category %q: compile boundary: %w", rs.Category, err)
			}
			if re.NumSubexp() < 3 {
				return nil, fmt.Errorf("routes file: category %q: boundary needs start/body/end capture groups, has %d", rs.Category, re.NumSubexp())
			}
			route.Boundary = re
		}
		r.routes[route.Category] = route
	}

	return r, nil
}
