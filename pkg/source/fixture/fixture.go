// Package fixture implements a dependency source backed by a local
// repository file, used for offline analysis and tests.
//
// Two formats are accepted. A JSON object mapping package names to their
// dependency objects:
//
//	{"A": {"B": "1.0.0", "C": "2.1.0"}, "B": {}}
//
// or a line-oriented text form, where an omitted version defaults to 1.0.0
// and lines starting with # are comments:
//
//	A: B, C@2.1.0
//	B:
package fixture

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/depscope/pkg/depgraph"
	"github.com/matzehuels/depscope/pkg/errors"
)

// DefaultVersion is assigned to dependencies listed without a version.
const DefaultVersion = "1.0.0"

// Repository is an in-memory package index loaded from a fixture file.
// It implements depgraph.Source.
type Repository struct {
	packages map[string]map[string]string
}

// Load reads and parses a fixture file. A missing file or malformed JSON
// is fatal; there is no partial loading.
func Load(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "fixture file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFixture, err, "read fixture %s", path)
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "{") {
		var packages map[string]map[string]string
		if err := json.Unmarshal([]byte(content), &packages); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFixture, err, "parse fixture %s", path)
		}
		return &Repository{packages: packages}, nil
	}
	return &Repository{packages: parseText(content)}, nil
}

// parseText parses the line format "PACKAGE: DEP1, DEP2@VERSION".
// Blank lines, comments, and lines without a colon are skipped.
func parseText(content string) map[string]map[string]string {
	packages := make(map[string]map[string]string)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		deps := make(map[string]string)
		for _, field := range strings.Split(rest, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			// Split on the last @ so scoped names like @scope/a@2.0 work.
			if idx := strings.LastIndex(field, "@"); idx > 0 {
				deps[strings.TrimSpace(field[:idx])] = strings.TrimSpace(field[idx+1:])
			} else {
				deps[field] = DefaultVersion
			}
		}
		packages[strings.TrimSpace(name)] = deps
	}
	return packages
}

// Fetch returns pkg's dependencies. Unknown packages yield an empty map
// rather than an error so fixture graphs behave like sparse registries.
func (r *Repository) Fetch(ctx context.Context, pkg string) (map[string]string, error) {
	deps, ok := r.packages[pkg]
	if !ok {
		return map[string]string{}, nil
	}
	return maps.Clone(deps), nil
}

// Packages returns every package defined in the fixture, sorted. The
// application shell uses this to ingest the whole fixture before reverse
// dependency queries.
func (r *Repository) Packages() []string {
	return slices.Sorted(maps.Keys(r.packages))
}

// Len returns the number of packages defined in the fixture.
func (r *Repository) Len() int { return len(r.packages) }

// Ensure Repository implements the engine's source contract.
var _ depgraph.Source = (*Repository)(nil)
