package vfs

import (
	"context"
	"errors"
	"slices"

	"github.com/mwantia/craftos/data"
)

// Find returns every existing path matching pattern, where "*" inside a
// component matches any run of characters. Results are sorted.
func (m *Manager) Find(ctx context.Context, pattern string) ([]string, error) {
	matches := []string{""}
	for _, component := range data.SplitPattern(pattern) {
		var next []string
		for _, base := range matches {
			if !data.IsWildcard(component) {
				path := data.Combine(base, component)
				exists, err := m.Exists(ctx, path)
				if err != nil {
					return nil, err
				}
				if exists {
					next = append(next, path)
				}
				continue
			}

			names, err := m.List(ctx, base)
			if errors.Is(err, data.ErrNotDirectory) {
				continue
			}
			if err != nil {
				return nil, err
			}

			for _, name := range names {
				if data.MatchComponent(component, name) {
					next = append(next, data.Combine(base, name))
				}
			}
		}

		if len(next) == 0 {
			return []string{}, nil
		}
		matches = next
	}

	if len(matches) == 1 && matches[0] == "" {
		// An empty pattern only matches the root
		return matches, nil
	}

	slices.Sort(matches)
	return slices.Compact(matches), nil
}
