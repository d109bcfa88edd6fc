package plugin

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"firestige.xyz/protosy/internal/log"
)

type LoaderConfig struct {
	Dir      string   // directory scanned when Autoload is set
	Patterns []string // glob patterns matched inside Dir
	Preload  []string // explicit library paths, loaded first
	Autoload bool
}

// Loader feeds configured libraries into a Registry at startup.
type Loader struct {
	config   LoaderConfig
	registry *Registry
}

func NewLoader(config LoaderConfig, registry *Registry) *Loader {
	return &Loader{
		config:   config,
		registry: registry,
	}
}

// Load loads every preload entry, then every discovered file, each at most
// once. A failing library is logged and skipped; the returned error joins
// all failures.
func (l *Loader) Load() (int, error) {
	paths := slices.Clone(l.config.Preload)
	if l.config.Autoload {
		discovered, err := l.discoverPluginFiles()
		if err != nil {
			return 0, fmt.Errorf("failed to discover plugin files: %w", err)
		}
		paths = append(paths, discovered...)
	}

	seen := make(map[string]bool, len(paths))
	loaded := 0
	var errs []error
	for _, path := range paths {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := l.registry.Load(path); err != nil {
			log.GetLogger().WithField("path", path).WithError(err).Warn("Failed to load plugin")
			errs = append(errs, fmt.Errorf("failed to load plugin %s: %w", path, err))
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

// discoverPluginFiles returns the files in Dir matching any pattern, sorted
// per pattern so load order is stable.
func (l *Loader) discoverPluginFiles() ([]string, error) {
	files := make([]string, 0)

	for _, pattern := range l.config.Patterns {
		fullPattern := filepath.Join(l.config.Dir, pattern)
		matches, err := filepath.Glob(fullPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to match pattern %s: %w", fullPattern, err)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}
