package routecatalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir reads every regular file in dir and extracts its registrations.
// Files are processed in lexical order. A file that cannot be read or parsed
// is reported as a warning and contributes no resource; only a missing or
// unreadable directory is an error.
func LoadDir(dir string) ([]Resource, []Warning, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("routecatalog: read dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var (
		resources []Resource
		warnings  []Warning
	)
	for _, name := range names {
		slug := SlugFromFile(name)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			warnings = append(warnings, Warning{Resource: slug, Reason: "read failed: " + err.Error()})
			continue
		}
		var (
			entries []Entry
			warns   []Warning
		)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			entries, warns, err = ParseManifest(slug, data)
			if err != nil {
				warnings = append(warnings, Warning{Resource: slug, Reason: err.Error()})
				continue
			}
		default:
			entries, warns = ScanLines(slug, string(data))
		}
		warnings = append(warnings, warns...)
		resources = append(resources, Resource{Slug: slug, Entries: entries})
	}
	return resources, warnings, nil
}

// SlugFromFile strips the extension from a route file name.
func SlugFromFile(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
