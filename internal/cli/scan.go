package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// scanRecords lists the markdown record files directly under dir,
// sorted by path. Subdirectories are not descended into; record sets
// are flat by convention.
func scanRecords(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("record directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("record directory: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("record directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
