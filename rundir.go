package bankimport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/bankimport/date"
)

// ResolveRunDate determines the run's logical processing date. A non-empty
// override wins and must be a valid date; otherwise the latest dated
// subdirectory of inputRoot is used.
func ResolveRunDate(override, inputRoot string) (date.Date, error) {
	if override != "" {
		on, err := date.Parse(override)
		if err != nil {
			return date.Date{}, fmt.Errorf("%w: run date override: %v", ErrConfig, err)
		}
		return on, nil
	}
	return latestDatedFolder(inputRoot)
}

// latestDatedFolder returns the chronologically latest subdirectory of root
// whose name parses as a date.
func latestDatedFolder(root string) (date.Date, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: missing directory %s", ErrNotFound, root)
	}

	var latest date.Date
	found := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		on, err := date.Parse(entry.Name())
		if err != nil {
			continue
		}
		if !found || on.After(latest) {
			latest, found = on, true
		}
	}
	if !found {
		return date.Date{}, fmt.Errorf("%w: no dated folders found in %s", ErrNotFound, root)
	}
	return latest, nil
}

// InputPath resolves an input file for the run date, failing when it does
// not exist.
func InputPath(inputRoot string, runDate date.Date, filename string) (string, error) {
	path := filepath.Join(inputRoot, runDate.String(), filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: missing input file %s", ErrNotFound, path)
	}
	return path, nil
}

// OutputDir resolves the run's output directory, creating it (and parents)
// when absent. Idempotent.
func OutputDir(outputRoot string, runDate date.Date) (string, error) {
	path := filepath.Join(outputRoot, runDate.String())
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}
