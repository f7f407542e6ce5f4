package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"db2graph/internal/logger"
)

var csvDirPattern = regexp.MustCompile(`^csv-(\d{3,})$`)

type Options struct {
	ImportToolDirectory string
	Destination         string
	CsvRoot             string
	Force               bool
}

// Workspace is the set of directories one migration run works in.
type Workspace struct {
	CsvDirectory string
	Destination  string
}

// Prepare checks the import tool and destination and allocates a fresh csv-NNN directory
// under the CSV root. An existing destination store is removed only with Force.
func Prepare(opts Options) (*Workspace, error) {
	if opts.ImportToolDirectory != "" {
		info, err := os.Stat(opts.ImportToolDirectory)
		if err != nil {
			return nil, fmt.Errorf("import tool directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("import tool directory %s is not a directory", opts.ImportToolDirectory)
		}
	}

	if opts.Destination != "" {
		if _, err := os.Stat(opts.Destination); err == nil {
			if !opts.Force {
				return nil, fmt.Errorf("destination %s already exists, use --force to overwrite it", opts.Destination)
			}
			logger.Warnf("Removing existing destination %s", opts.Destination)
			if err := os.RemoveAll(opts.Destination); err != nil {
				return nil, fmt.Errorf("failed to remove destination: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("destination: %w", err)
		}
	}

	if opts.CsvRoot == "" {
		return nil, errors.New("csv directory is required")
	}
	if err := os.MkdirAll(opts.CsvRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create csv directory: %w", err)
	}

	dir, err := nextCsvDirectory(opts.CsvRoot)
	if err != nil {
		return nil, err
	}
	logger.Debugf("CSV directory: %s", dir)
	return &Workspace{CsvDirectory: dir, Destination: opts.Destination}, nil
}

func nextCsvDirectory(root string) (string, error) {
	existing, err := csvDirectories(root)
	if err != nil {
		return "", err
	}
	next := 1
	if len(existing) > 0 {
		last := csvDirPattern.FindStringSubmatch(filepath.Base(existing[len(existing)-1]))
		n, _ := strconv.Atoi(last[1])
		next = n + 1
	}

	for ; ; next++ {
		dir := filepath.Join(root, fmt.Sprintf("csv-%03d", next))
		// Mkdir fails if another run grabbed the same number
		if err := os.Mkdir(dir, 0o755); err == nil {
			return dir, nil
		} else if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
}

// csvDirectories lists the csv-NNN directories of root in numeric order.
func csvDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv directory: %w", err)
	}

	type numbered struct {
		n    int
		path string
	}
	var dirs []numbered
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := csvDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		dirs = append(dirs, numbered{n, filepath.Join(root, e.Name())})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].n < dirs[j].n })

	paths := make([]string, len(dirs))
	for i, d := range dirs {
		paths[i] = d.path
	}
	return paths, nil
}

// Clean removes every csv-NNN directory under csvRoot and, when force is set, the
// destination store. It returns the removed paths.
func Clean(csvRoot, destination string, force bool) ([]string, error) {
	dirs, err := csvDirectories(csvRoot)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		removed = append(removed, dir)
	}

	if force && destination != "" {
		if _, err := os.Stat(destination); err == nil {
			if err := os.RemoveAll(destination); err != nil {
				return removed, fmt.Errorf("failed to remove destination: %w", err)
			}
			removed = append(removed, destination)
		}
	}
	return removed, nil
}
