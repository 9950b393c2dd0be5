package level

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed levels/*.yaml
var embedded embed.FS

// Loader handles loading levels from a directory.
// An empty Root reads the levels built into the binary.
type Loader struct {
	Root string
}

// NewLoader creates a new level loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

func (l *Loader) fsys() (fs.FS, string) {
	if l.Root == "" {
		return embedded, "levels"
	}
	return os.DirFS(l.Root), "."
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	fsys, root := l.fsys()
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil
		}
		level, err := ParseYAML(data)
		if err != nil {
			// Skip invalid files
			return nil
		}
		if l.Root != "" {
			level.FilePath = filepath.Join(l.Root, filepath.FromSlash(p))
		}

		levels = append(levels, level)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("level: walking directory %s: %w", l.describe(), err)
	}

	// Sort by ID for determinism
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// LoadFile loads a single level file from disk.
func (l *Loader) LoadFile(p string) (Level, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Level{}, fmt.Errorf("level: reading file %s: %w", p, err)
	}

	if ext := strings.ToLower(filepath.Ext(p)); !isSupportedExtension(ext) {
		return Level{}, fmt.Errorf("level: unsupported extension: %s", ext)
	}

	level, err := ParseYAML(data)
	if err != nil {
		return Level{}, fmt.Errorf("level: parsing file %s: %w", p, err)
	}
	level.FilePath = p
	return level, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level: not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Default returns the first built-in level.
func Default() Level {
	levels, err := NewLoader("").LoadAll()
	if err != nil || len(levels) == 0 {
		panic(fmt.Sprintf("level: no built-in levels: %v", err))
	}
	return levels[0]
}

func (l *Loader) describe() string {
	if l.Root == "" {
		return "<embedded>"
	}
	return l.Root
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
