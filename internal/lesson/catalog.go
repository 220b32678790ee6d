package lesson

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Catalog is the set of lessons found under the configured paths, indexed
// by lesson id.
type Catalog struct {
	lessons map[int]*Lesson
	order   []int
}

// NewCatalog builds a catalog from already-parsed lessons.
func NewCatalog(lessons ...*Lesson) *Catalog {
	cat := &Catalog{lessons: make(map[int]*Lesson, len(lessons))}
	for _, l := range lessons {
		if _, ok := cat.lessons[l.ID]; ok {
			continue
		}
		cat.lessons[l.ID] = l
		cat.order = append(cat.order, l.ID)
	}
	return cat
}

// LoadCatalog walks the roots for lesson markdown files. Files without
// frontmatter are skipped silently (lesson directories often hold plain
// notes); files with broken frontmatter are reported.
func LoadCatalog(roots, excludes []string) (*Catalog, []error) {
	files, err := walkLessonFiles(roots, excludes)
	if err != nil {
		return nil, []error{err}
	}

	cat := &Catalog{lessons: make(map[int]*Lesson)}
	var errs []error
	for _, path := range files {
		l, err := ParseFile(path)
		if err != nil {
			if err == ErrNoFrontmatter {
				continue
			}
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if existing, ok := cat.lessons[l.ID]; ok {
			errs = append(errs, fmt.Errorf("duplicate lesson id %d in %s and %s", l.ID, existing.SourceFile, path))
			continue
		}
		cat.lessons[l.ID] = l
		cat.order = append(cat.order, l.ID)
	}
	return cat, errs
}

func (c *Catalog) Get(id int) (*Lesson, bool) {
	l, ok := c.lessons[id]
	return l, ok
}

// All returns lessons in discovery order.
func (c *Catalog) All() []*Lesson {
	out := make([]*Lesson, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.lessons[id])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.lessons) }

// Changed reports whether the on-disk file differs from the loaded copy,
// by content hash.
func (c *Catalog) Changed(id int) (bool, error) {
	l, ok := c.lessons[id]
	if !ok {
		return false, fmt.Errorf("unknown lesson %d", id)
	}
	data, err := os.ReadFile(l.SourceFile)
	if err != nil {
		return false, err
	}
	return contentHash(data) != l.SourceHash, nil
}

func walkLessonFiles(roots, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
