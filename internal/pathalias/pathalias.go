// Package pathalias turns the logical output paths declared by scripts into
// filesystem paths. A Table maps logical prefixes (for example "@/") to real
// directories; the longest matching prefix wins. Paths that match no prefix
// are joined onto a base directory. The result is always lexically
// normalized, so it resolves even when the target does not exist yet.
package pathalias

import (
	"path/filepath"
	"sort"
)

// Table is an immutable prefix -> directory mapping.
type Table struct {
	dirs  map[string]string
	order []string
}

// NewTable copies m and precomputes the lookup order: longest key first,
// ties broken lexically.
func NewTable(m map[string]string) Table {
	t := Table{dirs: make(map[string]string, len(m))}
	for k, v := range m {
		t.dirs[k] = v
		t.order = append(t.order, k)
	}
	sort.Slice(t.order, func(i, j int) bool {
		a, b := t.order[i], t.order[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return t
}

// Len returns the number of aliases.
func (t Table) Len() int { return len(t.order) }

// Keys returns the alias keys in lookup order.
func (t Table) Keys() []string {
	return append([]string(nil), t.order...)
}

// Replace substitutes the longest alias key that prefixes candidate. The
// remainder is appended verbatim, without separator cleanup.
func (t Table) Replace(candidate string) (string, bool) {
	for _, k := range t.order {
		if len(candidate) >= len(k) && candidate[:len(k)] == k {
			return t.dirs[k] + candidate[len(k):], true
		}
	}
	return candidate, false
}

// Resolve maps candidate through the table, falling back to baseDir for
// relative paths that match no alias, and normalizes the result.
func (t Table) Resolve(candidate, baseDir string) string {
	p, ok := t.Replace(candidate)
	if !ok {
		p = joinBase(baseDir, candidate)
	}
	return Normalize(p)
}

// joinBase mirrors path joining where an absolute right-hand side replaces
// the base instead of being appended to it.
func joinBase(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
