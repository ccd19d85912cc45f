package nickname

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table is an immutable bidirectional equivalence table over cleaned given
// names. It is loaded once at startup and passed explicitly into the stage
// runner, never held as mutable package state, so tests can substitute
// alternate tables. Extending the table is a config change.
type Table struct {
	canon map[string]string
}

type tableFile struct {
	// nicknames maps a canonical given name to its informal variants.
	Nicknames map[string][]string `yaml:"nicknames"`
}

// Load reads an equivalence table from a yaml file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nickname table: %w", err)
	}
	return Parse(raw)
}

// Parse builds a Table from yaml bytes.
func Parse(raw []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse nickname table: %w", err)
	}
	if len(file.Nicknames) == 0 {
		return nil, fmt.Errorf("nickname table has no entries")
	}
	return newTable(file.Nicknames), nil
}

func newTable(groups map[string][]string) *Table {
	canon := make(map[string]string, len(groups)*3)

	// Sorted insertion keeps the variant->canonical mapping stable even if
	// a config file lists the same variant under two canonical names.
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		canon[name] = name
		for _, variant := range groups[name] {
			canon[variant] = name
		}
	}
	return &Table{canon: canon}
}

// Equivalent reports whether two cleaned given names refer to the same
// canonical name. Symmetric; a name is always equivalent to itself.
func (t *Table) Equivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return t.Canonical(a) == t.Canonical(b)
}

// Canonical returns the canonical form of a given name, or the name itself
// when it has no table entry.
func (t *Table) Canonical(name string) string {
	if c, ok := t.canon[name]; ok {
		return c
	}
	return name
}

// Len returns the number of names the table knows about.
func (t *Table) Len() int {
	return len(t.canon)
}
