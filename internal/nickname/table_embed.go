package nickname

import (
	_ "embed"
)

//go:embed data/nicknames.yaml
var defaultTableYAML []byte

// Default returns the built-in equivalence table. The embedded file is
// static configuration shipped with the binary; deployments can override it
// with Load.
func Default() *Table {
	t, err := Parse(defaultTableYAML)
	if err != nil {
		// The embedded file is validated by tests; failing to parse it is
		// a build defect, not a runtime condition.
		panic(err)
	}
	return t
}
