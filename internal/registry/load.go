package registry

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed commands.toml
var embeddedDataset []byte

type namespaceTOML struct {
	Tag           string            `toml:"tag"`
	Module        string            `toml:"module"`
	Aliases       []string          `toml:"aliases"`
	Commands      []string          `toml:"commands"`
	PairReturning []string          `toml:"pair_returning"`
	Nullable      []string          `toml:"nullable"`
	LiteralString []string          `toml:"literal_string"`
	Typos         map[string]string `toml:"typos"`
	MinArgs       map[string]int    `toml:"min_args"`
	AttrPathArgs  map[string][]int  `toml:"attr_path_args"`
}

type datasetTOML struct {
	Namespaces []namespaceTOML `toml:"namespace"`
}

// FromTOML builds a registry from a TOML dataset. Intended for tests and for
// loading alternate command tables; production code uses Default.
func FromTOML(data []byte) (*Registry, error) {
	var ds datasetTOML
	if err := toml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("registry: failed to parse dataset: %w", err)
	}
	if len(ds.Namespaces) == 0 {
		return nil, fmt.Errorf("registry: dataset declares no namespaces")
	}
	seen := make(map[string]bool, len(ds.Namespaces))
	for _, ns := range ds.Namespaces {
		if ns.Tag == "" {
			return nil, fmt.Errorf("registry: namespace with empty tag")
		}
		if seen[ns.Tag] {
			return nil, fmt.Errorf("registry: duplicate namespace tag %q", ns.Tag)
		}
		seen[ns.Tag] = true
		for typo, canonical := range ns.Typos {
			if typo == canonical {
				return nil, fmt.Errorf("registry: %s: typo entry %q maps to itself", ns.Tag, typo)
			}
		}
	}
	return buildRegistry(data, ds.Namespaces), nil
}

var defaultOnce = sync.OnceValue(func() *Registry {
	r, err := FromTOML(embeddedDataset)
	if err != nil {
		// Битый встроенный датасет — ошибка сборки, а не рантайма.
		panic(err)
	}
	return r
})

// Default returns the process-wide registry built from the embedded dataset.
// The first call performs the build; every later call returns the same value.
func Default() *Registry {
	return defaultOnce()
}
