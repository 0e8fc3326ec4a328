// Package registry holds the curated command surface of the host application:
// four parallel namespaces, each with its canonical command set, a curated
// misspelling map, and per-command usage metadata. The registry is built once
// at process start from the embedded dataset and is read-only afterwards;
// share it by reference, never clone it per validation pass.
package registry

import (
	"crypto/sha256"
	"sort"
)

// Namespace tags. These are the stable identifiers used across the CLI,
// configuration, and JSON output.
const (
	TagPrimary = "primary-api"
	TagObject  = "object-oriented-api"
	TagNative  = "native-api"
	TagMacro   = "macro-language"
)

// Namespace is one command surface of the host application. All fields are
// populated at load time and never mutated.
type Namespace struct {
	tag     string
	module  string
	aliases []string

	commands map[string]struct{}
	sorted   []string // canonical names, ascending; shared read-only
	typos    map[string]string
	pair     map[string]struct{}
	minArgs  map[string]int
	attrPath map[string][]int
	nullable map[string]struct{}
	literal  map[string]struct{}
}

func (ns *Namespace) Tag() string { return ns.tag }

// Module is the import path scripts use to reach this namespace.
func (ns *Namespace) Module() string { return ns.module }

// Aliases are the conventional local names the module is imported under.
func (ns *Namespace) Aliases() []string { return ns.aliases }

// Contains reports whether name is a canonical command of the namespace.
func (ns *Namespace) Contains(name string) bool {
	_, ok := ns.commands[name]
	return ok
}

// Canonical resolves a curated misspelling to its canonical command.
func (ns *Namespace) Canonical(typo string) (string, bool) {
	c, ok := ns.typos[typo]
	return c, ok
}

// Commands returns the canonical command names in ascending order.
// ВАЖНО: не модифицируйте возвращаемый срез.
func (ns *Namespace) Commands() []string { return ns.sorted }

// Typos returns a copy of the curated misspelling map.
func (ns *Namespace) Typos() map[string]string {
	out := make(map[string]string, len(ns.typos))
	for k, v := range ns.typos {
		out[k] = v
	}
	return out
}

// PairReturning reports whether the command returns a (transform, shape) pair.
func (ns *Namespace) PairReturning(name string) bool {
	_, ok := ns.pair[name]
	return ok
}

// MinArgs returns the minimum argument count required by the command.
func (ns *Namespace) MinArgs(name string) (int, bool) {
	n, ok := ns.minArgs[name]
	return n, ok
}

// AttrPathArgs returns the 0-based argument positions that must be dotted
// attribute paths ("node.attr"). Two positions mark a connective command
// that links a pair of attribute paths.
func (ns *Namespace) AttrPathArgs(name string) ([]int, bool) {
	idxs, ok := ns.attrPath[name]
	return idxs, ok
}

// Nullable reports whether the command yields a handle that may be invalid
// and should be checked before use.
func (ns *Namespace) Nullable(name string) bool {
	_, ok := ns.nullable[name]
	return ok
}

// RequiresLiteralString reports whether the command demands a literal string
// as its first argument (the macro-language bridge).
func (ns *Namespace) RequiresLiteralString(name string) bool {
	_, ok := ns.literal[name]
	return ok
}

// Registry is the full, immutable command table.
type Registry struct {
	byTag    map[string]*Namespace
	byAlias  map[string]*Namespace
	byModule map[string]*Namespace
	tags     []string
	digest   [32]byte
}

// Namespace returns the namespace registered under tag.
func (r *Registry) Namespace(tag string) (*Namespace, bool) {
	ns, ok := r.byTag[tag]
	return ns, ok
}

// ByAlias maps a conventional import alias (e.g. "cmds") to its namespace.
func (r *Registry) ByAlias(alias string) (*Namespace, bool) {
	ns, ok := r.byAlias[alias]
	return ns, ok
}

// ByModule maps a module import path (e.g. "maya.cmds") to its namespace.
func (r *Registry) ByModule(module string) (*Namespace, bool) {
	ns, ok := r.byModule[module]
	return ns, ok
}

// Tags returns the namespace tags in dataset order.
func (r *Registry) Tags() []string { return r.tags }

// Fingerprint is a digest of the loaded dataset, used to invalidate caches
// when the command table changes between releases.
func (r *Registry) Fingerprint() [32]byte { return r.digest }

func buildNamespace(t namespaceTOML) *Namespace {
	ns := &Namespace{
		tag:      t.Tag,
		module:   t.Module,
		aliases:  append([]string(nil), t.Aliases...),
		commands: make(map[string]struct{}, len(t.Commands)),
		typos:    make(map[string]string, len(t.Typos)),
		pair:     make(map[string]struct{}, len(t.PairReturning)),
		minArgs:  make(map[string]int, len(t.MinArgs)),
		attrPath: make(map[string][]int, len(t.AttrPathArgs)),
		nullable: make(map[string]struct{}, len(t.Nullable)),
		literal:  make(map[string]struct{}, len(t.LiteralString)),
	}
	for _, c := range t.Commands {
		ns.commands[c] = struct{}{}
	}
	ns.sorted = make([]string, 0, len(ns.commands))
	for c := range ns.commands {
		ns.sorted = append(ns.sorted, c)
	}
	sort.Strings(ns.sorted)
	for typo, canonical := range t.Typos {
		ns.typos[typo] = canonical
	}
	for _, c := range t.PairReturning {
		ns.pair[c] = struct{}{}
	}
	for c, n := range t.MinArgs {
		ns.minArgs[c] = n
	}
	for c, idxs := range t.AttrPathArgs {
		ns.attrPath[c] = append([]int(nil), idxs...)
	}
	for _, c := range t.Nullable {
		ns.nullable[c] = struct{}{}
	}
	for _, c := range t.LiteralString {
		ns.literal[c] = struct{}{}
	}
	return ns
}

func buildRegistry(data []byte, namespaces []namespaceTOML) *Registry {
	r := &Registry{
		byTag:    make(map[string]*Namespace, len(namespaces)),
		byAlias:  make(map[string]*Namespace),
		byModule: make(map[string]*Namespace, len(namespaces)),
		tags:     make([]string, 0, len(namespaces)),
		digest:   sha256.Sum256(data),
	}
	for _, t := range namespaces {
		ns := buildNamespace(t)
		r.byTag[ns.tag] = ns
		r.byModule[ns.module] = ns
		for _, alias := range ns.aliases {
			r.byAlias[alias] = ns
		}
		r.tags = append(r.tags, ns.tag)
	}
	return r
}
