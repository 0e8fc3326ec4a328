package validate

import (
	"strings"
)

// importBinding is one local name introduced by an import statement.
type importBinding struct {
	alias  string // local name the module is reachable under
	module string // full dotted module path
}

// parseImport recognises the import statement forms scripts use to reach the
// host namespaces:
//
//	import maya.cmds as cmds
//	import maya.cmds
//	from maya import cmds, mel
//	from maya.api import OpenMaya as om
//
// ok is false when the line is not an import statement at all. Bindings for
// modules the registry does not know are still returned; the caller filters.
func parseImport(trimmed string) ([]importBinding, bool) {
	switch {
	case strings.HasPrefix(trimmed, "import "):
		return parsePlainImport(strings.TrimPrefix(trimmed, "import ")), true
	case strings.HasPrefix(trimmed, "from "):
		rest := strings.TrimPrefix(trimmed, "from ")
		idx := strings.Index(rest, " import ")
		if idx < 0 {
			return nil, true
		}
		base := strings.TrimSpace(rest[:idx])
		names := rest[idx+len(" import "):]
		return parseFromImport(base, names), true
	default:
		return nil, false
	}
}

func parsePlainImport(rest string) []importBinding {
	var binds []importBinding
	for _, part := range strings.Split(rest, ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) == 1:
			// import maya.cmds → доступ через полный путь
			binds = append(binds, importBinding{alias: fields[0], module: fields[0]})
		case len(fields) == 3 && fields[1] == "as":
			binds = append(binds, importBinding{alias: fields[2], module: fields[0]})
		}
	}
	return binds
}

func parseFromImport(base, names string) []importBinding {
	if base == "" {
		return nil
	}
	var binds []importBinding
	for _, part := range strings.Split(names, ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) == 1 && fields[0] != "*":
			binds = append(binds, importBinding{alias: fields[0], module: base + "." + fields[0]})
		case len(fields) == 3 && fields[1] == "as":
			binds = append(binds, importBinding{alias: fields[2], module: base + "." + fields[0]})
		}
	}
	return binds
}
