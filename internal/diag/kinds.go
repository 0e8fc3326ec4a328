package diag

import (
	"fmt"
)

// Kind identifies the class of issue a diagnostic reports. Numeric blocks
// group kinds by the phase that produces them; the string forms are stable
// and safe to serialise.
type Kind uint16

const (
	KindUnknown Kind = 0

	// Hard host-language syntax errors found by the mask-and-reparse loop.
	KindHardSyntax Kind = 1001

	// Macro-language issues (legacy command syntax embedded in eval calls).
	KindMacroSyntax Kind = 2001

	// Registry-backed usage rules.
	KindMissingImport  Kind = 3001
	KindUnknownCommand Kind = 3002
	KindKnownTypo      Kind = 3003
	KindUsageShape     Kind = 3004

	// Analysis bookkeeping: the validator could not claim completeness.
	KindAnalysisIncomplete Kind = 4001
)

// ID returns the compact code form rendered in pretty output, e.g. "USE3002".
func (k Kind) ID() string {
	switch ik := int(k); {
	case ik >= 1000 && ik < 2000:
		return fmt.Sprintf("SYN%04d", ik)
	case ik >= 2000 && ik < 3000:
		return fmt.Sprintf("MAC%04d", ik)
	case ik >= 3000 && ik < 4000:
		return fmt.Sprintf("USE%04d", ik)
	case ik >= 4000 && ik < 5000:
		return fmt.Sprintf("LIM%04d", ik)
	default:
		return fmt.Sprintf("UNK%04d", ik)
	}
}

// Slug returns the stable hyphenated name used in JSON output.
func (k Kind) Slug() string {
	switch k {
	case KindHardSyntax:
		return "hard-syntax"
	case KindMacroSyntax:
		return "macro-syntax"
	case KindMissingImport:
		return "missing-import"
	case KindUnknownCommand:
		return "unknown-command"
	case KindKnownTypo:
		return "known-typo"
	case KindUsageShape:
		return "usage-shape"
	case KindAnalysisIncomplete:
		return "analysis-incomplete"
	}
	return "unknown"
}

func (k Kind) String() string {
	return fmt.Sprintf("[%s]: %s", k.ID(), k.Slug())
}

// rank defines the fixed ordering of kinds when line and column tie:
// hard syntax first, then macro syntax, then usage rules, advisories last.
func (k Kind) rank() int {
	switch k {
	case KindHardSyntax:
		return 0
	case KindMacroSyntax:
		return 1
	case KindMissingImport:
		return 2
	case KindUnknownCommand:
		return 3
	case KindKnownTypo:
		return 4
	case KindUsageShape:
		return 5
	case KindAnalysisIncomplete:
		return 6
	}
	return 7
}
