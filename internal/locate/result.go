package locate

// Strategy names the technique that produced a match.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	// StrategyExact: the snippet appears verbatim as a contiguous line run.
	StrategyExact
	// StrategyBlock: longest-common-contiguous-block alignment.
	StrategyBlock
	// StrategyFuzzy: sliding-window similarity for short snippets.
	StrategyFuzzy
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyBlock:
		return "block"
	case StrategyFuzzy:
		return "fuzzy"
	case StrategyNone:
		return "none"
	}
	return "invalid"
}

// MatchResult reports where a snippet belongs in a buffer. A zero value is
// Unmatched. Results are single-use: apply the replacement once, then
// discard.
type MatchResult struct {
	Matched    bool
	StartLine  uint32 // 1-based inclusive
	EndLine    uint32 // 1-based inclusive
	Confidence float64
	Strategy   Strategy
}

// Unmatched is the no-anchor result. Any fallback, such as a whole-buffer
// replace, is the caller's decision.
var Unmatched = MatchResult{}
