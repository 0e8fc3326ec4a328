// Package locate finds the minimal line span a proposed fix snippet should
// replace in a buffer snapshot. Three strategies cascade, first success
// wins: exact containment, longest-common-contiguous-block alignment, then
// a fuzzy sliding window for very short snippets. All thresholds are named
// constants; the figures come from empirical tuning.
package locate

import (
	"strings"

	"scenelint/internal/source"
)

const (
	// FuzzyThreshold is the minimum window similarity the fuzzy strategy
	// accepts.
	FuzzyThreshold = 0.6
	// FuzzyMaxLines bounds the snippet size the fuzzy strategy applies to.
	FuzzyMaxLines = 3
	// BlockTightLines is the snippet size at or below which the block
	// strategy adds no context around the matched span.
	BlockTightLines = 5
	// BlockContextMax is the most symmetric context lines a large snippet
	// may receive.
	BlockContextMax = 2
)

// Locate finds where snippet belongs in the snapshot. The result is keyed
// to the snapshot's version; see Apply for the staleness contract.
func Locate(snap source.Snapshot, snippet string) MatchResult {
	snippetLines := snippetToLines(snippet)
	if len(snippetLines) == 0 {
		return Unmatched
	}
	bufLines := snap.Lines()
	if len(bufLines) == 0 {
		return Unmatched
	}

	if m, ok := exactContainment(bufLines, snippetLines); ok {
		return m
	}
	if m, ok := blockSimilarity(bufLines, snippetLines); ok {
		return m
	}
	if m, ok := fuzzyWindow(bufLines, snippetLines); ok {
		return m
	}
	return Unmatched
}

// snippetToLines normalizes the snippet the same way buffers are normalized
// and drops leading/trailing blank lines.
func snippetToLines(snippet string) []string {
	lines := source.New(snippet, 0).Lines()
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// lineEq compares two lines ignoring trailing whitespace.
func lineEq(a, b string) bool {
	return strings.TrimRight(a, " \t") == strings.TrimRight(b, " \t")
}

// exactContainment matches the snippet verbatim as a contiguous run of
// buffer lines. The topmost occurrence wins.
func exactContainment(buf, snippet []string) (MatchResult, bool) {
	n, m := len(buf), len(snippet)
	for start := 0; start+m <= n; start++ {
		hit := true
		for k := 0; k < m; k++ {
			if !lineEq(buf[start+k], snippet[k]) {
				hit = false
				break
			}
		}
		if hit {
			return MatchResult{
				Matched:    true,
				StartLine:  uint32(start + 1),
				EndLine:    uint32(start + m),
				Confidence: 1.0,
				Strategy:   StrategyExact,
			}, true
		}
	}
	return Unmatched, false
}

// blockSimilarity aligns buffer and snippet with the longest common
// contiguous block of equal lines. The best block is accepted when its size
// reaches min(2, snippetLines-1); context lines around the span scale with
// snippet size.
func blockSimilarity(buf, snippet []string) (MatchResult, bool) {
	n, m := len(buf), len(snippet)
	if m < 2 {
		return Unmatched, false
	}

	bestLen, bestBuf := 0, 0
	// dp[j]: длина общего блока, заканчивающегося на buf[i-1]/snippet[j-1].
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if lineEq(buf[i-1], snippet[j-1]) && strings.TrimSpace(buf[i-1]) != "" {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen = curr[j]
					bestBuf = i - curr[j] // 0-based start in buf
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	floor := m - 1
	if floor > 2 {
		floor = 2
	}
	if bestLen < floor {
		return Unmatched, false
	}

	context := 0
	if m > BlockTightLines {
		context = BlockContextMax
	}
	start := bestBuf - context
	if start < 0 {
		start = 0
	}
	end := bestBuf + bestLen - 1 + context
	if end > n-1 {
		end = n - 1
	}

	return MatchResult{
		Matched:    true,
		StartLine:  uint32(start + 1),
		EndLine:    uint32(end + 1),
		Confidence: float64(bestLen) / float64(m),
		Strategy:   StrategyBlock,
	}, true
}

// fuzzyWindow slides a snippet-sized window over the buffer and accepts the
// first window whose line-level similarity ratio exceeds FuzzyThreshold.
// Only attempted for snippets of 1..FuzzyMaxLines lines.
func fuzzyWindow(buf, snippet []string) (MatchResult, bool) {
	n, m := len(buf), len(snippet)
	if m < 1 || m > FuzzyMaxLines {
		return Unmatched, false
	}
	for start := 0; start+m <= n; start++ {
		total := 0.0
		for k := 0; k < m; k++ {
			total += lineSimilarity(buf[start+k], snippet[k])
		}
		ratio := total / float64(m)
		if ratio > FuzzyThreshold {
			return MatchResult{
				Matched:    true,
				StartLine:  uint32(start + 1),
				EndLine:    uint32(start + m),
				Confidence: ratio,
				Strategy:   StrategyFuzzy,
			}, true
		}
	}
	return Unmatched, false
}

// lineSimilarity is the character-overlap ratio of two lines' multisets.
func lineSimilarity(a, b string) float64 {
	a = strings.TrimRight(a, " \t")
	b = strings.TrimRight(b, " \t")
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(a); i++ {
		counts[a[i]]++
	}
	common := 0
	for i := 0; i < len(b); i++ {
		if counts[b[i]] > 0 {
			counts[b[i]]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
