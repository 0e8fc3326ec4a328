package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
)

// Snapshot is an immutable view of a script buffer: an ordered, 1-indexed
// sequence of text lines plus a monotonically increasing version counter.
// The owner of the live buffer produces a fresh Snapshot on every accepted
// edit; the validator and the locator only ever read one.
type Snapshot struct {
	version uint64
	lines   []string
	flags   SnapshotFlags
}

// New builds a snapshot from raw buffer text. The text is normalized
// (BOM stripped, CRLF folded, Unicode NFC) before being split into lines.
func New(text string, version uint64) Snapshot {
	content, flags := normalize([]byte(text))
	return Snapshot{
		version: version,
		lines:   splitLines(content),
		flags:   flags | SnapVirtual,
	}
}

// Load reads a script file from disk and returns its initial snapshot
// (version 1). Normalization matches New.
func Load(path string) (Snapshot, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	normalized, flags := normalize(content)
	return Snapshot{
		version: 1,
		lines:   splitLines(normalized),
		flags:   flags,
	}, nil
}

// FromLines builds a snapshot directly from pre-split lines. The slice is
// copied; callers keep ownership of theirs.
func FromLines(lines []string, version uint64) Snapshot {
	return Snapshot{
		version: version,
		lines:   append([]string(nil), lines...),
		flags:   SnapVirtual,
	}
}

func (s Snapshot) Version() uint64 {
	return s.version
}

func (s Snapshot) Flags() SnapshotFlags {
	return s.flags
}

// LineCount returns the number of lines in the snapshot.
func (s Snapshot) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(s.lines))
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return n
}

// Line returns the 1-based line n, or "" when n is out of range.
func (s Snapshot) Line(n uint32) string {
	if n == 0 || n > s.LineCount() {
		return ""
	}
	return s.lines[n-1]
}

// Lines returns a read-only view of the snapshot's lines.
// ВАЖНО: не модифицируйте возвращаемый срез (он указывает на внутренний массив).
func (s Snapshot) Lines() []string {
	return s.lines
}

// Text joins the lines back into a single buffer string.
func (s Snapshot) Text() string {
	return strings.Join(s.lines, "\n")
}

// Hash returns a content digest of the snapshot text. The version counter is
// deliberately excluded so identical content always hashes the same.
func (s Snapshot) Hash() [32]byte {
	return sha256.Sum256([]byte(s.Text()))
}

// Replace returns a new snapshot in which the 1-based inclusive line span
// [start, end] is replaced by repl. The version counter advances by one.
// Out-of-range spans are clamped to the buffer.
func (s Snapshot) Replace(start, end uint32, repl []string) Snapshot {
	n := s.LineCount()
	if n == 0 {
		return Snapshot{
			version: s.version + 1,
			lines:   append([]string(nil), repl...),
			flags:   s.flags,
		}
	}
	if start == 0 {
		start = 1
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}

	out := make([]string, 0, int(n)-int(end-start+1)+len(repl))
	out = append(out, s.lines[:start-1]...)
	out = append(out, repl...)
	out = append(out, s.lines[end:]...)
	return Snapshot{
		version: s.version + 1,
		lines:   out,
		flags:   s.flags,
	}
}

// splitLines splits normalized content on \n. An empty buffer yields a single
// empty line so that line numbering always starts at 1.
func splitLines(content []byte) []string {
	return strings.Split(string(content), "\n")
}
