package source

// SnapshotFlags encodes metadata about how a snapshot's text was ingested.
type SnapshotFlags uint8

const (
	// SnapVirtual indicates the snapshot was built from memory (editor buffer, test, stdin).
	SnapVirtual SnapshotFlags = 1 << iota
	SnapHadBOM
	SnapNormalizedCRLF
)

// LineCol represents a human-readable position in a buffer.
// Both fields are 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (p LineCol) Before(other LineCol) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
