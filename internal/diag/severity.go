package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for advisories the script author may ignore.
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Slug returns the lowercase wire form used in JSON output.
func (s Severity) Slug() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
