package search

// Capability is the full-text-search level the database session supports.
// The numeric values mirror the FTS module versions (5, 4) with 0 for the
// substring-scan fallback.
type Capability int

const (
	// CapabilityUnset means Initialize has not run yet.
	CapabilityUnset Capability = -1
	// CapabilityDisabled means no FTS module is available; searches fall
	// back to substring scanning.
	CapabilityDisabled Capability = 0
	// CapabilityFTS4 uses the FTS4 module without relevance ranking.
	CapabilityFTS4 Capability = 4
	// CapabilityFTS5 uses the FTS5 module with rank ordering.
	CapabilityFTS5 Capability = 5
)

func (c Capability) String() string {
	switch c {
	case CapabilityUnset:
		return "unset"
	case CapabilityDisabled:
		return "disabled"
	case CapabilityFTS4:
		return "fts4"
	case CapabilityFTS5:
		return "fts5"
	default:
		return "unknown"
	}
}
