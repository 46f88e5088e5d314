package gc

import "fmt"

// assertf panics when the condition does not hold. The orchestrator uses it
// for the accounting identities and range invariants that the external
// engines must maintain; a violation is a defect in an engine, not a
// reportable runtime condition.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("gc: invariant violation: "+format, args...))
	}
}
