// Package sysmem reports the total physical memory of the machine.
//
// The collector uses it to estimate heap load when deciding whether to run a
// scheduled full collection immediately. Platforms without a query report
// "unknown", and the caller skips the estimate entirely.
package sysmem

// Total returns the total physical memory in bytes. ok is false when the
// size cannot be determined on this platform.
func Total() (bytes uint64, ok bool) {
	return total()
}
