//go:build race

package cmdbuf

import "testing"

// skipRace skips tests that drive the lfq SPSC queue rings. The race
// detector cannot see the ring's cross-variable acquire/release ordering
// and reports false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: SPSC uses cross-variable memory ordering")
}
