//go:build !race

package cmdbuf

import "testing"

func skipRace(testing.TB) {}
