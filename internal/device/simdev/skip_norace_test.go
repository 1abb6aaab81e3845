//go:build !race

package simdev

import "testing"

func skipRace(testing.TB) {}
