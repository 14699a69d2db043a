package test

import (
	"fmt"
	"testing"
)

func id(tags ...any) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprint(tags...) + ": "
}

// DemandEquality fails the test immediately if v does not equal want.
func DemandEquality[T comparable](t *testing.T, v T, want T, tags ...any) {
	t.Helper()
	if v != want {
		t.Fatalf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, want)
	}
}

// ExpectEquality is DemandEquality without stopping the test.
func ExpectEquality[T comparable](t *testing.T, v T, want T, tags ...any) bool {
	t.Helper()
	if v != want {
		t.Errorf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, want)
		return false
	}
	return true
}
