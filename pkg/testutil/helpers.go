// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Close reports whether got and want differ by no more than tolerance.
func Close(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}

// RelativelyClose reports whether got and want differ by no more than
// relTolerance of the larger magnitude.
func RelativelyClose(got, want, relTolerance float64) bool {
	scale := math.Max(math.Abs(got), math.Abs(want))
	if scale == 0 {
		return true
	}
	return math.Abs(got-want)/scale <= relTolerance
}

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t testing.TB, name string, got, want, tolerance float64) {
	t.Helper()
	if !Close(got, want, tolerance) {
		t.Errorf("%s = %.6f, expected %.6f (diff: %.6f, tolerance %.6f)",
			name, got, want, math.Abs(got-want), tolerance)
	}
}

// AssertRelativelyClose fails the test when got and want differ by more than
// a relative tolerance of their magnitude.
func AssertRelativelyClose(t testing.TB, name string, got, want, relTolerance float64) {
	t.Helper()
	if !RelativelyClose(got, want, relTolerance) {
		t.Errorf("%s = %.12f, expected %.12f (relative tolerance %g)", name, got, want, relTolerance)
	}
}

// WriteFile writes contents to name under dir and returns the full path.
func WriteFile(t testing.TB, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
