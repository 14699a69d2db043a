package test

import "testing"

// ExpectSuccess accepts a bool or an error. True and nil are success.
func ExpectSuccess(t *testing.T, v any) bool {
	t.Helper()

	switch v := v.(type) {
	case nil:
		return true
	case bool:
		if !v {
			t.Errorf("expected success (bool)")
			return false
		}
	case error:
		if v != nil {
			t.Errorf("expected success (error: %v)", v)
			return false
		}
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}
	return true
}

// ExpectFailure accepts a bool or an error. False and a non-nil error are
// failure.
func ExpectFailure(t *testing.T, v any) bool {
	t.Helper()

	switch v := v.(type) {
	case nil:
		t.Errorf("expected failure (nil)")
		return false
	case bool:
		if v {
			t.Errorf("expected failure (bool)")
			return false
		}
	case error:
		if v == nil {
			t.Errorf("expected failure (error)")
			return false
		}
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}
	return true
}
