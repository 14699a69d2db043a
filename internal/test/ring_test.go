package test_test

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/test"
)

func TestRingWriter(t *testing.T) {
	_, err := test.NewRingWriter(0)
	test.ExpectFailure(t, err)

	r, err := test.NewRingWriter(5)
	test.ExpectSuccess(t, err)

	r.Write([]byte("ab"))
	test.ExpectEquality(t, r.String(), "ab")

	r.Write([]byte("cde"))
	test.ExpectEquality(t, r.String(), "abcde")

	r.Write([]byte("fg"))
	test.ExpectEquality(t, r.String(), "cdefg")

	r.Write([]byte("0123456789"))
	test.ExpectEquality(t, r.String(), "56789")

	r.Reset()
	test.ExpectEquality(t, r.String(), "")
}
