package logger_test

import (
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
	"github.com/FabianRolfMatthiasNoll/gbcore/internal/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()
	var sb strings.Builder

	logger.Write(&sb)
	test.ExpectEquality(t, sb.String(), "")

	logger.Log("test", "this is a test")
	logger.Write(&sb)
	test.ExpectEquality(t, sb.String(), "test: this is a test\n")

	sb.Reset()
	logger.Logf("test2", "value %02X", 0x3C)
	logger.Write(&sb)
	test.ExpectEquality(t, sb.String(), "test: this is a test\ntest2: value 3C\n")

	// asking for too many entries in a Tail() is fine
	sb.Reset()
	logger.Tail(&sb, 100)
	test.ExpectEquality(t, sb.String(), "test: this is a test\ntest2: value 3C\n")

	sb.Reset()
	logger.Tail(&sb, 1)
	test.ExpectEquality(t, sb.String(), "test2: value 3C\n")

	sb.Reset()
	logger.Tail(&sb, 0)
	test.ExpectEquality(t, sb.String(), "")
}

func TestLogger_Repeats(t *testing.T) {
	logger.Clear()
	logger.Log("vm", "same")
	logger.Log("vm", "same")
	logger.Log("vm", "same")

	var sb strings.Builder
	logger.Write(&sb)
	test.ExpectEquality(t, sb.String(), "vm: same (repeat x3)\n")
	test.ExpectEquality(t, len(logger.Entries()), 1)
}

func TestLogger_Bounded(t *testing.T) {
	logger.Clear()
	for i := 0; i < 1000; i++ {
		logger.Logf("n", "%d", i)
	}
	e := logger.Entries()
	test.ExpectEquality(t, len(e), 256)
	test.ExpectEquality(t, e[len(e)-1].Detail, "999")
}

func TestLogger_Echo(t *testing.T) {
	logger.Clear()
	var sb strings.Builder
	logger.SetEcho(&sb)
	defer logger.SetEcho(nil)
	logger.Log("echo", "hello\nworld")
	test.ExpectEquality(t, sb.String(), "echo: helloworld\n")
}
