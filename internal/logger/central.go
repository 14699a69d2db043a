// Package logger is the emulator's central event log. Entries are tagged,
// bounded in number, and safe to add from any goroutine.
//
// Fatal start-up errors in the command binaries go through the standard log
// package instead; this log is for events that happen while a session runs.
package logger

import "io"

const maxCentral = 256

var central = newLogger(maxCentral)

// Log adds an entry to the central log.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag, format string, args ...any) {
	central.logf(tag, format, args...)
}

// Clear removes every entry.
func Clear() {
	central.clear()
}

// Write copies the whole log to w.
func Write(w io.Writer) {
	central.write(w)
}

// Tail copies the last number entries to w.
func Tail(w io.Writer, number int) {
	central.tail(w, number)
}

// SetEcho copies each new entry to w as it is logged. A nil writer turns
// echoing off.
func SetEcho(w io.Writer) {
	central.setEcho(w)
}

// Entries returns a snapshot of the log.
func Entries() []Entry {
	return central.copyEntries()
}
