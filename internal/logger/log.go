package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single log event. Identical consecutive events are folded into
// one Entry with a repeat count.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e Entry) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s: %s", e.Tag, e.Detail)
	if e.repeated > 0 {
		fmt.Fprintf(&s, " (repeat x%d)", e.repeated+1)
	}
	s.WriteString("\n")
	return s.String()
}

type logger struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

func newLogger(maxEntries int) *logger {
	return &logger{maxEntries: maxEntries}
}

func (l *logger) log(tag, detail string) {
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	l.mu.Lock()
	defer l.mu.Unlock()

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		if len(l.entries) > l.maxEntries {
			l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.maxEntries:]...)
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}
}

func (l *logger) logf(tag, format string, args ...any) {
	l.log(tag, fmt.Sprintf(format, args...))
}

func (l *logger) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

func (l *logger) setEcho(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

func (l *logger) write(w io.Writer) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return false
	}
	for _, e := range l.entries {
		io.WriteString(w, e.String())
	}
	return true
}

func (l *logger) tail(w io.Writer, number int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if number > len(l.entries) {
		number = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(w, e.String())
	}
}

func (l *logger) copyEntries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := make([]Entry, len(l.entries))
	copy(c, l.entries)
	return c
}
