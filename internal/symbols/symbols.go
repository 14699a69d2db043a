// Package symbols reads RGBDS .sym files so that addresses in traces can be
// shown by label.
//
// Each non-empty line has the form
//
//	BB:AAAA Label
//
// where BB is the ROM bank and AAAA the address, both hex. Text after a ';'
// is a comment. Banks are kept per entry but lookups are by address only;
// when labels in different banks share an address the first one read wins.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Symbol is one label.
type Symbol struct {
	Bank  int
	Addr  uint16
	Label string
}

// Table maps addresses to labels.
type Table struct {
	byAddr  map[uint16]Symbol
	byLabel map[string]uint16

	// sorted keys of byAddr
	idx []uint16
}

func newTable() *Table {
	return &Table{byAddr: make(map[uint16]Symbol), byLabel: make(map[string]uint16)}
}

func (t *Table) add(s Symbol) {
	if _, ok := t.byLabel[s.Label]; !ok {
		t.byLabel[s.Label] = s.Addr
	}
	if _, ok := t.byAddr[s.Addr]; ok {
		return
	}
	t.byAddr[s.Addr] = s
	t.idx = append(t.idx, s.Addr)
}

func (t *Table) String() string {
	s := strings.Builder{}
	for _, a := range t.idx {
		sym := t.byAddr[a]
		fmt.Fprintf(&s, "%02x:%04x %s\n", sym.Bank, sym.Addr, sym.Label)
	}
	return s.String()
}

// Len is the number of distinct addresses in the table.
func (t *Table) Len() int { return len(t.idx) }

// Load reads a symbol file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads symbols from r. Malformed lines are an error naming the line.
func Parse(r io.Reader) (*Table, error) {
	t := newTable()
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("symbols: line %d: want \"BB:AAAA label\", got %q", n, line)
		}
		sym, err := parseEntry(fields[0], fields[1])
		if err != nil {
			return nil, fmt.Errorf("symbols: line %d: %w", n, err)
		}
		t.add(sym)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	sort.Slice(t.idx, func(i, j int) bool { return t.idx[i] < t.idx[j] })
	return t, nil
}

func parseEntry(loc, label string) (Symbol, error) {
	bankStr, addrStr, ok := strings.Cut(loc, ":")
	if !ok {
		return Symbol{}, fmt.Errorf("missing bank separator in %q", loc)
	}
	bank, err := strconv.ParseUint(bankStr, 16, 16)
	if err != nil {
		return Symbol{}, fmt.Errorf("bank %q: %w", bankStr, err)
	}
	addr, err := strconv.ParseUint(addrStr, 16, 16)
	if err != nil {
		return Symbol{}, fmt.Errorf("address %q: %w", addrStr, err)
	}
	return Symbol{Bank: int(bank), Addr: uint16(addr), Label: label}, nil
}

// Lookup returns the label at exactly addr.
func (t *Table) Lookup(addr uint16) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.byAddr[addr]
	return s.Label, ok
}

// Addr returns the address of label. A label defined in several banks
// resolves to its first definition.
func (t *Table) Addr(label string) (uint16, bool) {
	if t == nil {
		return 0, false
	}
	a, ok := t.byLabel[label]
	return a, ok
}

// Nearest returns the closest label at or below addr and the distance from
// it.
func (t *Table) Nearest(addr uint16) (label string, offset uint16, ok bool) {
	if t == nil || len(t.idx) == 0 {
		return "", 0, false
	}
	i := sort.Search(len(t.idx), func(i int) bool { return t.idx[i] > addr })
	if i == 0 {
		return "", 0, false
	}
	a := t.idx[i-1]
	return t.byAddr[a].Label, addr - a, true
}

// Format renders addr as "label" or "label+N", falling back to hex.
func (t *Table) Format(addr uint16) string {
	label, off, ok := t.Nearest(addr)
	switch {
	case !ok:
		return fmt.Sprintf("%04X", addr)
	case off == 0:
		return label
	}
	return fmt.Sprintf("%s+%d", label, off)
}
