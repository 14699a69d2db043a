package bus

// timer is DIV/TIMA/TMA/TAC. TIMA counts falling edges of one divider bit
// ANDed with the enable bit, so DIV and TAC writes can clock it.
type timer struct {
	div    uint16
	tima   byte
	tma    byte
	tac    byte
	reload int // cycles until TIMA is reloaded from TMA, 0 when idle
}

var timerBits = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

func (t *timer) input() bool {
	return t.tac&0x04 != 0 && t.div&timerBits[t.tac&3] != 0
}

func (t *timer) read(addr uint16) byte {
	switch addr {
	case 0xFF04:
		return byte(t.div >> 8)
	case 0xFF05:
		return t.tima
	case 0xFF06:
		return t.tma
	}
	return 0xF8 | t.tac&0x07
}

// write stores a timer register. A write to TIMA while a reload is pending
// cancels the reload.
func (t *timer) write(addr uint16, v byte) {
	before := t.input()
	switch addr {
	case 0xFF04:
		t.div = 0
	case 0xFF05:
		t.tima = v
		t.reload = 0
		return
	case 0xFF06:
		t.tma = v
		return
	case 0xFF07:
		t.tac = v & 0x07
	}
	if before && !t.input() {
		t.increment()
	}
}

func (t *timer) increment() {
	if t.reload > 0 {
		return
	}
	t.tima++
	if t.tima == 0 {
		t.reload = 4
	}
}

// tick advances one T-cycle and reports a timer interrupt.
func (t *timer) tick() (irq bool) {
	if t.reload > 0 {
		t.reload--
		if t.reload == 0 {
			t.tima = t.tma
			irq = true
		}
	}
	before := t.input()
	t.div++
	if before && !t.input() {
		t.increment()
	}
	return irq
}
