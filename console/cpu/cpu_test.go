package cpu

import "testing"

type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(addr uint16) byte     { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, v byte) { b.mem[addr] = v }

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	c := New(bus)
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80
	c.Reset()
	return c, bus
}

func TestReset(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != 0x8000 {
		t.Fatalf("PC after reset = 0x%04x, want 0x8000", c.PC)
	}
	if c.S != 0xFD {
		t.Fatalf("S after reset = 0x%02x, want 0xFD", c.S)
	}
	if !c.P.I {
		t.Fatalf("I flag after reset = false, want true")
	}
}

func TestLDAImmediateSetsZeroAndNegative(t *testing.T) {
	cases := []struct {
		name     string
		value    byte
		wantZ    bool
		wantN    bool
	}{
		{"positive", 0x42, false, false},
		{"zero", 0x00, true, false},
		{"negative", 0x80, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, bus := newTestCPU()
			bus.mem[0x8000] = 0xA9 // LDA #imm
			bus.mem[0x8001] = tc.value
			cycles, err := c.Step()
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if cycles != 2 {
				t.Fatalf("cycles = %d, want 2", cycles)
			}
			if c.A != tc.value {
				t.Fatalf("A = 0x%02x, want 0x%02x", c.A, tc.value)
			}
			if c.P.Z != tc.wantZ || c.P.N != tc.wantN {
				t.Fatalf("Z=%v N=%v, want Z=%v N=%v", c.P.Z, c.P.N, tc.wantZ, tc.wantN)
			}
		})
	}
}

func TestBranchTakenAddsCycleAndPageCrossAddsAnother(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xF0 // BEQ
	bus.mem[0x8001] = 0x7F // forward 127: 0x8002+0x7F = 0x8081, same page as 0x80xx -> no cross
	c.P.Z = true
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 3 {
		t.Fatalf("cycles = %d, want 3 (branch taken, no page cross)", cycles)
	}
	if c.PC != 0x8081 {
		t.Fatalf("PC = 0x%04x, want 0x8081", c.PC)
	}

	c, bus = newTestCPU()
	bus.mem[0x8000] = 0xF0 // BEQ
	bus.mem[0x8001] = 0x80 // back 128: 0x8002-0x80 = 0x7F82, crosses into page 0x7F
	c.P.Z = true
	cycles, err = c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 4 {
		t.Fatalf("cycles = %d, want 4 (branch taken, page cross)", cycles)
	}
	if c.PC != 0x7F82 {
		t.Fatalf("PC = 0x%04x, want 0x7F82", c.PC)
	}
}

func TestInvalidOpcodeCrashesAndLatches(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x02 // unmapped/KIL-style slot in this table
	_, err := c.Step()
	if err == nil {
		t.Fatalf("Step: want InvalidOpcodeError, got nil")
	}
	ioe, ok := err.(*InvalidOpcodeError)
	if !ok {
		t.Fatalf("err type = %T, want *InvalidOpcodeError", err)
	}
	if ioe.Opcode != 0x02 {
		t.Fatalf("Opcode = 0x%02x, want 0x02", ioe.Opcode)
	}
	if !c.Crashed() {
		t.Fatalf("Crashed() = false, want true after invalid opcode")
	}
}

func TestIRQIgnoredWhenInterruptDisableSet(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xEA // NOP
	c.P.I = true
	c.RequestIRQ(InterruptIRQ, true)
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 2 {
		t.Fatalf("cycles = %d, want 2 (NOP executed, IRQ deferred)", cycles)
	}
	if c.PC != 0x8001 {
		t.Fatalf("PC = 0x%04x, want 0x8001 (IRQ must not have been dispatched)", c.PC)
	}
}

func TestJSRLeavesDataBusHoldingFetchedTargetHighByte(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x20 // JSR
	bus.mem[0x8001] = 0x34
	bus.mem[0x8002] = 0x12 // target $1234, high byte $12 is the last real fetch
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 6 {
		t.Fatalf("cycles = %d, want 6", cycles)
	}
	if c.PC != 0x1234 {
		t.Fatalf("PC = 0x%04x, want 0x1234", c.PC)
	}
	if c.DataBus != 0x12 {
		t.Fatalf("DataBus = 0x%02x, want 0x12 (the JSR target high byte)", c.DataBus)
	}
}

func TestNMIDispatchPushesPCAndStatus(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xFFFA] = 0x34
	bus.mem[0xFFFB] = 0x12
	c.RequestIRQ(InterruptNMI, true)
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 7 {
		t.Fatalf("cycles = %d, want 7", cycles)
	}
	if c.PC != 0x1234 {
		t.Fatalf("PC = 0x%04x, want 0x1234", c.PC)
	}
	if !c.P.I {
		t.Fatalf("I flag after NMI dispatch = false, want true")
	}
}
