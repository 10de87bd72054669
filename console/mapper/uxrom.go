package mapper

import (
	"nespkg.dev/coreboard/console/bus"
	"nespkg.dev/coreboard/internal/rom"
)

// uxrom implements mapper 2 (UxROM): a single 16KB switchable bank at
// $8000-$BFFF and the last 16KB bank fixed at $C000-$FFFF. Grounded on
// the teacher's nes/mapper2.go, extended with PRG RAM.
type uxrom struct {
	prg    []byte
	chr    []byte
	ram    []byte
	mirror bus.MirrorMode
	banks  int
	bank   int
}

func newUxROM(img *rom.Image) *uxrom {
	chr, _ := chrMemory(img)
	return &uxrom{
		prg:    img.PRG,
		chr:    chr,
		ram:    prgRAM(img),
		mirror: img.Mirroring,
		banks:  len(img.PRG) / 0x4000,
	}
}

func (m *uxrom) ReadPRG(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return m.ram[addr&0x1FFF]
	case addr < 0xC000:
		return m.prg[m.bank*0x4000+int(addr-0x8000)]
	default:
		return m.prg[(m.banks-1)*0x4000+int(addr-0xC000)]
	}
}

func (m *uxrom) WritePRG(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		m.ram[addr&0x1FFF] = v
	default:
		if m.banks > 0 {
			m.bank = int(v) % m.banks
		}
	}
}

func (m *uxrom) ReadCHR(addr uint16) byte     { return m.chr[addr] }
func (m *uxrom) WriteCHR(addr uint16, v byte) { m.chr[addr] = v }
func (m *uxrom) Mirroring() bus.MirrorMode    { return m.mirror }
func (m *uxrom) IRQPending() bool             { return false }
func (m *uxrom) ClearIRQ()                    {}

// unrom180 (mapper 180) is UxROM with the fixed/switchable banks swapped:
// $8000-$BFFF is fixed to the FIRST bank and $C000-$FFFF switches.
type unrom180 struct {
	uxrom
}

func newUNROM180(img *rom.Image) *unrom180 {
	return &unrom180{uxrom: *newUxROM(img)}
}

func (m *unrom180) ReadPRG(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return m.ram[addr&0x1FFF]
	case addr < 0xC000:
		return m.prg[int(addr-0x8000)]
	default:
		return m.prg[m.bank*0x4000+int(addr-0xC000)]
	}
}
