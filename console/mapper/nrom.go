package mapper

import (
	"nespkg.dev/coreboard/console/bus"
	"nespkg.dev/coreboard/internal/rom"
)

// nrom implements mapper 0 (NROM): no bank switching at all, grounded
// directly on the teacher's nes/mapper0.go, generalized to also serve
// CHR RAM and PRG RAM instead of erroring on those accesses.
type nrom struct {
	prg     []byte
	chr     []byte
	ram     []byte
	mirror  bus.MirrorMode
}

func newNROM(img *rom.Image) *nrom {
	chr, _ := chrMemory(img)
	return &nrom{prg: img.PRG, chr: chr, ram: prgRAM(img), mirror: img.Mirroring}
}

func (m *nrom) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return m.ram[addr&0x1FFF]
	}
	return m.prg[int(addr-0x8000)%len(m.prg)]
}

func (m *nrom) WritePRG(addr uint16, v byte) {
	if addr < 0x8000 {
		m.ram[addr&0x1FFF] = v
	}
}

func (m *nrom) ReadCHR(addr uint16) byte   { return m.chr[addr] }
func (m *nrom) WriteCHR(addr uint16, v byte) { m.chr[addr] = v }
func (m *nrom) Mirroring() bus.MirrorMode  { return m.mirror }
func (m *nrom) IRQPending() bool           { return false }
func (m *nrom) ClearIRQ()                  {}
