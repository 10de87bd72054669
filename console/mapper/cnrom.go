package mapper

import (
	"nespkg.dev/coreboard/console/bus"
	"nespkg.dev/coreboard/internal/rom"
)

// cnrom implements mapper 3 (CNROM): fixed PRG, switchable 8KB CHR bank.
type cnrom struct {
	prg     []byte
	chr     []byte
	ram     []byte
	mirror  bus.MirrorMode
	chrBank int
	chrBanks int
}

func newCNROM(img *rom.Image) *cnrom {
	chr, _ := chrMemory(img)
	banks := len(chr) / 0x2000
	if banks == 0 {
		banks = 1
	}
	return &cnrom{prg: img.PRG, chr: chr, ram: prgRAM(img), mirror: img.Mirroring, chrBanks: banks}
}

func (m *cnrom) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return m.ram[addr&0x1FFF]
	}
	return m.prg[int(addr-0x8000)%len(m.prg)]
}

func (m *cnrom) WritePRG(addr uint16, v byte) {
	if addr < 0x8000 {
		m.ram[addr&0x1FFF] = v
		return
	}
	m.chrBank = int(v) % m.chrBanks
}

func (m *cnrom) ReadCHR(addr uint16) byte {
	return m.chr[m.chrBank*0x2000+int(addr)]
}

func (m *cnrom) WriteCHR(addr uint16, v byte) {
	m.chr[m.chrBank*0x2000+int(addr)] = v
}

func (m *cnrom) Mirroring() bus.MirrorMode { return m.mirror }
func (m *cnrom) IRQPending() bool          { return false }
func (m *cnrom) ClearIRQ()                 {}
