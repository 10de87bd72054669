package mapper

import (
	"nespkg.dev/coreboard/console/bus"
	"nespkg.dev/coreboard/internal/rom"
)

// axrom implements mapper 7 (AxROM): switchable 32KB PRG bank, 8KB CHR
// RAM, and single-screen mirroring selected by bit 4 of the bank write --
// the mapper family that owns PPU's MirrorSingleScreen0/1 modes.
type axrom struct {
	prg      []byte
	chr      []byte
	banks    int
	bank     int
	mirror   bus.MirrorMode
}

func newAxROM(img *rom.Image) *axrom {
	chr, _ := chrMemory(img)
	return &axrom{prg: img.PRG, chr: chr, banks: len(img.PRG) / 0x8000, mirror: bus.MirrorSingleScreen0}
}

func (m *axrom) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return 0
	}
	return m.prg[m.bank*0x8000+int(addr-0x8000)]
}

func (m *axrom) WritePRG(addr uint16, v byte) {
	if addr < 0x8000 {
		return
	}
	if m.banks > 0 {
		m.bank = int(v&0x07) % m.banks
	}
	if v&0x10 != 0 {
		m.mirror = bus.MirrorSingleScreen1
	} else {
		m.mirror = bus.MirrorSingleScreen0
	}
}

func (m *axrom) ReadCHR(addr uint16) byte     { return m.chr[addr] }
func (m *axrom) WriteCHR(addr uint16, v byte) { m.chr[addr] = v }
func (m *axrom) Mirroring() bus.MirrorMode    { return m.mirror }
func (m *axrom) IRQPending() bool             { return false }
func (m *axrom) ClearIRQ()                    {}

// colorDreams implements mapper 11 (Color Dreams): same PRG switching
// idea as AxROM but fixed mirroring from the header and a switchable
// 8KB CHR ROM bank in the high nibble of the same write.
type colorDreams struct {
	prg      []byte
	chr      []byte
	prgBanks int
	prgBank  int
	chrBanks int
	chrBank  int
	mirror   bus.MirrorMode
}

func newColorDreams(img *rom.Image) *colorDreams {
	chr, _ := chrMemory(img)
	chrBanks := len(chr) / 0x2000
	if chrBanks == 0 {
		chrBanks = 1
	}
	return &colorDreams{
		prg: img.PRG, chr: chr, mirror: img.Mirroring,
		prgBanks: len(img.PRG) / 0x8000, chrBanks: chrBanks,
	}
}

func (m *colorDreams) ReadPRG(addr uint16) byte {
	if addr < 0x8000 {
		return 0
	}
	return m.prg[m.prgBank*0x8000+int(addr-0x8000)]
}

func (m *colorDreams) WritePRG(addr uint16, v byte) {
	if addr < 0x8000 {
		return
	}
	if m.prgBanks > 0 {
		m.prgBank = int(v&0x03) % m.prgBanks
	}
	if m.chrBanks > 0 {
		m.chrBank = int(v>>4) % m.chrBanks
	}
}

func (m *colorDreams) ReadCHR(addr uint16) byte {
	return m.chr[m.chrBank*0x2000+int(addr)]
}
func (m *colorDreams) WriteCHR(addr uint16, v byte) {
	m.chr[m.chrBank*0x2000+int(addr)] = v
}
func (m *colorDreams) Mirroring() bus.MirrorMode { return m.mirror }
func (m *colorDreams) IRQPending() bool          { return false }
func (m *colorDreams) ClearIRQ()                 {}
