// Package ppu implements the NES Picture Processing Unit: background and
// sprite rendering, the loopy scroll registers, sprite-0 hit, VBlank/NMI
// timing and the palette-to-RGB conversion. It is driven one dot at a time
// by console.Console, which also owns the catch-up calls from the CPU bus
// (spec.md §4.1/§4.2).
//
// Grounded on the teacher's nes/ppu.go and nes/ppubus.go dot-stepping
// renderer, generalized to 8x16 sprites, a palette-emphasis-aware RGB
// table, an open-bus latch (held until the next drive, with no time-based
// decay) and a pluggable CHR bus so mappers can
// supply either CHR ROM or CHR RAM.
package ppu

import (
	"fmt"

	"nespkg.dev/coreboard/console/bus"
)

const (
	Width  = 256
	Height = 240
)

// sentinelError lets ErrInvalidVRAM participate in errors.Is after
// %w-wrapping, matching the pattern used across the other packages.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// ErrInvalidVRAM is returned by PeekVRAM for an address outside the
// PPU's $0000-$3FFF bus range (spec.md §7 error kind 3: a request that
// indicates a bug in the caller, not in the emulated hardware -- real
// PPU register/VRAM accesses are always masked into range before they
// reach vramRead/vramWrite, so this only surfaces through PeekVRAM's
// unmasked debug path).
const ErrInvalidVRAM = sentinelError("invalid VRAM address")

// CHRBus is the narrow interface the PPU needs from the cartridge mapper
// for pattern-table access ($0000-$1FFF). Mappers may back this with CHR
// ROM, CHR RAM, or bank-switched combinations of both.
type CHRBus interface {
	ReadCHR(addr uint16) byte
	WriteCHR(addr uint16, v byte)
}

// rgb is a packed 24-bit display color.
type rgb struct{ R, G, B byte }

// basePalette is the NES's 64-entry master palette (NTSC-ish values,
// matching the teacher's table) before emphasis-bit attenuation.
var basePalette = [64]rgb{
	{0x6D, 0x6D, 0x6D}, {0x00, 0x24, 0x92}, {0x00, 0x00, 0xDB}, {0x6D, 0x49, 0xDB},
	{0x92, 0x00, 0x6D}, {0xB6, 0x00, 0x6D}, {0xB6, 0x24, 0x00}, {0x92, 0x49, 0x00},
	{0x6D, 0x49, 0x00}, {0x24, 0x49, 0x00}, {0x00, 0x6D, 0x24}, {0x00, 0x92, 0x00},
	{0x00, 0x49, 0x49}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xB6, 0xB6, 0xB6}, {0x00, 0x6D, 0xDB}, {0x00, 0x49, 0xFF}, {0x92, 0x00, 0xFF},
	{0xB6, 0x00, 0xFF}, {0xFF, 0x00, 0x92}, {0xFF, 0x00, 0x00}, {0xDB, 0x6D, 0x00},
	{0x92, 0x6D, 0x00}, {0x24, 0x92, 0x00}, {0x00, 0x92, 0x00}, {0x00, 0xB6, 0x6D},
	{0x00, 0x92, 0x92}, {0x24, 0x24, 0x24}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFF, 0xFF}, {0x6D, 0xB6, 0xFF}, {0x92, 0x92, 0xFF}, {0xDB, 0x6D, 0xFF},
	{0xFF, 0x00, 0xFF}, {0xFF, 0x6D, 0xFF}, {0xFF, 0x92, 0x00}, {0xFF, 0xB6, 0x00},
	{0xDB, 0xDB, 0x00}, {0x6D, 0xDB, 0x00}, {0x00, 0xFF, 0x00}, {0x49, 0xFF, 0xDB},
	{0x00, 0xFF, 0xFF}, {0x49, 0x49, 0x49}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
	{0xFF, 0xFF, 0xFF}, {0xB6, 0xDB, 0xFF}, {0xDB, 0xB6, 0xFF}, {0xFF, 0xB6, 0xFF},
	{0xFF, 0x92, 0xFF}, {0xFF, 0xB6, 0xB6}, {0xFF, 0xDB, 0x92}, {0xFF, 0xFF, 0x49},
	{0xFF, 0xFF, 0x6D}, {0xB6, 0xFF, 0x49}, {0x92, 0xFF, 0x6D}, {0x49, 0xFF, 0xDB},
	{0x92, 0xDB, 0xFF}, {0x92, 0x92, 0x92}, {0x00, 0x00, 0x00}, {0x00, 0x00, 0x00},
}

// emphasize attenuates the non-emphasized channels by ~25%, a common
// approximation of the NTSC PPU's color-emphasis behavior.
func emphasize(c rgb, red, green, blue bool) rgb {
	if !red && !green && !blue {
		return c
	}
	scale := func(v byte, keep bool) byte {
		if keep {
			return v
		}
		return byte(uint16(v) * 3 / 4)
	}
	return rgb{scale(c.R, red), scale(c.G, green), scale(c.B, blue)}
}

type oamSprite struct {
	index     int
	y         int
	tile      byte
	attribute byte
	x         int
}

func (s oamSprite) palette() byte    { return s.attribute & 3 }
func (s oamSprite) priority() byte   { return (s.attribute >> 5) & 1 }
func (s oamSprite) flipH() bool      { return (s.attribute>>6)&1 == 1 }
func (s oamSprite) flipV() bool      { return (s.attribute>>7)&1 == 1 }
func (s oamSprite) paletteAddr(v byte) uint16 {
	return 0x3F10 + uint16(s.palette())*4 + uint16(v)
}

// PPU is the Picture Processing Unit. Registers and scroll state follow
// spec.md §3's "PPU state" and the loopy v/t/x/w naming convention.
type PPU struct {
	CHR CHRBus

	nameTableMirror [0x1000]uint16
	nameTableRAM    [0x1000]byte
	paletteRAM      [32]byte

	Picture [Height][Width]rgb

	oamAddr      byte
	primaryOAM   [256]byte
	secondaryOAM [8]oamSprite
	secondaryNum int

	spriteOverflow bool
	spriteZeroHit  bool

	v, t uint16
	x    byte
	w    bool

	readBuffer byte

	nmiOccurred bool
	nmiOutput   bool
	// nmiDelay counts down the dots between the combined nmiOutput/
	// nmiOccurred signal rising and the NMI actually firing; both flags
	// are rechecked when the countdown reaches zero, not when it was
	// armed (spec.md: NMI fires "only if $2000 bit 7 is set at the
	// instant the countdown expires"), so toggling $2000 bit 7 mid-
	// countdown can cancel or retroactively arm that frame's NMI.
	nmiDelay    int
	nmiPrevious bool // last combined signal value, so nmiChange only arms on a rising edge
	nmiPending  bool // latched true for one TakeNMI() poll once nmiDelay expires with the signal still high

	nameTableSelect byte
	vramIncrement32 bool
	spriteTableHigh bool
	bgTableHigh     bool
	spriteSize16    bool

	grayscale          bool
	showLeftBackground bool
	showLeftSprite     bool
	showBackground     bool
	showSprite         bool
	emphasizeRed       bool
	emphasizeGreen     bool
	emphasizeBlue      bool

	openBus     bus.OpenBus
	decayTimer  int // saved and restored only; nothing ages it, and openBus.Value never decays

	nameTableByte      byte
	attributeByte      byte
	lowTileByte        byte
	highTileByte       byte
	tileDataBuffer     [6]byte

	cycle    int
	scanline int

	// ZapperProbe, when set, reports where the Zapper is aimed. Nothing in
	// this module sets or calls it: console.Console's $4017 read calls
	// IsPixelBright directly with the aim point it tracks itself.
	ZapperProbe func() (x, y int, aimed bool)
}

// New creates a PPU wired to a pattern-table bus and a mirroring mode.
func New(chr CHRBus, mode bus.MirrorMode) *PPU {
	p := &PPU{CHR: chr}
	p.SetMirrorMode(mode)
	return p
}

// SetMirrorMode rebuilds the nametable mirror table. console.Console calls
// it after every CPU write to $8000-$FFFF, so mapper-controlled mirroring
// (MMC1, MMC3, AxROM) takes effect as soon as the mapper switches modes.
func (p *PPU) SetMirrorMode(mode bus.MirrorMode) {
	p.nameTableMirror = bus.BuildNameTableMirror(mode)
}

// Cycle reports the current dot within the scanline, for debuggers.
func (p *PPU) Cycle() int { return p.cycle }

// Scanline reports the current scanline, for debuggers.
func (p *PPU) Scanline() int { return p.scanline }

// Reset moves the PPU to dot 0 of scanline 240, the post-render line just
// before VBlank begins, matching the teacher's documented
// (admittedly approximate) power-on state.
func (p *PPU) Reset() {
	p.cycle = 0
	p.scanline = 240
}

// TakeNMI reports whether an NMI should be asserted to the CPU this
// instant, consuming the pending latch so a single VBlank only raises
// NMI once even if polled on every CPU step.
func (p *PPU) TakeNMI() bool {
	if p.nmiPending {
		p.nmiPending = false
		return true
	}
	return false
}

// nmiChange re-derives the combined nmiOutput/nmiOccurred signal and arms
// a fresh nmiDelay countdown on its rising edge. Called after every write
// that can change either half of the signal ($2000, $2002's read-clear,
// and VBlank start/end).
func (p *PPU) nmiChange() {
	nmi := p.nmiOutput && p.nmiOccurred
	if nmi && !p.nmiPrevious {
		p.nmiDelay = 2
	}
	p.nmiPrevious = nmi
}

func (p *PPU) nameTableRead(addr uint16) byte {
	return p.nameTableRAM[p.nameTableMirror[addr&0x0FFF]]
}

func (p *PPU) nameTableWrite(addr uint16, v byte) {
	p.nameTableRAM[p.nameTableMirror[addr&0x0FFF]] = v
}

func (p *PPU) vramRead(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return p.CHR.ReadCHR(addr)
	case addr < 0x3F00:
		return p.nameTableRead((addr - 0x1000) % 0x1000)
	default:
		return p.paletteRAM[bus.MirrorPalette(addr)]
	}
}

// PeekVRAM reads the PPU's VRAM/palette/CHR address space without the
// side effects a real $2007 access has (no buffered-read latch update,
// no address-increment), for a debugger front end to inspect memory
// between frames. addr must be in $0000-$3FFF.
func (p *PPU) PeekVRAM(addr uint16) (byte, error) {
	if addr > 0x3FFF {
		return 0, fmt.Errorf("ppu: peek $%04X: %w", addr, ErrInvalidVRAM)
	}
	return p.vramRead(addr), nil
}

func (p *PPU) vramWrite(addr uint16, v byte) {
	switch {
	case addr < 0x2000:
		p.CHR.WriteCHR(addr, v)
	case addr < 0x3F00:
		p.nameTableWrite((addr-0x1000)%0x1000, v)
	default:
		p.paletteRAM[bus.MirrorPalette(addr)] = v
	}
}

// ReadRegister services a CPU read of $2000-$2007 (register%8 picks the
// slot, so console.Console passes any address in the mirrored $2000-$3FFF
// range unchanged).
func (p *PPU) ReadRegister(reg int) byte {
	switch reg % 8 {
	case 2:
		return p.openBus.Drive(p.readStatus())
	case 4:
		return p.openBus.Drive(p.primaryOAM[p.oamAddr])
	case 7:
		return p.openBus.Drive(p.readData())
	default:
		return p.openBus.Value // write-only registers return open bus
	}
}

// WriteRegister services a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(reg int, v byte) {
	p.openBus.Drive(v)
	switch reg % 8 {
	case 0:
		p.writeCtrl(v)
	case 1:
		p.writeMask(v)
	case 3:
		p.oamAddr = v
	case 4:
		p.primaryOAM[p.oamAddr] = v
		p.oamAddr++
	case 5:
		p.writeScroll(v)
	case 6:
		p.writeAddr(v)
	case 7:
		p.writeData(v)
	}
}

// WriteOAMDMA copies a 256-byte page into OAM, called by console.Console
// when the CPU writes $4014. The CPU itself is stalled by the caller.
func (p *PPU) WriteOAMDMA(page [256]byte) {
	for i := 0; i < 256; i++ {
		p.primaryOAM[byte(int(p.oamAddr)+i)] = page[i]
	}
}

func (p *PPU) writeCtrl(v byte) {
	p.nameTableSelect = v & 3
	p.vramIncrement32 = v&(1<<2) != 0
	p.spriteTableHigh = v&(1<<3) != 0
	p.bgTableHigh = v&(1<<4) != 0
	p.spriteSize16 = v&(1<<5) != 0
	p.nmiOutput = v&(1<<7) != 0
	p.t = (p.t & 0xF3FF) | (uint16(v)&0x03)<<10
	p.nmiChange()
}

func (p *PPU) writeMask(v byte) {
	p.grayscale = v&1 != 0
	p.showLeftBackground = v&(1<<1) != 0
	p.showLeftSprite = v&(1<<2) != 0
	p.showBackground = v&(1<<3) != 0
	p.showSprite = v&(1<<4) != 0
	p.emphasizeRed = v&(1<<5) != 0
	p.emphasizeGreen = v&(1<<6) != 0
	p.emphasizeBlue = v&(1<<7) != 0
}

func (p *PPU) readStatus() byte {
	var res byte
	if p.spriteOverflow {
		res |= 1 << 5
	}
	if p.spriteZeroHit {
		res |= 1 << 6
	}
	if p.nmiOccurred {
		res |= 1 << 7
	}
	p.nmiOccurred = false
	p.nmiChange()
	p.w = false
	return res
}

func (p *PPU) writeScroll(v byte) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(v)>>3
		p.x = v & 7
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(v)&0x07)<<12
		p.t = (p.t & 0xFC1F) | (uint16(v)&0xF8)<<2
		p.w = false
	}
}

func (p *PPU) writeAddr(v byte) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(v)&0x3F)<<8
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(v)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) writeData(v byte) {
	p.vramWrite(p.v&0x3FFF, v)
	p.advanceAddr()
}

func (p *PPU) readData() byte {
	addr := p.v & 0x3FFF
	data := p.vramRead(addr)
	if addr < 0x3F00 {
		buffered := p.readBuffer
		p.readBuffer = data
		data = buffered
	} else {
		p.readBuffer = p.nameTableRead(addr - 0x1000)
	}
	p.advanceAddr()
	return data
}

func (p *PPU) advanceAddr() {
	if p.vramIncrement32 {
		p.v += 32
	} else {
		p.v++
	}
}
