// Package bus holds the small pieces of memory-mapping logic shared by the
// CPU, PPU and mapper packages: the nametable mirroring table and the
// open-bus byte-tracking helper. Keeping this in one place means the CPU
// and PPU decode mirrored addresses the same way the hardware does, in
// constant time, without each package re-deriving the arithmetic.
package bus

// MirrorMode enumerates the nametable mirroring modes a mapper can select.
// MMC1, MMC3 and AxROM mappers switch between these at runtime; the PPU
// then rebuilds its nametable mirror table (see BuildNameTableMirror).
type MirrorMode int

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// OpenBus tracks the last byte driven on a data bus. Reads of unmapped or
// write-only registers return this value (spec.md GLOSSARY: Open bus).
type OpenBus struct {
	Value byte
}

// Drive records v as the most recently driven byte and returns it, so
// callers can write `return bus.Drive(v)` at every real bus cycle.
func (b *OpenBus) Drive(v byte) byte {
	b.Value = v
	return v
}

// nameTableSize is the size in bytes of one logical nametable + its
// attribute table.
const nameTableSize = 0x400

// BuildNameTableMirror fills a 4096-entry table mapping PPU nametable
// addresses $2000-$2FFF onto offsets into the physical nametable RAM
// (the first 2KiB for the two-table and single-screen modes, 4KiB for
// four-screen), according to the cartridge's mirroring mode. $3000-$3EFF mirrors of this
// range are folded down by the PPU before indexing (subtract $1000).
func BuildNameTableMirror(mode MirrorMode) [0x1000]uint16 {
	var table [0x1000]uint16
	for n := 0; n < 0x1000; n++ {
		logical := n / nameTableSize
		offset := n % nameTableSize
		table[n] = uint16(physicalNameTable(mode, logical)*nameTableSize + offset)
	}
	return table
}

func physicalNameTable(mode MirrorMode, logical int) int {
	switch mode {
	case MirrorHorizontal:
		return logical / 2 // 0,0,1,1
	case MirrorVertical:
		return logical % 2 // 0,1,0,1
	case MirrorSingleScreen0:
		return 0
	case MirrorSingleScreen1:
		return 1
	case MirrorFourScreen:
		return logical % 4
	default:
		return logical % 2
	}
}

// MirrorPalette folds the 32-byte palette RAM's write-through aliases:
// $3F10/$14/$18/$1C mirror $3F00/$04/$08/$0C on both read and write
// (spec.md invariant 4).
func MirrorPalette(addr uint16) uint16 {
	a := (addr - 0x3F00) % 0x20
	switch a {
	case 0x10, 0x14, 0x18, 0x1C:
		return a - 0x10
	default:
		return a
	}
}
