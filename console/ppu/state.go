package ppu

// State is the exported snapshot of all PPU state named in spec.md §3
// ("PPU state"), used by console.Console's save-state round trip. The
// nametable mirror table and tile-fetch pipeline latches are rebuilt
// from VRAM/OAM and the mapper's current mirroring rather than saved,
// matching the round-trip law's "modulo transient rendering scratch
// buffers" carve-out.
type State struct {
	NameTableRAM [0x1000]byte
	PaletteRAM   [32]byte

	OAMAddr      byte
	PrimaryOAM   [256]byte

	SpriteOverflow bool
	SpriteZeroHit  bool

	V, T uint16
	X    byte
	W    bool

	ReadBuffer byte

	NMIOccurred bool
	NMIOutput   bool
	NMIDelay    int
	NMIPrevious bool
	NMIPending  bool

	NameTableSelect byte
	VRAMIncrement32 bool
	SpriteTableHigh bool
	BGTableHigh     bool
	SpriteSize16    bool

	Grayscale          bool
	ShowLeftBackground bool
	ShowLeftSprite     bool
	ShowBackground     bool
	ShowSprite         bool
	EmphasizeRed       bool
	EmphasizeGreen     bool
	EmphasizeBlue      bool

	OpenBusValue byte
	DecayTimer   int

	Cycle    int
	Scanline int
}

// SaveState captures the PPU's full register/VRAM/OAM state.
func (p *PPU) SaveState() State {
	return State{
		NameTableRAM: p.nameTableRAM, PaletteRAM: p.paletteRAM,
		OAMAddr: p.oamAddr, PrimaryOAM: p.primaryOAM,
		SpriteOverflow: p.spriteOverflow, SpriteZeroHit: p.spriteZeroHit,
		V: p.v, T: p.t, X: p.x, W: p.w,
		ReadBuffer:  p.readBuffer,
		NMIOccurred: p.nmiOccurred, NMIOutput: p.nmiOutput,
		NMIDelay: p.nmiDelay, NMIPrevious: p.nmiPrevious, NMIPending: p.nmiPending,
		NameTableSelect: p.nameTableSelect, VRAMIncrement32: p.vramIncrement32,
		SpriteTableHigh: p.spriteTableHigh, BGTableHigh: p.bgTableHigh, SpriteSize16: p.spriteSize16,
		Grayscale: p.grayscale, ShowLeftBackground: p.showLeftBackground, ShowLeftSprite: p.showLeftSprite,
		ShowBackground: p.showBackground, ShowSprite: p.showSprite,
		EmphasizeRed: p.emphasizeRed, EmphasizeGreen: p.emphasizeGreen, EmphasizeBlue: p.emphasizeBlue,
		OpenBusValue: p.openBus.Value, DecayTimer: p.decayTimer,
		Cycle: p.cycle, Scanline: p.scanline,
	}
}

// RestoreState applies a previously captured State. Callers should
// follow this with SetMirrorMode(mapper.Mirroring()) since the mirror
// table itself is not part of the snapshot.
func (p *PPU) RestoreState(s State) {
	p.nameTableRAM, p.paletteRAM = s.NameTableRAM, s.PaletteRAM
	p.oamAddr, p.primaryOAM = s.OAMAddr, s.PrimaryOAM
	p.spriteOverflow, p.spriteZeroHit = s.SpriteOverflow, s.SpriteZeroHit
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.readBuffer = s.ReadBuffer
	p.nmiOccurred, p.nmiOutput = s.NMIOccurred, s.NMIOutput
	p.nmiDelay, p.nmiPrevious, p.nmiPending = s.NMIDelay, s.NMIPrevious, s.NMIPending
	p.nameTableSelect, p.vramIncrement32 = s.NameTableSelect, s.VRAMIncrement32
	p.spriteTableHigh, p.bgTableHigh, p.spriteSize16 = s.SpriteTableHigh, s.BGTableHigh, s.SpriteSize16
	p.grayscale, p.showLeftBackground, p.showLeftSprite = s.Grayscale, s.ShowLeftBackground, s.ShowLeftSprite
	p.showBackground, p.showSprite = s.ShowBackground, s.ShowSprite
	p.emphasizeRed, p.emphasizeGreen, p.emphasizeBlue = s.EmphasizeRed, s.EmphasizeGreen, s.EmphasizeBlue
	p.openBus.Value, p.decayTimer = s.OpenBusValue, s.DecayTimer
	p.cycle, p.scanline = s.Cycle, s.Scanline
}
