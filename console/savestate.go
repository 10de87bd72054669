package console

import (
	"encoding/json"
	"fmt"

	"nespkg.dev/coreboard/console/apu"
	"nespkg.dev/coreboard/console/cpu"
	"nespkg.dev/coreboard/console/ppu"
)

// byteArray marshals a byte slice as a plain JSON array of integers
// rather than Go's default base64 string, matching spec.md §6's "typed
// byte arrays round-trip as plain integer sequences".
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// cpuState mirrors cpu.CPU's exported fields, §3's "CPU state" record.
type cpuState struct {
	A, X, Y byte
	S       byte
	PC      uint16
	P       cpu.Flags
	DataBus byte
}

// mmapState is the cartridge/mapper side of the save state: when the
// concrete mapper implements the optional MapperState/RestoreMapperState
// pair (MMC1, MMC3), its internal bank and IRQ registers. PRG RAM and CHR
// RAM contents are not saved, and the other mappers save nothing here.
type mmapState struct {
	Registers byteArray
}

// State is the top-level save-state record: a nested {cpu, ppu, papu,
// mmap} structure of primitives and byte arrays, per spec.md §6.
type State struct {
	CPU  cpuState
	PPU  ppu.State
	APU  apu.State
	Mmap mmapState
	WRAM byteArray
}

type mapperStater interface {
	MapperState() []byte
	RestoreMapperState([]byte)
}

// ToJSON serializes the CPU registers, WRAM, PPU, APU and any mapper
// registers (see mmapState; cartridge RAM is not included). Transient
// rendering scratch (the decoded picture buffer, PPU's tile-fetch
// pipeline latches) is intentionally excluded per spec.md §8's round-trip
// law -- it is rebuilt from VRAM/OAM as rendering resumes.
func (c *Console) ToJSON() ([]byte, error) {
	s := State{
		CPU: cpuState{A: c.cpu.A, X: c.cpu.X, Y: c.cpu.Y, S: c.cpu.S, PC: c.cpu.PC, P: c.cpu.P, DataBus: c.cpu.DataBus},
		PPU: c.ppu.SaveState(),
		APU: c.apu.SaveState(),
		WRAM: append(byteArray(nil), c.wram[:]...),
	}
	if ms, ok := c.mapperRef.(mapperStater); ok {
		s.Mmap.Registers = ms.MapperState()
	}
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON restores a console from a prior ToJSON snapshot. On any
// structural mismatch the console is left unchanged and the error wraps
// ErrInvalidSaveState (spec.md §7 error kind 4).
func (c *Console) FromJSON(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("console: decoding save state: %w", ErrInvalidSaveState)
	}
	if len(s.WRAM) != len(c.wram) {
		return fmt.Errorf("console: WRAM size mismatch (%d want %d): %w", len(s.WRAM), len(c.wram), ErrInvalidSaveState)
	}

	c.cpu.A, c.cpu.X, c.cpu.Y = s.CPU.A, s.CPU.X, s.CPU.Y
	c.cpu.S, c.cpu.PC, c.cpu.P, c.cpu.DataBus = s.CPU.S, s.CPU.PC, s.CPU.P, s.CPU.DataBus
	copy(c.wram[:], s.WRAM)
	c.ppu.RestoreState(s.PPU)
	c.apu.RestoreState(s.APU)
	if ms, ok := c.mapperRef.(mapperStater); ok && len(s.Mmap.Registers) > 0 {
		ms.RestoreMapperState(s.Mmap.Registers)
	}
	c.ppu.SetMirrorMode(c.mapperRef.Mirroring())
	c.crashed = false
	return nil
}
