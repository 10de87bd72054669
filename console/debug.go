package console

import (
	"fmt"

	"nespkg.dev/coreboard/console/cpu"
)

// Snapshot is a read-only view of CPU/PPU timing state for debuggers and
// other introspection front ends; it never mutates the console.
type Snapshot struct {
	A, X, Y, S byte
	PC         uint16
	P          cpu.Flags
	Cycle      int
	Scanline   int
	Frame      uint64
	Crashed    bool
}

// DebugSnapshot captures the current CPU/PPU state without advancing
// emulation.
func (c *Console) DebugSnapshot() Snapshot {
	return Snapshot{
		A: c.cpu.A, X: c.cpu.X, Y: c.cpu.Y, S: c.cpu.S,
		PC: c.cpu.PC, P: c.cpu.P,
		Cycle: c.ppu.Cycle(), Scanline: c.ppu.Scanline(),
		Frame: c.frames, Crashed: c.crashed,
	}
}

// PeekWRAM reads the 2KiB internal work RAM without going through the
// CPU bus's mirroring/side effects, for a debugger's memory view.
func (c *Console) PeekWRAM(addr uint16) byte {
	return c.wram[addr&0x07FF]
}

// StepInstruction runs exactly one CPU instruction and its matching PPU
// and APU catch-up, the single-step primitive an interactive debugger
// drives instead of running a whole Frame. It returns the CPU cycles the
// instruction took.
func (c *Console) StepInstruction() (int, error) {
	if c.mapperRef == nil {
		return 0, fmt.Errorf("console: no ROM loaded")
	}
	if c.crashed {
		return 0, fmt.Errorf("console: %w", ErrCrashed)
	}
	cycles, err := c.cpu.Step()
	if err != nil {
		c.crashed = true
		return cycles, fmt.Errorf("console: %w", err)
	}
	for i := 0; i < cycles; i++ {
		for d := 0; d < 3; d++ {
			c.ppu.Step()
			if c.ppu.FrameComplete() {
				c.frames++
				if c.opts.OnFrame != nil {
					c.opts.OnFrame(c.ppu.Frame())
				}
			}
		}
		if c.ppu.TakeNMI() {
			c.cpu.RequestIRQ(cpu.InterruptNMI, true)
		}
		// Single-step debugging has no audio sink wired (opts.OnAudioSample is
		// only accumulated/flushed by Frame's run loop), so the sample is
		// intentionally discarded here rather than buffered.
		c.apu.Step()
	}
	irq := c.apu.FrameIRQPending() || c.apu.DMCIRQPending() || c.mapperRef.IRQPending()
	c.cpu.RequestIRQ(cpu.InterruptIRQ, irq)
	return cycles, nil
}
