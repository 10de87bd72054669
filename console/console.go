// Package console assembles the CPU, PPU, APU, cartridge mapper and
// controllers into a single owning Console value -- the "single owning
// Console value, no back-pointers" architecture spec.md §9 calls for.
// It is the orchestrator layer the teacher's nes/console.go plays for
// the original single-mapper emulator, generalized to the full mapper
// set, an options-driven host-callback surface, and a JSON save-state
// round trip.
package console

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"nespkg.dev/coreboard/console/apu"
	"nespkg.dev/coreboard/console/cpu"
	"nespkg.dev/coreboard/console/mapper"
	"nespkg.dev/coreboard/console/ppu"
	"nespkg.dev/coreboard/internal/gamegenie"
	"nespkg.dev/coreboard/internal/rom"
)

// cpuClockHz is the NTSC 6502 clock rate; PAL timing is an explicit
// Non-goal (spec.md §1), so only this rate is modeled.
const cpuClockHz = 1789773

// sentinelError lets the exported Err* values participate in errors.Is
// after %w-wrapping, matching internal/rom and console/mapper's pattern.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// Error kinds, spec.md §7.
const (
	ErrInvalidROM       = sentinelError("invalid ROM")
	ErrCrashed          = sentinelError("console crashed")
	ErrInvalidSaveState = sentinelError("invalid save state")
)

// ConfigError wraps an invalid Options field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("console: option %s: %v", e.Field, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// Options configures a Console at construction time (spec.md §6's "Host
// callbacks" table).
type Options struct {
	// OnFrame is called once per frame after rendering with a 256x240
	// grid of 0x00RRGGBB words.
	OnFrame func(frame [ppu.Height][ppu.Width]uint32)
	// OnAudioSample is called once per resampled output sample; l/r are
	// in [-1, 1). The core is mono, so l == r.
	OnAudioSample func(l, r float32)
	// OnStatusUpdate receives human-readable status strings.
	OnStatusUpdate func(msg string)
	// OnBatteryRamWrite is called on every CPU write into $6000-$7FFF.
	OnBatteryRamWrite func(addr uint16, value byte)

	SampleRate         int
	PreferredFrameRate int
	EmulateSound       bool

	// GameGenieCodes are applied as read-time substitutions over PRG
	// ROM; empty disables Game Genie entirely.
	GameGenieCodes []gamegenie.Code
}

func (o Options) validate() error {
	if o.SampleRate <= 0 {
		return &ConfigError{Field: "SampleRate", Err: fmt.Errorf("must be positive, got %d", o.SampleRate)}
	}
	if o.PreferredFrameRate <= 0 {
		return &ConfigError{Field: "PreferredFrameRate", Err: fmt.Errorf("must be positive, got %d", o.PreferredFrameRate)}
	}
	return nil
}

// Console owns every emulation component and is the sole entry point a
// host front end drives.
type Console struct {
	opts Options

	cpu       *cpu.CPU
	ppu       *ppu.PPU
	apu       *apu.APU
	mapperRef mapper.Mapper
	bus       *cpuBus

	wram [2048]byte

	controllers [2]controllerState
	zapper      zapperState
	gameGenie   *gamegenie.Hook

	crashed bool

	frames      uint64
	audioAccum  float64
}

// New validates opts and creates a Console with no cartridge loaded;
// LoadROM must be called before Frame.
func New(opts Options) (*Console, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	c := &Console{opts: opts}
	c.gameGenie = gamegenie.NewHook(opts.GameGenieCodes...)
	c.bus = &cpuBus{console: c}
	c.cpu = cpu.New(c.bus)
	return c, nil
}

// LoadROM parses an iNES image, constructs the matching mapper and
// resets every component. A failure leaves the previous cartridge (if
// any) loaded and running.
func (c *Console) LoadROM(data []byte) error {
	img, err := rom.Parse(data)
	if err != nil {
		return fmt.Errorf("console: %w: %w", ErrInvalidROM, err)
	}
	m, err := mapper.New(img)
	if err != nil {
		return fmt.Errorf("console: %w: %w", ErrInvalidROM, err)
	}
	c.mapperRef = m
	c.ppu = ppu.New(m, m.Mirroring())
	c.apu = apu.New()
	c.apu.Mem = c.bus
	c.Reset()
	if c.opts.OnStatusUpdate != nil {
		c.opts.OnStatusUpdate(fmt.Sprintf("loaded ROM: mapper %d, %d KiB PRG, %d KiB CHR", img.Mapper, len(img.PRG)/1024, len(img.CHR)/1024))
	}
	return nil
}

// Reset restarts the CPU/PPU from their power-on-adjacent state and
// clears the crashed latch (spec.md §7 propagation policy).
func (c *Console) Reset() {
	c.wram = [2048]byte{}
	c.controllers = [2]controllerState{}
	c.zapper = zapperState{}
	c.crashed = false
	c.audioAccum = 0
	c.frames = 0
	c.cpu.Reset()
	c.ppu.Reset()
	c.apu.Reset()
}

// Frame runs the console until one full video frame has been rendered,
// or ctx is cancelled between CPU instructions (never mid-instruction,
// per spec.md §5). A crashed console immediately returns ErrCrashed.
func (c *Console) Frame(ctx context.Context) error {
	if c.mapperRef == nil {
		return fmt.Errorf("console: no ROM loaded")
	}
	if c.crashed {
		return fmt.Errorf("console: %w", ErrCrashed)
	}

	frameDone := false
	for !frameDone {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cycles, err := c.cpu.Step()
		if err != nil {
			c.crashed = true
			glog.Warningf("console: CPU crashed: %v", err)
			return fmt.Errorf("console: %w", err)
		}

		for i := 0; i < cycles; i++ {
			for d := 0; d < 3; d++ {
				c.ppu.Step()
				if c.ppu.FrameComplete() {
					frameDone = true
				}
			}
			if c.ppu.TakeNMI() {
				c.cpu.RequestIRQ(cpu.InterruptNMI, true)
			}

			sample, ok := c.apu.Step()
			if ok {
				c.audioAccum += float64(c.opts.SampleRate) / cpuClockHz
				if c.audioAccum >= 1.0 {
					c.audioAccum -= 1.0
					if c.opts.EmulateSound && c.opts.OnAudioSample != nil {
						c.opts.OnAudioSample(sample, sample)
					}
				}
			}
		}

		irq := c.apu.FrameIRQPending() || c.apu.DMCIRQPending() || c.mapperRef.IRQPending()
		c.cpu.RequestIRQ(cpu.InterruptIRQ, irq)
	}

	c.frames++
	if c.opts.OnFrame != nil {
		c.opts.OnFrame(c.ppu.Frame())
	}
	return nil
}

// ButtonDown/ButtonUp set one controller's button state; ctrl is 0 or 1.
func (c *Console) ButtonDown(ctrl int, b Button) { c.setButton(ctrl, b, true) }
func (c *Console) ButtonUp(ctrl int, b Button)   { c.setButton(ctrl, b, false) }

func (c *Console) setButton(ctrl int, b Button, down bool) {
	if ctrl < 0 || ctrl > 1 {
		return
	}
	c.controllers[ctrl].set(b, down)
}

// ZapperMove updates where the light gun is aimed, in PPU picture
// coordinates.
func (c *Console) ZapperMove(x, y int) { c.zapper.move(x, y) }

// ZapperFireDown/ZapperFireUp set the light gun's trigger state.
func (c *Console) ZapperFireDown() { c.zapper.trigger = true }
func (c *Console) ZapperFireUp()   { c.zapper.trigger = false }

// GetFPS reports the total number of frames rendered since the last
// LoadROM/Reset, for a host to derive a rolling frame rate from.
func (c *Console) GetFPS() uint64 { return c.frames }

// Crashed reports whether the console is latched in the crashed state.
func (c *Console) Crashed() bool { return c.crashed }
