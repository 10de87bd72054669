// Package apu implements the NES Audio Processing Unit: two pulse
// channels with sweep, a triangle channel, a noise channel with a 15-bit
// LFSR, and a delta-modulation (DMC) channel that can steal CPU cycles to
// fetch sample bytes. console.Console drives Step once per CPU cycle and
// polls FrameIRQPending/DMCIRQPending to feed cpu.CPU.RequestIRQ, keeping
// the APU free of any back-pointer to the CPU (spec.md §9).
//
// Grounded on RNG999-gones's internal/apu/apu.go (channel register
// layout, envelope/sweep/length-counter timing, frame-counter step
// boundaries) with the mixer reworked into the two non-linear lookup
// tables spec.md calls for, a DC-blocking filter added, and the DMC
// channel's CPU-memory fetch and 4-cycle stall actually wired in (the
// teacher source marks this a TODO placeholder).
package apu

// MemoryReader is the narrow view of the CPU's address space the DMC
// channel needs to fetch sample bytes, and the CPU-stall hook DMC DMA
// uses -- the same narrow-interface shape cpu.Bus uses, so the APU never
// holds a pointer to the CPU or any other console component.
type MemoryReader interface {
	ReadDMCSample(addr uint16) byte
	StallCPU(cycles int)
}

type pulseChannel struct {
	dutyCycle       byte
	envelopeLoop    bool
	envelopeDisable bool
	volume          byte

	sweepEnable  bool
	sweepPeriod  byte
	sweepNegate  bool
	sweepShift   byte
	sweepReload  bool
	sweepCounter byte

	timer        uint16
	timerCounter uint16

	lengthCounter byte

	envelopeStart   bool
	envelopeCounter byte
	envelopeDivider byte

	dutyIndex byte
}

type triangleChannel struct {
	lengthCounterHalt bool
	linearCounterLoad byte

	timer        uint16
	timerCounter uint16

	lengthCounter byte

	linearCounter       byte
	linearCounterReload bool

	sequencerPos byte
}

type noiseChannel struct {
	envelopeLoop    bool
	envelopeDisable bool
	volume          byte

	mode        bool
	periodIndex byte

	timerCounter uint16

	lengthCounter byte

	envelopeStart   bool
	envelopeCounter byte
	envelopeDivider byte

	shiftRegister uint16
}

type dmcChannel struct {
	irqEnable bool
	loop      bool
	rateIndex byte

	outputLevel byte

	sampleAddress uint16
	sampleLength  uint16

	timerCounter      uint16
	sampleBuffer      byte
	sampleBufferBits  byte
	sampleBufferEmpty bool
	bytesRemaining    uint16
	currentAddress    uint16

	irqFlag bool
}

// APU is the Audio Processing Unit.
type APU struct {
	Mem MemoryReader

	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	frameCounter     uint32
	fiveStepMode     bool
	frameIRQEnabled  bool
	frameIRQFlag     bool

	channelEnable [5]bool

	dcPrevIn, dcPrevOut float32 // one-pole DC-blocking filter state

	cycles uint64
}

// New creates an APU; Mem must be set before Step is called (DMC fetches
// panic-free but produce silence until it is).
func New() *APU {
	a := &APU{frameIRQEnabled: true}
	a.noise.shiftRegister = 1
	return a
}

func (a *APU) Reset() {
	*a = APU{Mem: a.Mem, frameIRQEnabled: true}
	a.noise.shiftRegister = 1
}

// Step advances the APU by one CPU cycle and returns the mixed sample for
// that cycle (ok is always true -- the caller resamples down from the
// ~1.79MHz CPU clock at whatever rate the host audio backend wants by
// accumulating these cycle-rate samples itself, matching how cpu/ppu/apu
// are all clocked in raw hardware units).
func (a *APU) Step() (sample float32, ok bool) {
	a.cycles++
	a.stepFrameCounter()

	if a.channelEnable[0] {
		a.stepPulseTimer(&a.pulse1)
	}
	if a.channelEnable[1] {
		a.stepPulseTimer(&a.pulse2)
	}
	a.stepTriangleTimer(&a.triangle) // triangle's timer runs at CPU rate even when silenced
	if a.channelEnable[3] {
		a.stepNoiseTimer(&a.noise)
	}
	if a.channelEnable[4] {
		a.stepDMCTimer(&a.dmc)
	}

	raw := a.mix()
	return a.dcBlock(raw), true
}

// dcBlock is a one-pole high-pass filter removing the mixer's DC offset,
// the standard trick emulators use before handing samples to a host
// audio API that assumes a zero-centered waveform.
func (a *APU) dcBlock(in float32) float32 {
	const pole = 0.995
	out := in - a.dcPrevIn + pole*a.dcPrevOut
	a.dcPrevIn = in
	a.dcPrevOut = out
	return out
}

func (a *APU) stepFrameCounter() {
	a.frameCounter++
	if a.fiveStepMode {
		switch a.frameCounter {
		case 7457:
			a.clockEnvelopesAndLinear()
		case 14913:
			a.clockEnvelopesAndLinear()
			a.clockLengthAndSweep()
		case 22371:
			a.clockEnvelopesAndLinear()
		case 37281:
			a.clockEnvelopesAndLinear()
			a.clockLengthAndSweep()
		case 37282:
			a.frameCounter = 0
		}
		return
	}
	switch a.frameCounter {
	case 7457:
		a.clockEnvelopesAndLinear()
	case 14913:
		a.clockEnvelopesAndLinear()
		a.clockLengthAndSweep()
	case 22371:
		a.clockEnvelopesAndLinear()
	case 29829:
		a.clockEnvelopesAndLinear()
		a.clockLengthAndSweep()
	case 29830:
		if a.frameIRQEnabled {
			a.frameIRQFlag = true
		}
		a.frameCounter = 0
	}
}

func (a *APU) clockEnvelopesAndLinear() {
	a.clockPulseEnvelope(&a.pulse1)
	a.clockPulseEnvelope(&a.pulse2)
	a.clockNoiseEnvelope(&a.noise)
	a.clockTriangleLinear()
}

func (a *APU) clockLengthAndSweep() {
	a.clockPulseLength(&a.pulse1)
	a.clockPulseSweep(&a.pulse1, true)
	a.clockPulseLength(&a.pulse2)
	a.clockPulseSweep(&a.pulse2, false)
	a.clockTriangleLength()
	a.clockNoiseLength(&a.noise)
}

// FrameIRQPending reports whether the frame sequencer's IRQ line is
// asserted; console.Console ORs this with DMCIRQPending into a single
// cpu.RequestIRQ(InterruptIRQ, ...) call.
func (a *APU) FrameIRQPending() bool { return a.frameIRQFlag }
func (a *APU) DMCIRQPending() bool   { return a.dmc.irqFlag }
