package apu

// State is the exported snapshot of all APU state named in spec.md §3
// ("APU state"), used by console.Console's save-state round trip. The
// channel structs themselves keep unexported fields (this package's
// normal style), so SaveState/RestoreState copy field-by-field into
// small exported DTOs instead of embedding them directly -- embedding
// would serialize to an empty JSON object since encoding/json only sees
// exported fields.
type State struct {
	Pulse1, Pulse2 PulseState
	Triangle       TriangleState
	Noise          NoiseState
	DMC            DMCState

	FrameCounter    uint32
	FiveStepMode    bool
	FrameIRQEnabled bool
	FrameIRQFlag    bool

	ChannelEnable [5]bool

	DCPrevIn, DCPrevOut float32
	Cycles              uint64
}

type PulseState struct {
	DutyCycle, Volume                            byte
	EnvelopeLoop, EnvelopeDisable                 bool
	SweepEnable, SweepNegate, SweepReload         bool
	SweepPeriod, SweepShift, SweepCounter         byte
	Timer, TimerCounter                           uint16
	LengthCounter                                 byte
	EnvelopeStart                                 bool
	EnvelopeCounter, EnvelopeDivider              byte
	DutyIndex                                     byte
}

type TriangleState struct {
	LengthCounterHalt                  bool
	LinearCounterLoad                  byte
	Timer, TimerCounter                uint16
	LengthCounter                      byte
	LinearCounter                      byte
	LinearCounterReload                bool
	SequencerPos                       byte
}

type NoiseState struct {
	EnvelopeLoop, EnvelopeDisable     bool
	Volume                            byte
	Mode                              bool
	PeriodIndex                       byte
	TimerCounter                      uint16
	LengthCounter                     byte
	EnvelopeStart                     bool
	EnvelopeCounter, EnvelopeDivider  byte
	ShiftRegister                     uint16
}

type DMCState struct {
	IRQEnable, Loop                               bool
	RateIndex                                      byte
	OutputLevel                                    byte
	SampleAddress, SampleLength                    uint16
	TimerCounter                                   uint16
	SampleBuffer                                   byte
	SampleBufferBits                               byte
	SampleBufferEmpty                              bool
	BytesRemaining, CurrentAddress                 uint16
	IRQFlag                                        bool
}

func pulseToState(p pulseChannel) PulseState {
	return PulseState{
		DutyCycle: p.dutyCycle, Volume: p.volume,
		EnvelopeLoop: p.envelopeLoop, EnvelopeDisable: p.envelopeDisable,
		SweepEnable: p.sweepEnable, SweepNegate: p.sweepNegate, SweepReload: p.sweepReload,
		SweepPeriod: p.sweepPeriod, SweepShift: p.sweepShift, SweepCounter: p.sweepCounter,
		Timer: p.timer, TimerCounter: p.timerCounter, LengthCounter: p.lengthCounter,
		EnvelopeStart: p.envelopeStart, EnvelopeCounter: p.envelopeCounter, EnvelopeDivider: p.envelopeDivider,
		DutyIndex: p.dutyIndex,
	}
}

func stateToPulse(s PulseState) pulseChannel {
	return pulseChannel{
		dutyCycle: s.DutyCycle, volume: s.Volume,
		envelopeLoop: s.EnvelopeLoop, envelopeDisable: s.EnvelopeDisable,
		sweepEnable: s.SweepEnable, sweepNegate: s.SweepNegate, sweepReload: s.SweepReload,
		sweepPeriod: s.SweepPeriod, sweepShift: s.SweepShift, sweepCounter: s.SweepCounter,
		timer: s.Timer, timerCounter: s.TimerCounter, lengthCounter: s.LengthCounter,
		envelopeStart: s.EnvelopeStart, envelopeCounter: s.EnvelopeCounter, envelopeDivider: s.EnvelopeDivider,
		dutyIndex: s.DutyIndex,
	}
}

func triangleToState(t triangleChannel) TriangleState {
	return TriangleState{
		LengthCounterHalt: t.lengthCounterHalt, LinearCounterLoad: t.linearCounterLoad,
		Timer: t.timer, TimerCounter: t.timerCounter, LengthCounter: t.lengthCounter,
		LinearCounter: t.linearCounter, LinearCounterReload: t.linearCounterReload,
		SequencerPos: t.sequencerPos,
	}
}

func stateToTriangle(s TriangleState) triangleChannel {
	return triangleChannel{
		lengthCounterHalt: s.LengthCounterHalt, linearCounterLoad: s.LinearCounterLoad,
		timer: s.Timer, timerCounter: s.TimerCounter, lengthCounter: s.LengthCounter,
		linearCounter: s.LinearCounter, linearCounterReload: s.LinearCounterReload,
		sequencerPos: s.SequencerPos,
	}
}

func noiseToState(n noiseChannel) NoiseState {
	return NoiseState{
		EnvelopeLoop: n.envelopeLoop, EnvelopeDisable: n.envelopeDisable, Volume: n.volume,
		Mode: n.mode, PeriodIndex: n.periodIndex, TimerCounter: n.timerCounter,
		LengthCounter: n.lengthCounter, EnvelopeStart: n.envelopeStart,
		EnvelopeCounter: n.envelopeCounter, EnvelopeDivider: n.envelopeDivider,
		ShiftRegister: n.shiftRegister,
	}
}

func stateToNoise(s NoiseState) noiseChannel {
	return noiseChannel{
		envelopeLoop: s.EnvelopeLoop, envelopeDisable: s.EnvelopeDisable, volume: s.Volume,
		mode: s.Mode, periodIndex: s.PeriodIndex, timerCounter: s.TimerCounter,
		lengthCounter: s.LengthCounter, envelopeStart: s.EnvelopeStart,
		envelopeCounter: s.EnvelopeCounter, envelopeDivider: s.EnvelopeDivider,
		shiftRegister: s.ShiftRegister,
	}
}

func dmcToState(d dmcChannel) DMCState {
	return DMCState{
		IRQEnable: d.irqEnable, Loop: d.loop, RateIndex: d.rateIndex, OutputLevel: d.outputLevel,
		SampleAddress: d.sampleAddress, SampleLength: d.sampleLength, TimerCounter: d.timerCounter,
		SampleBuffer: d.sampleBuffer, SampleBufferBits: d.sampleBufferBits, SampleBufferEmpty: d.sampleBufferEmpty,
		BytesRemaining: d.bytesRemaining, CurrentAddress: d.currentAddress, IRQFlag: d.irqFlag,
	}
}

func stateToDMC(s DMCState) dmcChannel {
	return dmcChannel{
		irqEnable: s.IRQEnable, loop: s.Loop, rateIndex: s.RateIndex, outputLevel: s.OutputLevel,
		sampleAddress: s.SampleAddress, sampleLength: s.SampleLength, timerCounter: s.TimerCounter,
		sampleBuffer: s.SampleBuffer, sampleBufferBits: s.SampleBufferBits, sampleBufferEmpty: s.SampleBufferEmpty,
		bytesRemaining: s.BytesRemaining, currentAddress: s.CurrentAddress, irqFlag: s.IRQFlag,
	}
}

// SaveState captures the APU's channel and frame-sequencer state.
func (a *APU) SaveState() State {
	return State{
		Pulse1: pulseToState(a.pulse1), Pulse2: pulseToState(a.pulse2),
		Triangle: triangleToState(a.triangle), Noise: noiseToState(a.noise), DMC: dmcToState(a.dmc),
		FrameCounter: a.frameCounter, FiveStepMode: a.fiveStepMode,
		FrameIRQEnabled: a.frameIRQEnabled, FrameIRQFlag: a.frameIRQFlag,
		ChannelEnable: a.channelEnable,
		DCPrevIn:      a.dcPrevIn, DCPrevOut: a.dcPrevOut, Cycles: a.cycles,
	}
}

// RestoreState applies a previously captured State.
func (a *APU) RestoreState(s State) {
	a.pulse1, a.pulse2 = stateToPulse(s.Pulse1), stateToPulse(s.Pulse2)
	a.triangle, a.noise, a.dmc = stateToTriangle(s.Triangle), stateToNoise(s.Noise), stateToDMC(s.DMC)
	a.frameCounter, a.fiveStepMode = s.FrameCounter, s.FiveStepMode
	a.frameIRQEnabled, a.frameIRQFlag = s.FrameIRQEnabled, s.FrameIRQFlag
	a.channelEnable = s.ChannelEnable
	a.dcPrevIn, a.dcPrevOut, a.cycles = s.DCPrevIn, s.DCPrevOut, s.Cycles
}
