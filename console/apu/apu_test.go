package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMem struct {
	stalled int
}

func (f *fakeMem) ReadDMCSample(addr uint16) byte { return 0 }
func (f *fakeMem) StallCPU(cycles int)             { f.stalled += cycles }

func newTestAPU() (*APU, *fakeMem) {
	a := New()
	mem := &fakeMem{}
	a.Mem = mem
	a.Reset()
	return a, mem
}

func TestChannelEnableClearsLengthCounterAndStatusBit(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4003, 0x08) // pulse1 length load, sets lengthCounter nonzero
	assert.NotZero(t, a.ReadStatus(0)&0x01)

	a.WriteRegister(0x4015, 0x00) // disable all channels
	assert.Zero(t, a.pulse1.lengthCounter)
	assert.Zero(t, a.ReadStatus(0)&0x01)
}

func TestStatusReadClearsFrameIRQButNotDMCIRQ(t *testing.T) {
	a, _ := newTestAPU()
	a.frameIRQFlag = true
	a.dmc.irqFlag = true

	status := a.ReadStatus(0)
	assert.NotZero(t, status&0x40)
	assert.NotZero(t, status&0x80)
	assert.False(t, a.frameIRQFlag, "reading $4015 must clear the frame IRQ flag")
	assert.True(t, a.dmc.irqFlag, "reading $4015 must NOT clear the DMC IRQ flag")
}

func TestDisablingDMCIRQEnableClearsPendingFlag(t *testing.T) {
	a, _ := newTestAPU()
	a.dmc.irqFlag = true
	a.WriteRegister(0x4010, 0x00) // IRQ enable bit 7 clear
	assert.False(t, a.dmc.irqFlag)
}

func TestMixerTablesAreMonotonicallyIncreasing(t *testing.T) {
	for i := 1; i < len(pulseTable); i++ {
		assert.GreaterOrEqual(t, pulseTable[i], pulseTable[i-1])
	}
	for i := 1; i < len(tndTable); i++ {
		assert.GreaterOrEqual(t, tndTable[i], tndTable[i-1])
	}
	assert.Zero(t, pulseTable[0])
	assert.Zero(t, tndTable[0])
}

func TestFrameIRQStaysClearedAfterDisablingViaFrameCounterWrite(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4017, 0x40) // 4-step mode, IRQ inhibit set

	for i := 0; i < 2*29830; i++ {
		a.Step()
	}

	assert.Zero(t, a.ReadStatus(0)&0x40, "frame IRQ must stay clear once inhibited by $4017 bit 6")
}

func TestFiveStepSequencerPeriodIsThirtySevenThousandTwoEightyTwo(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4017, 0x80) // 5-step mode

	for i := 0; i < 37281; i++ {
		a.Step()
	}
	assert.Equal(t, uint32(37281), a.frameCounter, "sequencer must not wrap before the 37282nd cycle")

	a.Step()
	assert.Equal(t, uint32(0), a.frameCounter, "sequencer must wrap exactly on the 37282nd cycle")
}

func TestReadStatusCombinesOpenBusIntoBitFive(t *testing.T) {
	a, _ := newTestAPU()
	assert.NotZero(t, a.ReadStatus(0xFF)&0x20, "bit 5 is open bus and must reflect the last-driven bus byte")
	assert.Zero(t, a.ReadStatus(0x00)&0x20)
}

func TestSaveStateRoundTrip(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4000, 0x3F)
	a.WriteRegister(0x4003, 0x08)
	a.WriteRegister(0x4015, 0x1F)

	s := a.SaveState()

	b, _ := newTestAPU()
	b.RestoreState(s)

	assert.Equal(t, a.pulse1, b.pulse1)
	assert.Equal(t, a.channelEnable, b.channelEnable)
}
