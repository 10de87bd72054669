package ppu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nespkg.dev/coreboard/console/bus"
)

type fakeCHR struct {
	mem [0x2000]byte
}

func (f *fakeCHR) ReadCHR(addr uint16) byte     { return f.mem[addr] }
func (f *fakeCHR) WriteCHR(addr uint16, v byte) { f.mem[addr] = v }

func newTestPPU() *PPU {
	p := New(&fakeCHR{}, bus.MirrorHorizontal)
	p.Reset()
	return p
}

func TestNMIFiresAtVBlankStartWhenEnabled(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0, 1<<7) // PPUCTRL: NMI enable

	p.scanline, p.cycle = 241, 0
	p.Step() // cycle becomes 1, matching the VBlank-start edge; arms the countdown
	assert.False(t, p.TakeNMI(), "NMI must not fire before the countdown expires")
	p.Step()
	p.Step()
	assert.True(t, p.TakeNMI(), "NMI must fire once the countdown expires with bit 7 still set")
}

func TestNMISuppressedWhenDisabled(t *testing.T) {
	p := newTestPPU()
	p.scanline, p.cycle = 241, 0
	p.Step()
	p.Step()
	p.Step()
	assert.False(t, p.TakeNMI())
}

func TestNMICanceledIfDisabledBeforeCountdownExpires(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0, 1<<7) // NMI enable

	p.scanline, p.cycle = 241, 0
	p.Step() // arms the countdown
	p.WriteRegister(0, 0) // disable before the countdown expires
	p.Step()
	p.Step()
	assert.False(t, p.TakeNMI(), "disabling $2000 bit 7 mid-countdown must cancel that frame's NMI")
}

func TestNMIRetroactivelyArmedWhenEnabledWhileVBlankAlreadySet(t *testing.T) {
	p := newTestPPU()
	p.nmiOccurred = true // VBlank already signaled, NMI was off at that instant

	p.WriteRegister(0, 1<<7) // enabling now must still arm a fresh countdown
	p.Step()
	p.Step()
	assert.True(t, p.TakeNMI(), "enabling $2000 bit 7 while nmiOccurred is already set must still fire an NMI")
}

func TestPPUSTATUSReadClearsVBlankAndWriteLatch(t *testing.T) {
	p := newTestPPU()
	p.nmiOccurred = true
	p.w = true

	status := p.ReadRegister(2)
	assert.NotZero(t, status&(1<<7), "status byte should report VBlank set before the read clears it")
	assert.False(t, p.nmiOccurred, "reading $2002 must clear nmiOccurred")
	assert.False(t, p.w, "reading $2002 must clear the write-toggle latch")
}

func TestPPUDATAWriteThenReadRoundTrips(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(6, 0x20) // high byte of $2000
	p.WriteRegister(6, 0x00) // low byte
	p.WriteRegister(7, 0x42)

	p.WriteRegister(6, 0x20)
	p.WriteRegister(6, 0x00)
	p.ReadRegister(7) // primes the buffered-read latch
	got := p.ReadRegister(7)
	assert.Equal(t, byte(0x42), got)
}

func TestPeekVRAMRejectsOutOfRangeAddress(t *testing.T) {
	p := newTestPPU()
	_, err := p.PeekVRAM(0x4000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidVRAM))
}

func TestPeekVRAMDoesNotAdvanceAddressOrLatch(t *testing.T) {
	p := newTestPPU()
	p.paletteRAM[0] = 0x0F
	before := p.v
	v, err := p.PeekVRAM(0x3F00)
	require.NoError(t, err)
	assert.Equal(t, byte(0x0F), v)
	assert.Equal(t, before, p.v)
}

func TestSaveStateRoundTrip(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0, 0x80)
	p.WriteRegister(6, 0x3F)
	p.WriteRegister(6, 0x05)
	p.WriteRegister(7, 0x11)

	s := p.SaveState()

	q := newTestPPU()
	q.RestoreState(s)
	q.SetMirrorMode(bus.MirrorHorizontal)

	assert.Equal(t, p.paletteRAM, q.paletteRAM)
	assert.Equal(t, p.nmiOutput, q.nmiOutput)
	assert.Equal(t, p.v, q.v)
}
