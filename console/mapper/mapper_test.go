package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nespkg.dev/coreboard/console/bus"
	"nespkg.dev/coreboard/internal/rom"
)

func testImage(mapperNum int, prgBanks, chrBanks int) *rom.Image {
	return &rom.Image{
		PRG:        make([]byte, prgBanks*16*1024),
		CHR:        make([]byte, chrBanks*8*1024),
		Mapper:     mapperNum,
		Mirroring:  bus.MirrorHorizontal,
		PRGRAMSize: 8 * 1024,
	}
}

func TestNewRejectsUnsupportedMapper(t *testing.T) {
	_, err := New(testImage(255, 2, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMapper))
}

func TestNROMFixedMirroring(t *testing.T) {
	m, err := New(testImage(0, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, bus.MirrorHorizontal, m.Mirroring())
	assert.False(t, m.IRQPending())
}

func TestMMC1WriteSequenceSetsControlRegister(t *testing.T) {
	m := newMMC1(testImage(1, 16, 0))
	// five consecutive writes shift one bit each into the register, first
	// write landing in bit 0 and the fifth in bit 4; the fifth write
	// commits the assembled value to the register addr selects.
	for _, bit := range []byte{0, 1, 0, 0, 0} {
		m.WritePRG(0x8000, bit)
	}
	assert.Equal(t, bus.MirrorVertical, m.Mirroring(), "control value 0x02 selects vertical mirroring")
}

func TestMMC1StateRoundTrip(t *testing.T) {
	m := newMMC1(testImage(1, 16, 0))
	for _, bit := range []byte{0, 1, 1, 0, 0} {
		m.WritePRG(0x8000, bit)
	}
	saved := m.MapperState()

	n := newMMC1(testImage(1, 16, 0))
	n.RestoreMapperState(saved)
	assert.Equal(t, m.Mirroring(), n.Mirroring())
	assert.Equal(t, saved, n.MapperState())
}

func TestMMC3IRQPendingAfterCounterReachesZero(t *testing.T) {
	m := newMMC3(testImage(4, 16, 16))
	m.WritePRG(0xC000, 0) // IRQ latch = 0, so the very next reload clocks to 0
	m.WritePRG(0xE001, 0) // IRQ enable
	m.WritePRG(0xC001, 0) // force reload on next clock

	m.clockIRQCounter()
	assert.True(t, m.IRQPending())

	m.ClearIRQ()
	assert.False(t, m.IRQPending())
}

func TestMMC3StateRoundTrip(t *testing.T) {
	m := newMMC3(testImage(4, 16, 16))
	m.WritePRG(0x8000, 0x03) // bank select: R3, no PRG/CHR inversion
	m.WritePRG(0x8001, 0x7F) // bank data for R3
	saved := m.MapperState()

	n := newMMC3(testImage(4, 16, 16))
	n.RestoreMapperState(saved)
	assert.Equal(t, saved, n.MapperState())
}
