package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildNROM assembles a one-bank NROM iNES image whose reset vector points
// at $8000, where prg holds the PRG-ROM bytes to run.
func buildNROM(prg []byte) []byte {
	data := make([]byte, 16+16*1024+8*1024)
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = 1 // 1x 16KiB PRG bank
	data[5] = 1 // 1x 8KiB CHR bank
	copy(data[16:], prg)
	// reset vector at the end of the 16KiB PRG bank ($FFFC/$FFFD -> offset
	// 16+0x3FFC within the file).
	data[16+0x3FFC] = 0x00
	data[16+0x3FFD] = 0x80
	return data
}

func TestLoadROMRejectsGarbage(t *testing.T) {
	c, err := New(Options{SampleRate: 44100, PreferredFrameRate: 60})
	require.NoError(t, err)
	err = c.LoadROM([]byte("not a rom"))
	require.Error(t, err)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(Options{SampleRate: 0, PreferredFrameRate: 60})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFrameRunsUntilCrashOnInvalidOpcode(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0] = 0x02 // unmapped opcode, crashes immediately
	c, err := New(Options{SampleRate: 44100, PreferredFrameRate: 60})
	require.NoError(t, err)
	require.NoError(t, c.LoadROM(buildNROM(prg)))

	err = c.Frame(context.Background())
	require.Error(t, err)
	assert.True(t, c.Crashed())

	err = c.Frame(context.Background())
	require.ErrorIs(t, err, ErrCrashed)

	c.Reset()
	assert.False(t, c.Crashed(), "reset must clear the crashed latch")
}

func TestMapperZeroSRAMWriteInvokesCallbackAndLeavesROMUnchanged(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0] = 0xEA // NOP
	var gotAddr uint16
	var gotValue byte
	calls := 0
	c, err := New(Options{
		SampleRate:         44100,
		PreferredFrameRate: 60,
		OnBatteryRamWrite: func(addr uint16, v byte) {
			calls++
			gotAddr, gotValue = addr, v
		},
	})
	require.NoError(t, err)
	require.NoError(t, c.LoadROM(buildNROM(prg)))

	c.bus.Write(0x6000, 0x42)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint16(0x6000), gotAddr)
	assert.Equal(t, byte(0x42), gotValue)
	assert.Equal(t, byte(0x42), c.bus.Read(0x6000))

	before := c.bus.Read(0x8000)
	c.bus.Write(0x8000, 0x99) // NROM has no bank-switch, write to ROM space is a no-op
	assert.Equal(t, before, c.bus.Read(0x8000))
}

func TestControllerReadPastEighthBitReturnsOne(t *testing.T) {
	var ctrl controllerState
	ctrl.write(true)
	ctrl.write(false)
	for i := 0; i < 8; i++ {
		ctrl.read(0)
	}
	assert.Equal(t, byte(1), ctrl.read(0), "reading beyond 8 bits must return 1")
}

func TestControllerReadCombinesOpenBusIntoUpperBits(t *testing.T) {
	var ctrl controllerState
	ctrl.write(true)
	ctrl.write(false)
	assert.Equal(t, byte(0xE0), ctrl.read(0xFF)&0xE0, "bits 5-7 are open bus and must reflect the last-driven bus byte")
	assert.Zero(t, ctrl.read(0x00)&0xE0)
}

func TestSaveStateRoundTrip(t *testing.T) {
	prg := make([]byte, 16*1024)
	prg[0] = 0xA9 // LDA #$42
	prg[1] = 0x42
	prg[2] = 0xEA // NOP (loop point)
	c, err := New(Options{SampleRate: 44100, PreferredFrameRate: 60})
	require.NoError(t, err)
	require.NoError(t, c.LoadROM(buildNROM(prg)))

	_, err = c.StepInstruction()
	require.NoError(t, err)

	data, err := c.ToJSON()
	require.NoError(t, err)

	d, err := New(Options{SampleRate: 44100, PreferredFrameRate: 60})
	require.NoError(t, err)
	require.NoError(t, d.LoadROM(buildNROM(prg)))
	require.NoError(t, d.FromJSON(data))

	assert.Equal(t, c.DebugSnapshot().A, d.DebugSnapshot().A)
	assert.Equal(t, c.DebugSnapshot().PC, d.DebugSnapshot().PC)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	c, err := New(Options{SampleRate: 44100, PreferredFrameRate: 60})
	require.NoError(t, err)
	require.NoError(t, c.LoadROM(buildNROM(make([]byte, 16*1024))))
	err = c.FromJSON([]byte("not json"))
	require.ErrorIs(t, err, ErrInvalidSaveState)
}
