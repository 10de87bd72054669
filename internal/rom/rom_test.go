package rom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nespkg.dev/coreboard/console/bus"
)

func buildINES(prgBanks, chrBanks int, flags6, flags7 byte, trainer bool) []byte {
	size := headerSize
	if trainer {
		size += trainerSize
	}
	size += prgBanks * prgBankSize
	size += chrBanks * chrBankSize
	data := make([]byte, size)
	data[0], data[1], data[2], data[3] = 'N', 'E', 'S', 0x1A
	data[4] = byte(prgBanks)
	data[5] = byte(chrBanks)
	data[6] = flags6
	data[7] = flags7
	return data
}

func TestParseRejectsTruncatedHeader(t *testing.T) {
	_, err := Parse([]byte{'N', 'E', 'S'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidROM))
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0, 0, false)
	data[3] = 0x00
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidROM))
}

func TestParseRejectsZeroPRGBanks(t *testing.T) {
	data := buildINES(0, 1, 0, 0, false)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidROM))
}

func TestParseRejectsTruncatedPRG(t *testing.T) {
	data := buildINES(2, 0, 0, 0, false)
	data = data[:len(data)-1]
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidROM))
}

func TestParseSkipsTrainer(t *testing.T) {
	data := buildINES(1, 1, 0x04, 0, true)
	data[headerSize] = 0xEE // trainer byte, must not leak into PRG
	data[headerSize+trainerSize] = 0x42
	img, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), img.PRG[0])
}

func TestParseNoCHRMeansCHRRAM(t *testing.T) {
	data := buildINES(1, 0, 0, 0, false)
	img, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, img.CHR)
}

func TestParseMapperNumberCombinesBothNibbles(t *testing.T) {
	// mapper 1 (MMC1): low nibble from flags6 bits 4-7, high nibble from flags7 bits 4-7.
	data := buildINES(2, 1, 0x10, 0x00, false)
	img, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Mapper)

	data = buildINES(4, 1, 0x40, 0x40, false)
	img, err = Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 4+0x40, img.Mapper)
}

func TestParseMirroringAndBatteryFlags(t *testing.T) {
	data := buildINES(1, 1, 0x01|0x02, 0, false)
	img, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, bus.MirrorVertical, img.Mirroring)
	assert.True(t, img.Battery)

	data = buildINES(1, 1, 0x08, 0, false)
	img, err = Parse(data)
	require.NoError(t, err)
	assert.True(t, img.FourScreen)
}
