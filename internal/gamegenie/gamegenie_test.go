package gamegenie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode("AAAAA")
	require.Error(t, err)
}

func TestDecodeRejectsInvalidLetter(t *testing.T) {
	_, err := Decode("AAAAA1")
	require.Error(t, err)
}

func TestDecodeIsCaseInsensitive(t *testing.T) {
	upper, err := Decode("SXIOPO")
	require.NoError(t, err)
	lower, err := Decode("sxiopo")
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestEncodeDecodeRoundTripSixLetter(t *testing.T) {
	want := Code{Addr: 0x91D9, Value: 0xAD}
	code, err := Encode(want)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	got, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeDecodeRoundTripEightLetter(t *testing.T) {
	key := byte(0x7F)
	want := Code{Addr: 0xC42A, Value: 0x03, Key: &key}
	code, err := Encode(want)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	got, err := Decode(code)
	require.NoError(t, err)
	require.NotNil(t, got.Key)
	assert.Equal(t, want.Addr, got.Addr)
	assert.Equal(t, want.Value, got.Value)
	assert.Equal(t, *want.Key, *got.Key)
}

func TestEncodeRejectsAddressBelowCartridgeSpace(t *testing.T) {
	_, err := Encode(Code{Addr: 0x1000, Value: 1})
	require.Error(t, err)
}

func TestHookAppliesSixLetterSubstitutionUnconditionally(t *testing.T) {
	h := NewHook(Code{Addr: 0x91D9, Value: 0xAD})
	assert.Equal(t, byte(0xAD), h.Apply(0x91D9, 0x00))
	assert.Equal(t, byte(0x11), h.Apply(0x1234, 0x11), "unrelated address passes through unchanged")
}

func TestHookAppliesEightLetterSubstitutionOnlyWhenKeyMatches(t *testing.T) {
	key := byte(0x7F)
	h := NewHook(Code{Addr: 0xC42A, Value: 0x03, Key: &key})
	assert.Equal(t, byte(0x10), h.Apply(0xC42A, 0x10), "existing value doesn't match compare key, no substitution")
	assert.Equal(t, byte(0x03), h.Apply(0xC42A, 0x7F), "existing value matches compare key, substitution applies")
}

func TestNilHookIsPassThrough(t *testing.T) {
	var h *Hook
	assert.Equal(t, byte(0x55), h.Apply(0x8000, 0x55))
}
