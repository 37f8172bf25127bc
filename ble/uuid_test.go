package ble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID16(t *testing.T) {
	u := UUID16(0xFFF0)
	assert.Equal(t, "0000fff0-0000-1000-8000-00805f9b34fb", u.UUID.String())
	assert.Equal(t, "fff0", u.String())
	assert.True(t, u.IsShort())
	assert.Equal(t, "2902", CCCDUUID.String())
}

func TestParseUUID(t *testing.T) {
	t.Run("short form", func(t *testing.T) {
		u, err := ParseUUID("0FFE")
		require.NoError(t, err)
		assert.Equal(t, UUID16(0x0FFE), u)
	})

	t.Run("32 bit short form", func(t *testing.T) {
		u, err := ParseUUID("0x12345678")
		require.NoError(t, err)
		assert.Equal(t, "12345678-0000-1000-8000-00805f9b34fb", u.UUID.String())
		assert.Equal(t, "12345678", u.String())
	})

	t.Run("full form", func(t *testing.T) {
		u, err := ParseUUID("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")
		require.NoError(t, err)
		assert.False(t, u.IsShort())
		assert.Equal(t, "6e400001-b5a3-f393-e0a9-e50e24dcca9e", u.String())
	})

	t.Run("full form on base uuid", func(t *testing.T) {
		u, err := ParseUUID("0000FFB0-0000-1000-8000-00805F9B34FB")
		require.NoError(t, err)
		assert.Equal(t, UUID16(0xFFB0), u)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseUUID("zzzz")
		require.Error(t, err)
		_, err = ParseUUID("not-a-uuid")
		require.Error(t, err)
		assert.Panics(t, func() { MustParseUUID("xyz") })
	})
}

func TestDeviceID(t *testing.T) {
	assert.Equal(t, "aa:bb", Device{Address: "aa:bb", Name: "Decent Scale"}.ID())
	assert.Equal(t, "Decent Scale", Device{Name: "Decent Scale"}.ID())
	assert.Equal(t, "Decent Scale[aa:bb]", Device{Address: "aa:bb", Name: "Decent Scale"}.String())
}
