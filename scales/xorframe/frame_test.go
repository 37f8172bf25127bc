package xorframe

import (
	"bytes"
	"testing"

	"github.com/arloliu/go-scales/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightFrame(sign byte, magnitude uint32) []byte {
	f := make([]byte, FrameSize)
	f[0] = productCode
	f[1] = typeWeight
	f[signIndex] = sign
	f[weightIndex] = byte(magnitude >> 16)
	f[weightIndex+1] = byte(magnitude >> 8)
	f[weightIndex+2] = byte(magnitude)
	f[checksumIndex] = Checksum(f[:checksumIndex])

	return f
}

func TestDecodeFrame(t *testing.T) {
	t.Run("Weight", func(t *testing.T) {
		ev := DecodeFrame(weightFrame('+', 12345))
		require.Equal(t, scale.WeightEventKind, ev.Kind)
		assert.InDelta(t, 123.45, ev.Grams, 1e-9)
	})

	t.Run("Negative weight", func(t *testing.T) {
		f := weightFrame(45, 0)
		f[7], f[8], f[9] = 0x00, 0x27, 0x10
		f[checksumIndex] = Checksum(f[:checksumIndex])

		ev := DecodeFrame(f)
		require.Equal(t, scale.WeightEventKind, ev.Kind)
		assert.InDelta(t, -100.00, ev.Grams, 1e-9)
	})

	t.Run("Maximum magnitude", func(t *testing.T) {
		ev := DecodeFrame(weightFrame(0, 0xFFFFFF))
		require.Equal(t, scale.WeightEventKind, ev.Kind)
		assert.InDelta(t, 167772.15, ev.Grams, 1e-9)
	})

	t.Run("Any flipped bit fails the checksum", func(t *testing.T) {
		valid := weightFrame('+', 5000)
		for i := 0; i < checksumIndex; i++ {
			for bit := 0; bit < 8; bit++ {
				f := append([]byte(nil), valid...)
				f[i] ^= 1 << bit

				ev := DecodeFrame(f)
				require.NotEqual(t, scale.WeightEventKind, ev.Kind, "byte %d bit %d", i, bit)
				if i > 1 {
					require.ErrorIs(t, ev.Err, scale.ErrChecksumMismatch, "byte %d bit %d", i, bit)
				}
			}
		}
	})

	t.Run("System frame requests tare", func(t *testing.T) {
		f := make([]byte, FrameSize)
		f[0], f[1] = productCode, typeSystem

		assert.Equal(t, scale.TareEventKind, DecodeFrame(f).Kind)
	})

	t.Run("Unknown frame", func(t *testing.T) {
		f := weightFrame('+', 1)
		f[0] = 0x04

		ev := DecodeFrame(f)
		require.Equal(t, scale.FrameErrorEventKind, ev.Kind)
		assert.ErrorIs(t, ev.Err, scale.ErrUnknownFrame)
		assert.Equal(t, f, ev.Frame)
	})

	t.Run("Wrong length", func(t *testing.T) {
		ev := DecodeFrame(make([]byte, FrameSize-1))
		assert.ErrorIs(t, ev.Err, scale.ErrMalformedFrame)
	})
}

func TestEncodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"single byte unchanged", []byte{0x00}, []byte{0x00}},
		{"two bytes", []byte{0x02, 0x00}, []byte{0x02, 0x02}},
		{"tare", []byte{0x03, 0x0a, 0x01, 0x00, 0x00, 0x00}, []byte{0x03, 0x0a, 0x01, 0x00, 0x00, 0x08}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Clone(tt.payload)
			assert.Equal(t, tt.want, EncodeMessage(payload))
			assert.Equal(t, tt.payload, payload, "payload must not be modified")
		})
	}

	assert.Equal(t, []byte{0x07, 0, 0, 0, 0, 0, 0x07}, EncodeEvent(make([]byte, 6)))

	t.Run("nil payload", func(t *testing.T) {
		msg := EncodeMessage(nil)
		assert.NotNil(t, msg)
		assert.Empty(t, msg)
	})
}
