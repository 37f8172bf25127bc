package xorframe

import (
	"testing"

	"github.com/arloliu/go-scales/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder(t *testing.T) {
	t.Run("Partial frames are buffered", func(t *testing.T) {
		d := NewDecoder()
		f := weightFrame('+', 2500)

		assert.Empty(t, d.Decode(f[:7]))
		assert.Equal(t, 7, d.Buffered())
		assert.Empty(t, d.Decode(f[7:19]))

		events := d.Decode(f[19:])
		require.Len(t, events, 1)
		assert.InDelta(t, 25.0, events[0].Grams, 1e-9)
		assert.Zero(t, d.Buffered())
	})

	t.Run("Multiple frames in one notification", func(t *testing.T) {
		d := NewDecoder()
		data := append(weightFrame('+', 100), weightFrame('-', 200)...)
		data = append(data, weightFrame('+', 300)[:5]...)

		events := d.Decode(data)
		require.Len(t, events, 2)
		assert.InDelta(t, 1.0, events[0].Grams, 1e-9)
		assert.InDelta(t, -2.0, events[1].Grams, 1e-9)
		assert.Equal(t, 5, d.Buffered(), "the incomplete frame stays buffered")
	})

	t.Run("Bad frame consumes exactly one frame", func(t *testing.T) {
		d := NewDecoder()
		bad := weightFrame('+', 100)
		bad[8] ^= 0x01
		data := append(bad, weightFrame('+', 400)...)

		events := d.Decode(data)
		require.Len(t, events, 2)
		assert.Equal(t, scale.FrameErrorEventKind, events[0].Kind)
		assert.ErrorIs(t, events[0].Err, scale.ErrChecksumMismatch)
		assert.Equal(t, scale.WeightEventKind, events[1].Kind)
		assert.InDelta(t, 4.0, events[1].Grams, 1e-9)
		assert.Zero(t, d.Buffered())
	})

	t.Run("Reset", func(t *testing.T) {
		d := NewDecoder()
		d.Decode(weightFrame('+', 1)[:10])
		d.Reset()
		assert.Zero(t, d.Buffered())
		assert.Len(t, d.Decode(weightFrame('+', 1)), 1)
	})

	t.Run("Long stream", func(t *testing.T) {
		d := NewDecoder()
		var stream []byte
		for i := 0; i < 50; i++ {
			stream = append(stream, weightFrame('+', uint32(i))...)
		}

		var events []scale.Event
		for len(stream) > 0 {
			n := min(len(stream), 7)
			events = append(events, d.Decode(stream[:n])...)
			stream = stream[n:]
		}
		require.Len(t, events, 50)
		for i, ev := range events {
			assert.InDelta(t, float64(i)/100, ev.Grams, 1e-9)
		}
	})
}
