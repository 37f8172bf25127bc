package xorframe

import (
	"github.com/arloliu/go-scales/internal/framebuf"
	"github.com/arloliu/go-scales/scale"
)

// Decoder reassembles frames from a notification byte stream.
// It is not safe for concurrent use; scale.Conn serializes calls.
type Decoder struct {
	buf *framebuf.Buffer
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{buf: framebuf.New(2 * FrameSize)}
}

// Decode appends data and decodes every complete frame now buffered.
// Trailing bytes of an incomplete frame stay buffered for the next call.
func (d *Decoder) Decode(data []byte) []scale.Event {
	d.buf.Append(data)

	var events []scale.Event
	for d.buf.Len() >= FrameSize {
		frame, err := d.buf.Peek(FrameSize)
		if err != nil {
			break
		}
		events = append(events, DecodeFrame(frame))

		if err := d.buf.Consume(FrameSize); err != nil {
			break
		}
	}

	return events
}

// Buffered returns the number of bytes waiting for a complete frame.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}

// Reset drops buffered bytes.
func (d *Decoder) Reset() {
	d.buf.Reset()
}
