package xorframe

import (
	"fmt"

	"github.com/arloliu/go-scales/scale"
)

// FrameSize is the length of every inbound frame.
const FrameSize = 20

const (
	productCode = 0x03

	typeSystem = 0x0A
	typeWeight = 0x0B

	signIndex     = 6
	weightIndex   = 7
	checksumIndex = FrameSize - 1

	minusSign = '-'
)

// Checksum returns the XOR of data.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}

	return sum
}

// DecodeFrame decodes one FrameSize byte frame.
//
// A valid weight frame yields a weight event, a system frame yields a tare
// request, and anything else yields a frame error event.
func DecodeFrame(frame []byte) scale.Event {
	if len(frame) != FrameSize {
		return scale.FrameErrorEvent(fmt.Errorf("%w: length %d", scale.ErrMalformedFrame, len(frame)), frame)
	}

	product, msgType := frame[0], frame[1]
	switch {
	case product == productCode && msgType == typeWeight:
		if sum := Checksum(frame[:checksumIndex]); sum != frame[checksumIndex] {
			return scale.FrameErrorEvent(
				fmt.Errorf("%w: calc[%02X] but actual[%02X]", scale.ErrChecksumMismatch, sum, frame[checksumIndex]),
				frame,
			)
		}

		magnitude := uint32(frame[weightIndex])<<16 | uint32(frame[weightIndex+1])<<8 | uint32(frame[weightIndex+2])
		grams := float64(magnitude) / 100
		if frame[signIndex] == minusSign {
			grams = -grams
		}

		return scale.WeightEvent(grams)

	case product == productCode && msgType == typeSystem:
		return scale.TareEvent()

	default:
		return scale.FrameErrorEvent(fmt.Errorf("%w: product %02X type %02X", scale.ErrUnknownFrame, product, msgType), frame)
	}
}

// EncodeMessage returns a copy of payload with the XOR of all but the last byte
// written into the last byte. Payloads shorter than two bytes are returned unchanged.
func EncodeMessage(payload []byte) []byte {
	msg := make([]byte, len(payload))
	copy(msg, payload)
	if len(msg) < 2 {
		return msg
	}
	msg[len(msg)-1] = Checksum(msg[:len(msg)-1])

	return msg
}

// EncodeEvent prefixes payload with its framed length and encodes it as a message.
func EncodeEvent(payload []byte) []byte {
	msg := make([]byte, 0, len(payload)+1)
	msg = append(msg, byte(len(payload)+1))
	msg = append(msg, payload...)

	return EncodeMessage(msg)
}
