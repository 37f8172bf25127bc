/*
Package xorframe implements the 20 byte notification framing shared by Bookoo and
WeighMyBru scales.

Each inbound frame is laid out as

	byte 0      product code (3)
	byte 1      message type (0x0A system, 0x0B weight)
	byte 6      sign, '-' for negative weights
	bytes 7..9  unsigned 24 bit big endian weight in centigrams
	byte 19     XOR of bytes 0..18

Notifications may split or join frames, so a Decoder buffers the byte stream and
consumes exactly one frame per decode step. Outbound commands carry the XOR of
every byte except the last in the last slot, see EncodeMessage.

The vendors differ only in GATT identifiers; NewProtocol binds the framing to a
set of Identifiers.
*/
package xorframe
