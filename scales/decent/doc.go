/*
Package decent drives Decent scales.

Every notification carries exactly one 7 or 10 byte frame:

	byte 0      header (3)
	byte 1      tag, 0xCA or 0xCE for weight frames
	bytes 2..3  signed 16 bit big endian weight in decigrams
	last byte   XOR of all preceding bytes, or 0 when the scale skips the checksum

The driver turns the scale's display on after connecting, off before
disconnecting, and sends a keep-alive every 5 seconds.
*/
package decent
