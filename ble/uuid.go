package ble

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// baseUUID is the Bluetooth SIG base UUID that 16 and 32 bit short UUIDs are expanded onto.
var baseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// CCCDUUID is the Client Characteristic Configuration Descriptor used to enable notifications.
var CCCDUUID = UUID16(0x2902)

// UUID identifies a GATT service, characteristic or descriptor.
type UUID struct {
	uuid.UUID
}

// UUID16 expands a 16 bit short UUID onto the Bluetooth base UUID.
func UUID16(v uint16) UUID {
	u := baseUUID
	u[2] = byte(v >> 8)
	u[3] = byte(v)

	return UUID{u}
}

// ParseUUID parses a full 128 bit UUID, or a 4 or 8 hex digit short form.
func ParseUUID(s string) (UUID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	switch len(s) {
	case 4, 8:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return UUID{}, fmt.Errorf("ble: invalid short uuid %q: %w", s, err)
		}
		u := baseUUID
		u[0] = byte(v >> 24)
		u[1] = byte(v >> 16)
		u[2] = byte(v >> 8)
		u[3] = byte(v)

		return UUID{u}, nil
	default:
		u, err := uuid.Parse(s)
		if err != nil {
			return UUID{}, fmt.Errorf("ble: invalid uuid %q: %w", s, err)
		}

		return UUID{u}, nil
	}
}

// MustParseUUID is like ParseUUID but panics if s cannot be parsed.
// It simplifies safe initialization of package level identifiers.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}

	return u
}

// IsShort reports whether u lies on the Bluetooth base UUID.
func (u UUID) IsShort() bool {
	return [12]byte(u.UUID[4:]) == [12]byte(baseUUID[4:])
}

// String returns the short hex form for UUIDs on the base UUID, otherwise the canonical form.
func (u UUID) String() string {
	if u.IsShort() {
		if u.UUID[0] == 0 && u.UUID[1] == 0 {
			return fmt.Sprintf("%02x%02x", u.UUID[2], u.UUID[3])
		}

		return fmt.Sprintf("%02x%02x%02x%02x", u.UUID[0], u.UUID[1], u.UUID[2], u.UUID[3])
	}

	return u.UUID.String()
}
