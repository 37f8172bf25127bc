// Package bookoo drives Bookoo coffee scales.
package bookoo

import (
	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scale"
	"github.com/arloliu/go-scales/scales/xorframe"
)

// PluginID identifies the Bookoo plugin in a registry.
const PluginID = "plugin-bookoo"

// NamePrefix is the advertised name prefix of Bookoo scales.
const NamePrefix = "BOOKOO_SC"

// GATT identifiers.
var (
	ServiceUUID = ble.UUID16(0x0FFE)
	WeightUUID  = ble.UUID16(0xFF11)
	CommandUUID = ble.UUID16(0xFF12)
)

// NewProtocol creates the Bookoo protocol.
func NewProtocol() *xorframe.Protocol {
	return xorframe.NewProtocol("bookoo", xorframe.Identifiers{
		Service: ServiceUUID,
		Weight:  WeightUUID,
		Command: CommandUUID,
	})
}

// New creates a driver for the Bookoo scale dev.
func New(dev ble.Device, client ble.Client, opts ...scale.Option) (*scale.Conn, error) {
	return scale.NewConn(dev, client, NewProtocol(), opts...)
}

// Plugin returns the registry plugin for Bookoo scales.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID:      PluginID,
		Matches: registry.NamePrefix(NamePrefix),
		Create: func(dev ble.Device, client ble.Client, opts ...scale.Option) (scale.Driver, error) {
			drv, err := New(dev, client, opts...)
			if err != nil {
				return nil, err
			}

			return drv, nil
		},
	}
}
