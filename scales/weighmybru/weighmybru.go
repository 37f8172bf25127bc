// Package weighmybru drives WeighMyBru open source scales.
//
// The scale speaks the same 20 byte framing as Bookoo scales over a Nordic UART
// style service.
package weighmybru

import (
	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scale"
	"github.com/arloliu/go-scales/scales/xorframe"
)

// PluginID identifies the WeighMyBru plugin in a registry.
const PluginID = "plugin-weighmybrew"

// NamePrefix is the advertised name prefix of WeighMyBru scales.
const NamePrefix = "WeighMyBru"

// GATT identifiers.
var (
	ServiceUUID = ble.MustParseUUID("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")
	WeightUUID  = ble.MustParseUUID("6E400002-B5A3-F393-E0A9-E50E24DCCA9E")
	CommandUUID = ble.MustParseUUID("6E400003-B5A3-F393-E0A9-E50E24DCCA9E")
)

// NewProtocol creates the WeighMyBru protocol.
func NewProtocol() *xorframe.Protocol {
	return xorframe.NewProtocol("weighmybru", xorframe.Identifiers{
		Service: ServiceUUID,
		Weight:  WeightUUID,
		Command: CommandUUID,
	})
}

// New creates a driver for the WeighMyBru scale dev.
func New(dev ble.Device, client ble.Client, opts ...scale.Option) (*scale.Conn, error) {
	return scale.NewConn(dev, client, NewProtocol(), opts...)
}

// Plugin returns the registry plugin for WeighMyBru scales.
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
