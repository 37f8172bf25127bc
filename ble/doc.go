// Package ble defines the wireless transport contract consumed by the scale drivers.
//
// go-scales does not implement a radio stack. A host application adapts its BLE library
// (BlueZ over D-Bus, NimBLE, CoreBluetooth...) to the small set of interfaces below:
//
//   - Central: advertisement scanning, yielding a stream of Device identities.
//   - Dialer: creates a Client bound to one discovered Device.
//   - Client: link establishment and GATT service lookup for one peripheral.
//   - Service, Characteristic, Descriptor: the GATT objects used during a handshake.
//
// Notifications are delivered through a NotifyHandler invoked from the transport's own
// goroutine. Drivers treat that goroutine as concurrent with the host's calls.
//
// Package bletest provides an in-memory implementation for tests and simulations.
package ble
