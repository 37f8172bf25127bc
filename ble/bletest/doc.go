// Package bletest provides an in-memory ble transport for tests and simulations.
//
// A Network holds simulated Peripherals. It acts as a ble.Central, advertising every
// peripheral it holds, and as a ble.Dialer, handing out the peripheral itself as the
// ble.Client. Peripherals record every write so tests can assert on the exact bytes a
// driver put on the air, and Characteristic.Notify injects notifications the way a
// real radio stack would.
package bletest
