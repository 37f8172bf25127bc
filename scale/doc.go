// Package scale implements the connection life cycle shared by every scale driver.
//
// A vendor package supplies a Protocol: the handshake that locates its GATT service and
// characteristics, a decoder turning notification bytes into Events, and an encoder for
// its outbound commands. Conn wraps a Protocol and a ble.Client and exposes the uniform
// Driver surface used by host applications:
//
//	drv, _ := decent.New(dev, client)
//	if drv.Connect() {
//	    for range time.Tick(100 * time.Millisecond) {
//	        drv.Update()
//	        fmt.Println(drv.CurrentWeight())
//	    }
//	}
//
// Connection States:
//
//   - DisconnectedState: no link. Connect moves to LinkedState when the transport link succeeds.
//   - LinkedState: link established, handshake in progress. Success moves to ConnectedState,
//     any failure tears the link down again.
//   - ConnectedState: notifications flow and commands may be sent.
//   - ReconnectPendingState: the link was found lost. The next Update tears down residual
//     transport state and runs the full connect sequence.
//
// Link loss is detected lazily by IsConnected, Update and Tare; nothing reconnects in the
// background. Notifications arrive on the transport goroutine and are decoded under a
// session lock, so they may run concurrently with host calls.
//
// Optional capabilities are discovered by type assertion on the Protocol: Heartbeater
// for periodic keep-alive commands, Greeter for a command sent once connected, and
// Shutdowner for a command sent before the link is released.
package scale
