/*
Package discovery turns BLE advertisements into scale drivers.

A Deduplicator suppresses repeated advertisement callbacks for the same device
within a scan window. A Manager glues a Deduplicator, a registry.Registry and a
ble.Dialer together: every novel device is resolved to a plugin, dialed and
instantiated once, then kept until it is removed.

	mgr, err := discovery.NewManager(reg, dialer, discovery.WithAutoConnect(true))
	if err != nil {
		return err
	}
	go mgr.RunUpdates(ctx, 100*time.Millisecond)
	err = mgr.Scan(ctx, central)
*/
package discovery
