/*
Package registry maps advertised BLE devices to scale drivers.

A Plugin pairs a name predicate with a driver factory. Plugins are tried in
registration order and the first whose predicate matches wins, so register
specific predicates before broad ones.

	reg, _ := registry.New()
	if err := reg.Register(bookoo.Plugin()); err != nil {
		return err
	}
	reg.Freeze()

	if p, ok := reg.Resolve(dev); ok {
		drv, err := reg.Instantiate(p, dev, client)
		...
	}
*/
package registry
