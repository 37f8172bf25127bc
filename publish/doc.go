/*
Package publish forwards scale readings to an MQTT broker.

A Publisher encodes each reading with a Codec (JSON or CBOR) and publishes it to

	<prefix>/<device id>/weight
	<prefix>/<device id>/state

Attach it to drivers with WeightHandler and StateChangeHandler:

	pub, err := publish.NewPublisher(client, publish.WithTopicPrefix("kitchen/scales"))
	...
	drv, err := bookoo.New(dev, client,
		scale.WithWeightHandler(pub.WeightHandler()),
		scale.WithStateChangeHandler(pub.StateChangeHandler()),
	)
*/
package publish
