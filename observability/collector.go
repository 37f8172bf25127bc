// Package observability exposes scale driver metrics to Prometheus.
package observability

import (
	"net/http"

	"github.com/arloliu/go-scales/scale"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scale"

// DriverSource lists the drivers to report. discovery.Manager implements it.
type DriverSource interface {
	Drivers() []scale.Driver
}

// DriverSourceFunc adapts a function to DriverSource.
type DriverSourceFunc func() []scale.Driver

// Drivers calls f().
func (f DriverSourceFunc) Drivers() []scale.Driver { return f() }

type counterDesc struct {
	desc  *prometheus.Desc
	value func(m *scale.Metrics) float64
}

// Collector is a prometheus.Collector reading driver state and scale.Metrics on every scrape.
type Collector struct {
	source DriverSource

	weight       *prometheus.Desc
	connected    *prometheus.Desc
	state        *prometheus.Desc
	frameErrors  *prometheus.Desc
	reconnectRun *prometheus.Desc
	lastWeightAt *prometheus.Desc
	counters     []counterDesc
}

var _ prometheus.Collector = (*Collector)(nil)

var driverLabels = []string{"device", "protocol"}

// NewCollector creates a collector over the drivers of source.
func NewCollector(source DriverSource) *Collector {
	newDesc := func(name, help string, extra ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, append(append(make([]string, 0, len(driverLabels)+len(extra)), driverLabels...), extra...), nil)
	}
	counter := func(name, help string, value func(m *scale.Metrics) float64) counterDesc {
		return counterDesc{desc: newDesc(name, help), value: value}
	}

	return &Collector{
		source:       source,
		weight:       newDesc("weight_grams", "Last validated weight in grams."),
		connected:    newDesc("connected", "Whether the driver session is connected."),
		state:        newDesc("session_state", "Driver session state, 1 for the current state.", "state"),
		frameErrors:  newDesc("frame_errors_total", "Discarded frames by reason.", "reason"),
		reconnectRun: newDesc("reconnect_failures", "Consecutive failed reconnect attempts."),
		lastWeightAt: newDesc("last_weight_timestamp_seconds", "Unix time of the last weight update."),
		counters: []counterDesc{
			counter("frames_decoded_total", "Frames that passed validation.",
				func(m *scale.Metrics) float64 { return float64(m.FramesDecoded.Load()) }),
			counter("commands_sent_total", "Commands written to the scale.",
				func(m *scale.Metrics) float64 { return float64(m.CommandsSent.Load()) }),
			counter("command_errors_total", "Failed command writes.",
				func(m *scale.Metrics) float64 { return float64(m.CommandErrors.Load()) }),
			counter("heartbeats_sent_total", "Completed heartbeat sequences.",
				func(m *scale.Metrics) float64 { return float64(m.HeartbeatsSent.Load()) }),
			counter("tares_sent_total", "Tare commands sent.",
				func(m *scale.Metrics) float64 { return float64(m.TaresSent.Load()) }),
			counter("link_lost_total", "Established links found lost.",
				func(m *scale.Metrics) float64 { return float64(m.LinkLostCount.Load()) }),
			counter("reconnect_attempts_total", "Reconnect attempts.",
				func(m *scale.Metrics) float64 { return float64(m.ReconnectAttempts.Load()) }),
		},
	}
}

var states = []scale.State{
	scale.DisconnectedState,
	scale.LinkedState,
	scale.ConnectedState,
	scale.ReconnectPendingState,
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.weight
	ch <- c.connected
	ch <- c.state
	ch <- c.frameErrors
	ch <- c.reconnectRun
	ch <- c.lastWeightAt
	for _, cd := range c.counters {
		ch <- cd.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, drv := range c.source.Drivers() {
		labels := []string{drv.Device().ID(), drv.Protocol()}
		m := drv.Metrics()
		cur := drv.State()

		ch <- prometheus.MustNewConstMetric(c.weight, prometheus.GaugeValue, drv.CurrentWeight(), labels...)
		ch <- prometheus.MustNewConstMetric(c.connected, prometheus.GaugeValue, boolValue(cur.IsConnected()), labels...)
		for _, s := range states {
			ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, boolValue(s == cur), append(labels, s.String())...)
		}

		for reason, value := range map[string]uint64{
			"checksum":  m.ChecksumErrors.Load(),
			"malformed": m.MalformedFrames.Load(),
			"unknown":   m.UnknownFrames.Load(),
		} {
			ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(value), append(labels, reason)...)
		}

		ch <- prometheus.MustNewConstMetric(c.reconnectRun, prometheus.GaugeValue, float64(m.ReconnectGauge.Load()), labels...)
		if at := m.LastWeightAt(); !at.IsZero() {
			ch <- prometheus.MustNewConstMetric(c.lastWeightAt, prometheus.GaugeValue, float64(at.UnixNano())/1e9, labels...)
		}

		for _, cd := range c.counters {
			ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, cd.value(m), labels...)
		}
	}
}

// Handler registers a Collector over source on a new registry, together with the
// Go runtime collectors, and returns the HTTP handler serving it.
func Handler(source DriverSource) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(source)); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
