// Package metrics exposes link counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

const namespace = "xbee"

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// LinkMetrics counts link events. Register it as the EventHandler of a
// link.
type LinkMetrics struct {
	Frames        *prometheus.CounterVec // labels: direction=rx|tx
	FramesDropped *prometheus.CounterVec // labels: reason
	GarbageBytes  prometheus.Counter
}

// NewLinkMetrics registers and returns link event metrics.
func NewLinkMetrics(reg prometheus.Registerer) *LinkMetrics {
	m := &LinkMetrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Valid frames received or transmitted.",
		}, []string{"direction"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Received frames discarded as invalid.",
		}, []string{"reason"}),
		GarbageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "garbage_bytes_total",
			Help:      "Bytes skipped while looking for a frame delimiter.",
		}),
	}
	reg.MustRegister(m.Frames, m.FramesDropped, m.GarbageBytes)
	return m
}

// HandleEvent implements xbee.EventHandler.
func (m *LinkMetrics) HandleEvent(ev xbee.Event) {
	switch ev.Kind {
	case xbee.EventFrameReceived:
		m.Frames.WithLabelValues("rx").Inc()
	case xbee.EventFrameTransmitted:
		m.Frames.WithLabelValues("tx").Inc()
	case xbee.EventFrameDropped:
		m.FramesDropped.WithLabelValues(DropReason(ev.Err)).Inc()
	case xbee.EventGarbageDiscarded:
		m.GarbageBytes.Add(float64(ev.Count))
	}
}

// DropReason maps a receive error to the reason label.
func DropReason(err error) string {
	switch err {
	case xbee.ErrChecksumMismatch:
		return "checksum"
	case xbee.ErrFrameTooLarge:
		return "too_large"
	}
	return "other"
}

// StatsSource is implemented by xbee.Link.
type StatsSource interface {
	Stats() xbee.Stats
	Buffered() int
}

// RegisterLinkStats exposes the counters kept by the link itself.
func RegisterLinkStats(reg prometheus.Registerer, src StatsSource) {
	counter := func(name, help string, value func(xbee.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(value(src.Stats()))
		})
	}
	reg.MustRegister(
		counter("rx_bytes_total", "Bytes delivered by the serial port.",
			func(s xbee.Stats) uint64 { return s.BytesReceived }),
		counter("rx_bytes_dropped_total", "Bytes dropped because the receive buffer was full.",
			func(s xbee.Stats) uint64 { return s.BytesDropped }),
		counter("rx_bytes_discarded_total", "Bytes consumed by discarded frames and garbage.",
			func(s xbee.Stats) uint64 { return s.BytesDiscarded }),
		counter("receive_timeouts_total", "Receives that timed out without a delimiter.",
			func(s xbee.Stats) uint64 { return s.DelimiterErrors }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rx_buffered_bytes",
			Help:      "Bytes waiting in the receive buffer.",
		}, func() float64 {
			return float64(src.Buffered())
		}),
	)
}

// RegisterPeers exposes the number of connected peers of a bridge.
func RegisterPeers(reg prometheus.Registerer, bridge string, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "bridge_peers",
		Help:        "Connected bridge peers.",
		ConstLabels: prometheus.Labels{"bridge": bridge},
	}, func() float64 {
		return float64(count())
	}))
}
