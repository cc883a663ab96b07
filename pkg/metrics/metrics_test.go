package metrics

import (
	"bytes"
	"io/ioutil"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

func TestLinkMetricsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLinkMetrics(reg)

	var out bytes.Buffer
	link := xbee.NewLink(&out, xbee.WithEventHandler(m))
	link.Init()
	require.NoError(t, link.Transmit([]byte("x"), xbee.BroadcastAddress, 0))

	peer := xbee.NewLink(&bytes.Buffer{}, xbee.WithEventHandler(m))
	peer.Init()
	peer.RxHandler().Write([]byte{0x01, 0x02})
	peer.RxHandler().Write(out.Bytes())
	_, err := peer.ReceiveTimeout(time.Second)
	require.NoError(t, err)
	peer.RxHandler().Write([]byte{0x7E, 0x00, 0x01, 0x90, 0x00})
	_, err = peer.ReceiveTimeout(time.Second)
	require.Equal(t, xbee.ErrChecksumMismatch, err)

	require.Equal(t, float64(1), testutil.ToFloat64(m.Frames.WithLabelValues("tx")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Frames.WithLabelValues("rx")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.FramesDropped.WithLabelValues("checksum")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.GarbageBytes))
}

func TestDropReason(t *testing.T) {
	require.Equal(t, "checksum", DropReason(xbee.ErrChecksumMismatch))
	require.Equal(t, "too_large", DropReason(xbee.ErrFrameTooLarge))
	require.Equal(t, "other", DropReason(xbee.ErrFrameIncomplete))
}

type fakeStats struct {
	stats    xbee.Stats
	buffered int
}

func (s *fakeStats) Stats() xbee.Stats { return s.stats }
func (s *fakeStats) Buffered() int     { return s.buffered }

func TestRegisterLinkStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := &fakeStats{stats: xbee.Stats{BytesReceived: 10, BytesDropped: 2, DelimiterErrors: 3}, buffered: 5}
	RegisterLinkStats(reg, src)
	RegisterPeers(reg, "websocket", func() int { return 4 })

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			values[mf.GetName()] = c.GetValue()
		} else {
			values[mf.GetName()] = m.GetGauge().GetValue()
		}
	}
	require.Equal(t, map[string]float64{
		"xbee_rx_bytes_total":           10,
		"xbee_rx_bytes_dropped_total":   2,
		"xbee_rx_bytes_discarded_total": 0,
		"xbee_receive_timeouts_total":   3,
		"xbee_rx_buffered_bytes":        5,
		"xbee_bridge_peers":             4,
	}, values)
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewLinkMetrics(reg).Frames.WithLabelValues("rx").Add(3)
	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `xbee_frames_total{direction="rx"} 3`)
	require.Contains(t, string(body), "go_goroutines")
}
