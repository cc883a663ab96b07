package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/xbee.go/pkg/bridge"
	"github.com/robotalks/xbee.go/pkg/xbee"
)

type chanTransmitter chan bridge.TransmitRequest

func (c chanTransmitter) Transmit(payload []byte, dest xbee.Address, opts byte) error {
	c <- bridge.TransmitRequest{Dest: dest, Options: opts, Data: payload}
	return nil
}

func TestHandler(t *testing.T) {
	tx := make(chanTransmitter, 1)
	hub := bridge.NewHub(tx)
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()
	peer := New(conn)

	deadline := time.Now().Add(5 * time.Second)
	for hub.Len() == 0 {
		require.True(t, time.Now().Before(deadline), "peer not registered")
		time.Sleep(time.Millisecond)
	}

	body := []byte{byte(xbee.FrameRX), 0, 0, 0, 0, 0, 0, 0, 0x09, 0xFF, 0xFE, 0x01, 'o', 'k'}
	f, err := xbee.EncodeFrame(body)
	require.NoError(t, err)
	hub.HandleFrame(context.Background(), f)

	pkt, err := peer.ReadPacket()
	require.NoError(t, err)
	var msg bridge.Received
	require.NoError(t, msg.Unmarshal(pkt))
	require.Equal(t, xbee.Address(9), msg.Source)
	require.Equal(t, []byte("ok"), msg.Data)

	req := bridge.TransmitRequest{Dest: xbee.BroadcastAddress, Data: []byte("hello")}
	pkt, err = req.Marshal()
	require.NoError(t, err)
	require.NoError(t, peer.WritePacket(pkt))
	select {
	case got := <-tx:
		require.Equal(t, req, got)
	case <-time.After(5 * time.Second):
		t.Fatal("nothing transmitted")
	}
}
