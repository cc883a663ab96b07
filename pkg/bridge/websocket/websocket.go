// Package websocket serves link peers over websocket.
package websocket

import (
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/xbee.go/pkg/bridge"
)

// ReadWriter implements bridge.PacketReadWriter, one packet per message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements bridge.PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements bridge.PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves each websocket connection as a peer of hub.
func Handler(hub *bridge.Hub) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		addr := conn.Request().RemoteAddr
		glog.V(2).Infof("websocket %s connected", addr)
		err := hub.Serve(conn.Request().Context(), New(conn))
		glog.V(2).Infof("websocket %s disconnected: %v", addr, err)
	})
}
