package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		in   string
		addr xbee.Address
		ok   bool
	}{
		{"0013A20040A1B2C3", 0x0013A20040A1B2C3, true},
		{"0x1234", 0x1234, true},
		{"0XFFFF", xbee.BroadcastAddress, true},
		{"broadcast", xbee.BroadcastAddress, true},
		{"*", xbee.BroadcastAddress, true},
		{"node", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		addr, err := ParseAddress(tc.in)
		if !tc.ok {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.addr, addr, tc.in)
	}
}

func TestParseData(t *testing.T) {
	data, err := ParseData([]string{"0x7e7d11"})
	require.NoError(t, err)
	require.Equal(t, []byte{0x7E, 0x7D, 0x11}, data)

	data, err = ParseData([]string{"hello", "world"})
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), data)

	data, err = ParseData([]string{"0x12", "text"})
	require.NoError(t, err)
	require.Equal(t, []byte("0x12 text"), data)

	_, err = ParseData([]string{"0xZZ"})
	require.Error(t, err)
}

func testLink() (*xbee.Link, *bytes.Buffer) {
	var out bytes.Buffer
	l := xbee.NewLink(&out)
	l.Init()
	return l, &out
}

func TestShellSendAndAT(t *testing.T) {
	l, out := testLink()
	s := New(l)

	require.NoError(t, s.Send(0x42, []byte("hi")))
	f, err := xbee.BuildTX([]byte("hi"), 0x42, 0)
	require.NoError(t, err)
	require.Equal(t, xbee.Escape(nil, f), out.Bytes())

	out.Reset()
	id, err := s.AT("nj", nil)
	require.NoError(t, err)
	require.Equal(t, byte(1), id)
	require.Equal(t, []byte{0x7E, 0x00, 0x04, 0x08, 0x01, 'N', 'J', 0x5E}, out.Bytes())

	id, err = s.AT("ID", []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, byte(2), id)
	require.Contains(t, FormatStats(s.Link.Stats()), "frames transmitted: 3")
}

func TestShellRecv(t *testing.T) {
	l, _ := testLink()
	s := New(l)
	_, err := s.Recv(time.Millisecond)
	require.Error(t, err)

	for i := 0; i < DefaultInboxSize+2; i++ {
		f, err := xbee.EncodeFrame([]byte{byte(xbee.FrameModemStatus), byte(i)})
		require.NoError(t, err)
		s.HandleFrame(context.Background(), f)
	}
	f, err := s.Recv(time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, f.Data())
}

func TestShellWatch(t *testing.T) {
	l, _ := testLink()
	s := New(l)
	var w bytes.Buffer
	s.Watch(&w)
	f, err := xbee.EncodeFrame([]byte{byte(xbee.FrameModemStatus), 0x06})
	require.NoError(t, err)
	s.HandleFrame(context.Background(), f)
	require.Equal(t, "MODEM_STATUS [06]\n", w.String())
	_, err = s.Recv(time.Millisecond)
	require.Error(t, err)

	s.Watch(nil)
	s.HandleFrame(context.Background(), f)
	got, err := s.Recv(time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestPrintWriter(t *testing.T) {
	var lines []string
	w := printWriter(func(v ...interface{}) {
		lines = append(lines, v[0].(string))
	})
	n, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []string{"line"}, lines)
}
