package xbee

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/xbee.go/pkg/rbuf"
)

func newScanner(t *testing.T, in ...byte) (*Scanner, rbuf.Consumer) {
	b := rbuf.New(0)
	p := b.Producer()
	for _, x := range in {
		require.NoError(t, p.Append(x))
	}
	return NewScanner(b.Consumer()), b.Consumer()
}

func TestScanEmpty(t *testing.T) {
	s, _ := newScanner(t)
	require.Equal(t, ScanResult{Status: ScanEmpty}, s.ScanForDelimiter())
}

func TestScanAligned(t *testing.T) {
	s, c := newScanner(t, 0x7E, 0x00, 0x7E)
	require.Equal(t, ScanResult{Status: ScanFound}, s.ScanForDelimiter())
	require.Equal(t, 3, c.Len())
}

func TestScanSkipsGarbage(t *testing.T) {
	s, c := newScanner(t, 0x01, 0x7E, 0x00, 0x05, 0x90)
	require.Equal(t, ScanResult{Status: ScanFound, Discarded: 1}, s.ScanForDelimiter())
	require.Equal(t, 4, c.Len())
	require.Equal(t, FrameDelim, c.Read(0))
}

func TestScanNoDelimiter(t *testing.T) {
	for _, n := range []int{1, 2, 17, rbuf.DefaultCapacity - 1} {
		in := make([]byte, n)
		for i := range in {
			in[i] = byte(i) &^ 0x40 // never 0x7E
		}
		s, c := newScanner(t, in...)
		require.Equal(t, ScanResult{Status: ScanShifted, Discarded: n}, s.ScanForDelimiter())
		require.Equal(t, 0, c.Len())
		require.Equal(t, ScanResult{Status: ScanEmpty}, s.ScanForDelimiter())
	}
}

func TestDiscardFrame(t *testing.T) {
	s, c := newScanner(t, 0x7E, 0x01, 0x02, 0x7E, 0x03)
	require.Equal(t, 3, s.DiscardFrame())
	require.Equal(t, 2, c.Len())
	require.Equal(t, FrameDelim, c.Read(0))

	require.Equal(t, 2, s.DiscardFrame())
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, s.DiscardFrame())
}

func TestScanStatusString(t *testing.T) {
	require.Equal(t, "found", ScanFound.String())
	require.Equal(t, "shifted", ScanShifted.String())
	require.Equal(t, "empty", ScanEmpty.String())
}
