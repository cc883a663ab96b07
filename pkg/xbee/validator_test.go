package xbee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	require.Equal(t, byte(0xFF), Checksum(nil))
	require.Equal(t, byte(0xCB), Checksum([]byte{0x23, 0x11}))
	require.Equal(t, byte(0x00), Checksum([]byte{0x80, 0x7F}))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		frame     []byte
		available int
		expect    error
	}{
		{
			name:      "valid",
			frame:     []byte{0x7E, 0x00, 0x02, 0x23, 0x11, 0xCB},
			available: 6,
		},
		{
			name:      "valid with trailing bytes",
			frame:     []byte{0x7E, 0x00, 0x02, 0x23, 0x11, 0xCB, 0x7E, 0x00},
			available: 8,
		},
		{
			name:      "delimiter only",
			frame:     []byte{0x7E, 0x00, 0x00},
			available: 1,
			expect:    ErrFrameIncomplete,
		},
		{
			name:      "declared 5 with 6 of 9 bytes",
			frame:     []byte{0x7E, 0x00, 0x05, 0x90, 0x01, 0x02, 0, 0, 0},
			available: 6,
			expect:    ErrFrameIncomplete,
		},
		{
			name:      "largest frame incomplete",
			frame:     []byte{0x7E, 0x00, MaxFrameSize - FrameOverhead, 0x90},
			available: 4,
			expect:    ErrFrameIncomplete,
		},
		{
			name:      "one beyond largest frame",
			frame:     []byte{0x7E, 0x00, MaxFrameSize - FrameOverhead + 1, 0x90},
			available: 4,
			expect:    ErrFrameTooLarge,
		},
		{
			name:      "16-bit length",
			frame:     []byte{0x7E, 0x01, 0x00, 0x90, 0x00, 0x00},
			available: 6,
			expect:    ErrFrameTooLarge,
		},
		{
			name:      "corrupted checksum",
			frame:     []byte{0x7E, 0x00, 0x02, 0x23, 0x11, 0xCA},
			available: 6,
			expect:    ErrChecksumMismatch,
		},
		{
			name:      "available beyond slice",
			frame:     []byte{0x7E, 0x00, 0x02, 0x23},
			available: 10,
			expect:    ErrFrameIncomplete,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, Validate(tc.frame, tc.available))
		})
	}
}
