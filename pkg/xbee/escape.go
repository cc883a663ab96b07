package xbee

import "io"

// NeedsEscape tells if b must be escaped after the delimiter.
func NeedsEscape(b byte) bool {
	switch b {
	case FrameDelim, EscapeByte, XON, XOFF:
		return true
	}
	return false
}

// Unescape removes escape sequences from frame in place, leaving frame[0]
// (the delimiter) untouched. It returns the number of bytes removed, so the
// logical content is frame[:len(frame)-removed].
//
// A trailing escape marker has nothing to unescape; it is dropped, counted as
// removed and reported with ErrTruncatedEscape.
func Unescape(frame []byte) (removed int, err error) {
	w := 1
	for r := 1; r < len(frame); r, w = r+1, w+1 {
		if frame[r] != EscapeByte {
			frame[w] = frame[r]
			continue
		}
		r++
		removed++
		if r >= len(frame) {
			return removed, ErrTruncatedEscape
		}
		frame[w] = frame[r] ^ EscapeMask
	}
	return removed, nil
}

// Escape appends the on-wire form of frame to dst. frame[0] is written
// as-is.
func Escape(dst, frame []byte) []byte {
	if len(frame) == 0 {
		return dst
	}
	dst = append(dst, frame[0])
	for _, b := range frame[1:] {
		if NeedsEscape(b) {
			dst = append(dst, EscapeByte, b^EscapeMask)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// WriteEscaped writes the on-wire form of frame one byte at a time.
func WriteEscaped(w io.ByteWriter, frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	if err := w.WriteByte(frame[0]); err != nil {
		return err
	}
	for _, b := range frame[1:] {
		if NeedsEscape(b) {
			if err := w.WriteByte(EscapeByte); err != nil {
				return err
			}
			b ^= EscapeMask
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
