package xbee

import "github.com/robotalks/xbee.go/pkg/rbuf"

// ScanStatus is the outcome of ScanForDelimiter.
type ScanStatus int

const (
	// ScanEmpty means nothing is buffered.
	ScanEmpty ScanStatus = iota
	// ScanFound means the buffer now starts with a delimiter.
	ScanFound
	// ScanShifted means no delimiter was buffered and everything was discarded.
	ScanShifted
)

// String implements fmt.Stringer.
func (s ScanStatus) String() string {
	switch s {
	case ScanEmpty:
		return "empty"
	case ScanFound:
		return "found"
	case ScanShifted:
		return "shifted"
	}
	return "unknown"
}

// ScanResult reports a scan and how many leading bytes it discarded.
type ScanResult struct {
	Status    ScanStatus
	Discarded int
}

// Scanner keeps the consumer side of the ring buffer aligned to frame
// boundaries.
type Scanner struct {
	rb rbuf.Consumer
}

// NewScanner creates a Scanner over the consumer handle.
func NewScanner(c rbuf.Consumer) *Scanner {
	return &Scanner{rb: c}
}

// ScanForDelimiter discards bytes until the buffer starts with a delimiter.
// An already aligned buffer is left untouched.
func (s *Scanner) ScanForDelimiter() ScanResult {
	n := s.rb.Len()
	if n == 0 {
		return ScanResult{Status: ScanEmpty}
	}
	if s.rb.Read(0) == FrameDelim {
		return ScanResult{Status: ScanFound}
	}
	if k, found := s.shiftToDelim(n); found {
		return ScanResult{Status: ScanFound, Discarded: k}
	}
	return ScanResult{Status: ScanShifted, Discarded: n}
}

// DiscardFrame drops the frame at the front by shifting to the next
// delimiter after offset 0, or emptying the buffer when there is none.
// It returns the number of bytes discarded.
func (s *Scanner) DiscardFrame() int {
	n := s.rb.Len()
	k, _ := s.shiftToDelim(n)
	return k
}

func (s *Scanner) shiftToDelim(n int) (int, bool) {
	for i := 1; i < n; i++ {
		if s.rb.Read(i) == FrameDelim {
			s.rb.Shift(i)
			return i, true
		}
	}
	s.rb.Shift(n)
	return n, false
}
