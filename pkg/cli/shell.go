// Package cli provides an ishell backed interactive shell for a link.
package cli

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

// Link is the part of xbee.Link used by the shell.
type Link interface {
	Transmit(payload []byte, dest xbee.Address, opts byte) error
	SendATCommand(frameID byte, cmd string, param []byte) error
	Stats() xbee.Stats
}

// DefaultInboxSize is the number of received frames kept for recv.
const DefaultInboxSize = 64

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	Timeout     time.Duration

	Shell *ishell.Shell
	Link  Link

	inbox     chan xbee.Frame
	watchLock sync.Mutex
	watch     io.Writer
	frameID   byte
}

const shellKey = "$shell"

var (
	evalOnly    bool
	recvTimeout = time.Second

	commands = []*ishell.Cmd{
		&SendCmd,
		&BroadcastCmd,
		&ATCmd,
		&RecvCmd,
		&WatchCmd,
		&StatsCmd,
	}
)

// SetupFlags binds shell flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.DurationVar(&recvTimeout, "recv-timeout", recvTimeout, "Default timeout of recv.")
}

// New creates a shell over link without the ishell frontend.
func New(link Link) *Shell {
	return &Shell{
		Interactive: !evalOnly,
		Timeout:     recvTimeout,
		Link:        link,
		inbox:       make(chan xbee.Frame, DefaultInboxSize),
	}
}

// NewInteractive creates a shell with the ishell frontend.
func NewInteractive(link Link) *Shell {
	s := New(link)
	s.Shell = ishell.New()
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("xbee > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// HandleFrame implements bridge.FrameHandler. The oldest frame is dropped
// when the inbox is full.
func (s *Shell) HandleFrame(ctx context.Context, f xbee.Frame) {
	s.watchLock.Lock()
	w := s.watch
	s.watchLock.Unlock()
	if w != nil {
		fmt.Fprintln(w, f)
		return
	}
	for {
		select {
		case s.inbox <- f:
			return
		default:
		}
		select {
		case <-s.inbox:
		default:
		}
	}
}

// Send transmits data to dest.
func (s *Shell) Send(dest xbee.Address, data []byte) error {
	return s.Link.Transmit(data, dest, 0)
}

// AT sends a local AT command and returns the frame id used.
func (s *Shell) AT(cmd string, param []byte) (byte, error) {
	s.frameID++
	if s.frameID == 0 {
		s.frameID = 1
	}
	return s.frameID, s.Link.SendATCommand(s.frameID, strings.ToUpper(cmd), param)
}

// Recv waits for the next received frame.
func (s *Shell) Recv(timeout time.Duration) (xbee.Frame, error) {
	select {
	case f := <-s.inbox:
		return f, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no frame received in %s", timeout)
	}
}

// Watch prints every received frame to w as it arrives, or stops watching
// when w is nil.
func (s *Shell) Watch(w io.Writer) {
	s.watchLock.Lock()
	s.watch = w
	s.watchLock.Unlock()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// ParseAddress parses a destination: a 64-bit hex address, optionally
// prefixed with 0x, or "broadcast".
func ParseAddress(s string) (xbee.Address, error) {
	if strings.EqualFold(s, "broadcast") || s == "*" {
		return xbee.BroadcastAddress, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return xbee.Address(v), nil
}

// ParseData parses command arguments into a payload. A single argument
// prefixed with 0x is decoded as hex, otherwise the arguments are joined
// by spaces.
func ParseData(args []string) ([]byte, error) {
	if len(args) == 1 && strings.HasPrefix(strings.ToLower(args[0]), "0x") {
		data, err := hex.DecodeString(args[0][2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %v", err)
		}
		return data, nil
	}
	return []byte(strings.Join(args, " ")), nil
}

// FormatStats formats link counters for display.
func FormatStats(st xbee.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "bytes received:     %d\n", st.BytesReceived)
	fmt.Fprintf(&b, "bytes dropped:      %d\n", st.BytesDropped)
	fmt.Fprintf(&b, "bytes discarded:    %d\n", st.BytesDiscarded)
	fmt.Fprintf(&b, "frames received:    %d\n", st.FramesReceived)
	fmt.Fprintf(&b, "frames transmitted: %d\n", st.FramesTransmitted)
	fmt.Fprintf(&b, "checksum errors:    %d\n", st.ChecksumErrors)
	fmt.Fprintf(&b, "size errors:        %d\n", st.SizeErrors)
	fmt.Fprintf(&b, "receive timeouts:   %d", st.DelimiterErrors)
	return b.String()
}
