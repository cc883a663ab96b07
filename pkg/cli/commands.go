package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/xbee.go/pkg/xbee"
)

var (
	// SendCmd transmits data to a node.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "DEST DATA... (DATA as text or 0xHEX)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("DEST and DATA required"))
				return
			}
			dest, err := ParseAddress(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			transmit(c, dest.String(), c.Args[1:], func(data []byte) error {
				return ShellFrom(c).Send(dest, data)
			})
		},
	}

	// BroadcastCmd transmits data to every node.
	BroadcastCmd = ishell.Cmd{
		Name:    "broadcast",
		Aliases: []string{"b"},
		Help:    "DATA... (DATA as text or 0xHEX)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("DATA required"))
				return
			}
			transmit(c, "broadcast", c.Args, func(data []byte) error {
				return ShellFrom(c).Send(xbee.BroadcastAddress, data)
			})
		},
	}

	// ATCmd sends a local AT command.
	ATCmd = ishell.Cmd{
		Name: "at",
		Help: "CMD [0xPARAM]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CMD required"))
				return
			}
			var param []byte
			if len(c.Args) > 1 {
				var err error
				if param, err = ParseData(c.Args[1:]); err != nil {
					c.Err(err)
					return
				}
			}
			id, err := ShellFrom(c).AT(c.Args[0], param)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("AT%s sent, frame id %d\n", c.Args[0], id)
		},
	}

	// RecvCmd waits for a received frame.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[TIMEOUT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			timeout := s.Timeout
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid TIMEOUT: %v", err))
					return
				}
				timeout = d
			}
			f, err := s.Recv(timeout)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(f)
		},
	}

	// WatchCmd prints frames as they arrive.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "on|off",
		Func: func(c *ishell.Context) {
			on := len(c.Args) == 0 || c.Args[0] == "on"
			if on {
				ShellFrom(c).Watch(printWriter(c.Println))
			} else {
				ShellFrom(c).Watch(nil)
			}
		},
	}

	// StatsCmd prints link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			c.Println(FormatStats(ShellFrom(c).Link.Stats()))
		},
	}
)

func transmit(c *ishell.Context, to string, args []string, send func([]byte) error) {
	data, err := ParseData(args)
	if err != nil {
		c.Err(err)
		return
	}
	if err := send(data); err != nil {
		c.Err(err)
		return
	}
	c.Printf("%d bytes sent to %s\n", len(data), to)
}

// printWriter prints each write as a line of the shell.
type printWriter func(...interface{})

func (w printWriter) Write(p []byte) (int, error) {
	w(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
