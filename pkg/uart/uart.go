// Package uart connects a serial port to the link layer.
//
// The goroutine running Port.Pump is the only producer of received bytes,
// the counterpart of a receive interrupt handler. Port.WriteByte transmits
// one byte and blocks until the driver accepted it.
package uart

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"
	"go.bug.st/serial"

	fx "github.com/robotalks/xbee.go/pkg/framework"
)

// Config defines serial parameters.
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	// Parity is one of none, even, odd.
	Parity   string
	StopBits int
}

// DefaultConfig matches the factory settings of the radio, 9600 8N1.
var DefaultConfig = Config{
	BaudRate: 9600,
	DataBits: 8,
	Parity:   "none",
	StopBits: 1,
}

// ConfigurationError reports an invalid serial parameter.
type ConfigurationError struct {
	Param string
	Value interface{}
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Value)
}

var parities = map[string]serial.Parity{
	"none": serial.NoParity,
	"even": serial.EvenParity,
	"odd":  serial.OddParity,
}

var stopBits = map[int]serial.StopBits{
	1: serial.OneStopBit,
	2: serial.TwoStopBits,
}

// Validate checks all parameters and reports every invalid one.
func (c *Config) Validate() error {
	var errs fx.AggregatedError
	errs.Title = "invalid serial configuration:"
	if c.BaudRate <= 0 {
		errs.Add(&ConfigurationError{Param: "baud rate", Value: c.BaudRate})
	}
	if c.DataBits < 5 || c.DataBits > 9 {
		errs.Add(&ConfigurationError{Param: "data bits", Value: c.DataBits})
	}
	if _, ok := parities[strings.ToLower(c.Parity)]; !ok {
		errs.Add(&ConfigurationError{Param: "parity", Value: c.Parity})
	}
	if _, ok := stopBits[c.StopBits]; !ok {
		errs.Add(&ConfigurationError{Param: "stop bits", Value: c.StopBits})
	}
	return errs.Aggregate()
}

// Mode converts the configuration to a serial.Mode.
func (c *Config) Mode() (*serial.Mode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   parities[strings.ToLower(c.Parity)],
		StopBits: stopBits[c.StopBits],
	}, nil
}

// Port is an open serial port.
type Port struct {
	Name string

	rwc       io.ReadWriteCloser
	wbuf      [1]byte
	closeOnce sync.Once
	closeErr  error
}

// Open validates the configuration and opens the port. Nothing is opened
// when the configuration is invalid.
func Open(c *Config) (*Port, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Port, err)
	}
	glog.Infof("opened %s at %d baud", c.Port, c.BaudRate)
	return NewPort(c.Port, p), nil
}

// NewPort wraps an already open stream.
func NewPort(name string, rwc io.ReadWriteCloser) *Port {
	return &Port{Name: name, rwc: rwc}
}

// WriteByte implements io.ByteWriter. It must not be called concurrently.
func (p *Port) WriteByte(b byte) error {
	p.wbuf[0] = b
	for {
		n, err := p.rwc.Write(p.wbuf[:])
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
	}
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.rwc.Close()
	})
	return p.closeErr
}

// Pump returns a Runnable which delivers every received byte to h until the
// context is canceled or the port fails. The port is closed when it stops.
func (p *Port) Pump(h io.Writer) fx.Runnable {
	return fx.NamedRun("uart "+p.Name, fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, p, func() error {
			return p.pump(h)
		})
	}))
}

func (p *Port) pump(h io.Writer) error {
	buf := make([]byte, 128)
	for {
		n, err := p.rwc.Read(buf)
		if n > 0 {
			glog.V(4).Infof("%s RCV % X", p.Name, buf[:n])
			h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", p.Name, err)
		}
	}
}
