// Package env provides the configuration shared by the binaries.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/xbee.go/pkg/uart"
)

// Config provides common options to set up a link.
type Config struct {
	Serial uart.Config

	// MQTTBrokerURL specifies the MQTT broker to bridge frames to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// HTTPAddr serves websocket and metrics endpoints.
	HTTPAddr string
	// TCPAddr serves length-prefixed envelope streams.
	TCPAddr string
	// NodeID names this bridge, defaults to the machine ID.
	NodeID string
	// RxTimeout bounds a single receive.
	RxTimeout time.Duration
}

var defaultConfig = Config{
	Serial:    uart.DefaultConfig,
	HTTPAddr:  ":8080",
	RxTimeout: time.Second,
}

func init() {
	defaultConfig.Serial.Port = "/dev/ttyUSB0"
	if err := loadEnv(&defaultConfig, os.LookupEnv); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func loadEnv(c *Config, lookup func(string) (string, bool)) error {
	if val, ok := lookup("XBEE_PORT"); ok && val != "" {
		c.Serial.Port = val
	}
	if val, ok := lookup("XBEE_BAUD"); ok && val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid XBEE_BAUD %q: %v", val, err)
		}
		c.Serial.BaudRate = baud
	}
	if val, ok := lookup("XBEE_MQTT_URL"); ok {
		c.MQTTBrokerURL = val
	}
	if val, ok := lookup("XBEE_HTTP_ADDR"); ok {
		c.HTTPAddr = val
	}
	if val, ok := lookup("XBEE_TCP_ADDR"); ok {
		c.TCPAddr = val
	}
	if val, ok := lookup("XBEE_NODE_ID"); ok && val != "" {
		c.NodeID = val
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Serial.Port, "port", defaultConfig.Serial.Port, "Serial port of the radio.")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial baud rate.")
	flag.IntVar(&defaultConfig.Serial.DataBits, "data-bits", defaultConfig.Serial.DataBits, "Serial data bits (5-9).")
	flag.StringVar(&defaultConfig.Serial.Parity, "parity", defaultConfig.Serial.Parity, "Serial parity: none, even, odd.")
	flag.IntVar(&defaultConfig.Serial.StopBits, "stop-bits", defaultConfig.Serial.StopBits, "Serial stop bits (1, 2).")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "Listen address for websocket and metrics, empty to disable.")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "Listen address for envelope streams, empty to disable.")
	flag.StringVar(&defaultConfig.NodeID, "node-id", defaultConfig.NodeID, "Node ID, defaults to machine ID.")
	flag.DurationVar(&defaultConfig.RxTimeout, "rx-timeout", defaultConfig.RxTimeout, "Timeout of a single receive.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	if conf.NodeID == "" {
		conf.NodeID = MachineID()
	}
	return &conf
}
