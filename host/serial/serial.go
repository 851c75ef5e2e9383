// Package serial provides the byte-stream transport used by a TMCL bus over
// RS-232/RS-485/USB serial links.
package serial

import (
	"io"

	bugst "go.bug.st/serial"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (TMCL modules default to 9600)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the stock configuration for a TMCL module.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        9600, // Trinamic factory default
		ReadTimeout: 500,  // bounds a read against a silent module
	}
}

// ListPorts enumerates the serial device names present on this machine.
// tarm/serial has no enumeration support, so this goes through
// go.bug.st/serial instead.
func ListPorts() ([]string, error) {
	return bugst.GetPortsList()
}
