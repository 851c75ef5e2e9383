package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"tmcl/protocol"
)

// NativePort wraps the tarm/serial implementation
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens a native serial port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	serialConfig := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	}

	port, err := serial.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{
		port: port,
		cfg:  cfg,
	}, nil
}

// Read reads data from the serial port. When a read timeout is configured and
// the port stays silent past it, the underlying driver reports EOF with zero
// bytes; that is surfaced as protocol.ErrTimeout so callers can tell a silent
// module from a closed port.
func (p *NativePort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && err == io.EOF && p.cfg.ReadTimeout > 0 {
		return 0, fmt.Errorf("%s after %dms: %w", p.cfg.Device, p.cfg.ReadTimeout, protocol.ErrTimeout)
	}
	return n, err
}

// Write writes data to the serial port
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input so the next exchange starts on a frame
// boundary.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
