// Package canbus provides the frame-oriented transport used by a TMCL bus on
// CAN networks, where the module address travels in the arbitration ID
// instead of the payload.
package canbus

import (
	"fmt"
	"time"

	"github.com/angelodlfrtr/go-can"
	"github.com/angelodlfrtr/go-can/transports"

	"tmcl/protocol"
)

// FrameConn is a single CAN connection as seen by the bus: one frame out, one
// frame in. Implementations must return protocol.ErrTimeout (wrapped is fine)
// when no frame arrives within the timeout.
type FrameConn interface {
	Send(id uint32, data []byte) error
	Receive(timeout time.Duration) (id uint32, data []byte, err error)
	Close() error
}

// busConn adapts a go-can bus to FrameConn.
type busConn struct {
	bus *can.Bus
}

// Wrap adapts an already-open go-can bus. The caller keeps ownership of
// opening; Close tears the bus down.
func Wrap(b *can.Bus) FrameConn {
	return &busConn{bus: b}
}

// OpenAnalyzer connects through a USB-CAN analyzer on a serial device.
func OpenAnalyzer(device string, baud int) (FrameConn, error) {
	tr := &transports.USBCanAnalyzer{Port: device, BaudRate: baud}
	b := can.NewBus(tr)
	if err := b.Open(); err != nil {
		return nil, fmt.Errorf("failed to open CAN analyzer on %s: %w", device, err)
	}
	return &busConn{bus: b}, nil
}

func (c *busConn) Send(id uint32, data []byte) error {
	if len(data) > 8 {
		return fmt.Errorf("CAN payload too long: %d bytes", len(data))
	}
	frm := can.Frame{
		ArbitrationID: id,
		DLC:           uint8(len(data)),
	}
	copy(frm.Data[:], data)
	return c.bus.Write(&frm)
}

func (c *busConn) Receive(timeout time.Duration) (uint32, []byte, error) {
	select {
	case frm, ok := <-c.bus.ReadChan():
		if !ok {
			return 0, nil, fmt.Errorf("CAN bus closed")
		}
		data := make([]byte, frm.DLC)
		copy(data, frm.Data[:frm.DLC])
		return frm.ArbitrationID, data, nil
	case <-time.After(timeout):
		return 0, nil, fmt.Errorf("no CAN frame within %v: %w", timeout, protocol.ErrTimeout)
	}
}

func (c *busConn) Close() error {
	return c.bus.Close()
}
