// Package bus drives one TMCL request/reply exchange at a time over an
// exclusively owned transport, and hands out Module/Motor handles bound to
// it.
package bus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tmcl/host/canbus"
	"tmcl/protocol"
)

// DefaultReplyTimeout bounds the wait for a CAN reply frame. Serial reads are
// bounded by the port's own read timeout.
const DefaultReplyTimeout = 2 * time.Second

// Bus owns the transport. It is the only component that reads or writes it;
// every Module and Motor created from this Bus funnels through Send. The
// protocol has no request IDs, so a request is matched to its reply purely by
// holding the transport for the full exchange.
type Bus struct {
	mu      sync.Mutex
	framing protocol.Framing

	// Exactly one of these is set, per the framing chosen at construction.
	port io.ReadWriteCloser
	conn canbus.FrameConn

	replyTimeout time.Duration
}

// New creates a Bus speaking serial framing over a byte-stream port.
func New(port io.ReadWriteCloser) *Bus {
	return &Bus{framing: protocol.FramingSerial, port: port}
}

// NewCAN creates a Bus speaking CAN framing over a frame connection.
func NewCAN(conn canbus.FrameConn) *Bus {
	return &Bus{
		framing:      protocol.FramingCAN,
		conn:         conn,
		replyTimeout: DefaultReplyTimeout,
	}
}

// Framing reports which frame layout this bus was constructed with.
func (b *Bus) Framing() protocol.Framing {
	return b.framing
}

// SetReplyTimeout overrides how long a CAN exchange waits for its reply.
func (b *Bus) SetReplyTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replyTimeout = d
}

// Send performs exactly one request/reply exchange: encode, one write, one
// fixed-size read, decode, classify. The whole cycle runs under the bus lock
// so concurrent callers can never interleave their bytes on the wire.
//
// A non-success status comes back as *protocol.DeviceError carrying the
// status, echoed command and device value. Codec and transport failures
// (*protocol.ChecksumError, *protocol.MalformedFrameError,
// protocol.ErrTimeout) propagate unmodified and are never retried here:
// retrying is only safe once the caller knows the stream is back in a known
// state.
func (b *Bus) Send(address uint8, cmd protocol.Command, typ, motor uint8, value int64) (*protocol.Reply, error) {
	req := protocol.Request{
		Address: address,
		Command: cmd,
		Type:    typ,
		Motor:   motor,
		Value:   value,
	}
	if address == 0 {
		return nil, &protocol.EncodingError{Field: "address", Value: 0}
	}
	data, err := req.Encode(b.framing)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var reply *protocol.Reply
	if b.framing == protocol.FramingCAN {
		reply, err = b.exchangeCAN(address, data)
	} else {
		reply, err = b.exchangeSerial(data)
	}
	if err != nil {
		return nil, err
	}

	if !reply.Status.OK() {
		return nil, &protocol.DeviceError{
			Status:  reply.Status,
			Command: reply.Command,
			Value:   reply.Value,
		}
	}
	return reply, nil
}

func (b *Bus) exchangeSerial(frame []byte) (*protocol.Reply, error) {
	n, err := b.port.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("serial write: %w", err)
	}
	if n != len(frame) {
		return nil, fmt.Errorf("incomplete write: %d/%d bytes", n, len(frame))
	}

	buf := make([]byte, protocol.SerialFrameLen)
	got, err := readFull(b.port, buf)
	if err != nil {
		if got > 0 {
			return nil, &protocol.MalformedFrameError{Framing: protocol.FramingSerial, Got: got}
		}
		if errors.Is(err, protocol.ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("serial read: %w", err)
	}

	return protocol.DecodeReply(protocol.FramingSerial, 0, buf)
}

func (b *Bus) exchangeCAN(address uint8, payload []byte) (*protocol.Reply, error) {
	if err := b.conn.Send(uint32(address), payload); err != nil {
		return nil, fmt.Errorf("CAN write: %w", err)
	}

	id, data, err := b.conn.Receive(b.replyTimeout)
	if err != nil {
		return nil, err
	}

	return protocol.DecodeReply(protocol.FramingCAN, uint8(id), data)
}

// readFull reads until buf is filled or the transport gives up. A zero-byte
// read is treated as a timeout so a misbehaving port cannot spin the loop.
func readFull(r io.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, protocol.ErrTimeout
		}
	}
	return total, nil
}

// Close closes the underlying transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framing == protocol.FramingCAN {
		return b.conn.Close()
	}
	return b.port.Close()
}
