package protocol

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by transport adapters when a read exceeds the
// configured timeout. The bus never retries on its own: with no request
// correlation on the wire, a late reply would be misattributed to the next
// request.
var ErrTimeout = errors.New("transport read timeout")

// EncodingError reports a caller-supplied field that does not fit its wire
// representation. It is raised before any I/O happens.
type EncodingError struct {
	Field string
	Value int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tmcl: %s out of range: %d", e.Field, e.Value)
}

// MalformedFrameError reports a reply shorter than the fixed frame size.
type MalformedFrameError struct {
	Framing Framing
	Got     int
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("tmcl: malformed %s reply: got %d of %d bytes",
		e.Framing, e.Got, e.Framing.replyLen())
}

func (f Framing) replyLen() int {
	if f == FramingCAN {
		return CANPayloadLen
	}
	return SerialFrameLen
}

// ChecksumError reports a reply whose trailing checksum disagrees with the
// sum computed over the frame body. It indicates line corruption; the
// exchange is not retried automatically.
type ChecksumError struct {
	Want uint8
	Got  uint8
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("tmcl: reply checksum mismatch: computed 0x%02x, frame carries 0x%02x", e.Want, e.Got)
}

// DeviceError reports a frame the module accepted but rejected with a
// non-success status. This is a normal outcome, distinct from transport
// failures, so callers can correct input and resend without tearing down the
// connection.
type DeviceError struct {
	Status  Status
	Command Command
	Value   int32
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("tmcl: %s rejected: %s (value %d)", e.Command, e.Status, e.Value)
}

// UnknownParameterError reports a parameter name absent from the fixed
// name-to-number table. It is raised before any I/O happens.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("tmcl: unknown parameter %q", e.Name)
}
