// Package protocol implements the TMCL request/reply wire protocol spoken by
// addressable Trinamic stepper-motor controller modules.
package protocol

// Framing selects how frames are laid out on the transport. Serial framing
// carries the module address inside the frame; CAN framing moves it into the
// transport's arbitration ID. The variant is fixed when a bus is constructed
// and is never inferred from data.
type Framing int

const (
	FramingSerial Framing = iota
	FramingCAN
)

// Frame sizes per framing variant.
const (
	SerialFrameLen = 9 // full frame including address and checksum
	CANPayloadLen  = 8 // module address travels in the arbitration ID
)

func (f Framing) String() string {
	switch f {
	case FramingSerial:
		return "serial"
	case FramingCAN:
		return "can"
	default:
		return "unknown"
	}
}
