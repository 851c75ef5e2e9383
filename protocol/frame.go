package protocol

import (
	"encoding/binary"
	"math"
)

// Request is one TMCL command frame before encoding.
//
// Serial layout (9 bytes):
//
//	[address, command, type, motor, value(int32 BE), checksum]
//
// CAN layout (8-byte payload, address in the arbitration ID):
//
//	[command, type, motor, value(int32 BE), checksum]
//
// The checksum is the unsigned 8-bit sum of all preceding bytes.
type Request struct {
	Address uint8
	Command Command
	Type    uint8
	Motor   uint8
	Value   int64
}

// Encode packs the request into its wire form for the given framing. The
// value must fit a signed 32-bit integer; anything wider fails with
// *EncodingError before any I/O can happen.
func (r Request) Encode(f Framing) ([]byte, error) {
	if r.Value < math.MinInt32 || r.Value > math.MaxInt32 {
		return nil, &EncodingError{Field: "value", Value: r.Value}
	}

	if f == FramingCAN {
		buf := make([]byte, CANPayloadLen)
		buf[0] = uint8(r.Command)
		buf[1] = r.Type
		buf[2] = r.Motor
		binary.BigEndian.PutUint32(buf[3:7], uint32(int32(r.Value)))
		buf[7] = Checksum(buf[:7])
		return buf, nil
	}

	buf := make([]byte, SerialFrameLen)
	buf[0] = r.Address
	buf[1] = uint8(r.Command)
	buf[2] = r.Type
	buf[3] = r.Motor
	binary.BigEndian.PutUint32(buf[4:8], uint32(int32(r.Value)))
	buf[8] = Checksum(buf[:8])
	return buf, nil
}

// Reply is one decoded TMCL reply frame.
type Reply struct {
	ReplyAddress  uint8
	ModuleAddress uint8
	Status        Status
	Command       Command
	Value         int32
}

// DecodeReply validates and decodes a reply frame.
//
// Serial layout (9 bytes):
//
//	[reply address, module address, status, command, value(int32 BE), checksum]
//
// CAN layout (8-byte payload):
//
//	[reply address, status, command, value(int32 BE), checksum]
//
// with the module address taken from envelopeAddr (the arbitration ID). For
// serial framing envelopeAddr is ignored. A short frame fails with
// *MalformedFrameError; a checksum disagreement with *ChecksumError.
func DecodeReply(f Framing, envelopeAddr uint8, data []byte) (*Reply, error) {
	if f == FramingCAN {
		if len(data) < CANPayloadLen {
			return nil, &MalformedFrameError{Framing: f, Got: len(data)}
		}
		if want := Checksum(data[:7]); want != data[7] {
			return nil, &ChecksumError{Want: want, Got: data[7]}
		}
		return &Reply{
			ReplyAddress:  data[0],
			ModuleAddress: envelopeAddr,
			Status:        Status(data[1]),
			Command:       Command(data[2]),
			Value:         int32(binary.BigEndian.Uint32(data[3:7])),
		}, nil
	}

	if len(data) < SerialFrameLen {
		return nil, &MalformedFrameError{Framing: f, Got: len(data)}
	}
	if want := Checksum(data[:8]); want != data[8] {
		return nil, &ChecksumError{Want: want, Got: data[8]}
	}
	return &Reply{
		ReplyAddress:  data[0],
		ModuleAddress: data[1],
		Status:        Status(data[2]),
		Command:       Command(data[3]),
		Value:         int32(binary.BigEndian.Uint32(data[4:8])),
	}, nil
}

// EncodeReply packs a reply into its wire form. The host never sends replies;
// this exists for simulated transports and round-trip tests.
func (r Reply) Encode(f Framing) []byte {
	if f == FramingCAN {
		buf := make([]byte, CANPayloadLen)
		buf[0] = r.ReplyAddress
		buf[1] = uint8(r.Status)
		buf[2] = uint8(r.Command)
		binary.BigEndian.PutUint32(buf[3:7], uint32(r.Value))
		buf[7] = Checksum(buf[:7])
		return buf
	}

	buf := make([]byte, SerialFrameLen)
	buf[0] = r.ReplyAddress
	buf[1] = r.ModuleAddress
	buf[2] = uint8(r.Status)
	buf[3] = uint8(r.Command)
	binary.BigEndian.PutUint32(buf[4:8], uint32(r.Value))
	buf[8] = Checksum(buf[:8])
	return buf
}
