package bus

import "tmcl/protocol"

// Motor is one axis on one module. Every method maps to a single Bus.Send
// with this motor's bound address and axis index.
type Motor struct {
	bus    *Bus
	addr   uint8
	axis   uint8
	params *AxisParams
}

func (m *Motor) send(cmd protocol.Command, typ uint8, value int64) (*protocol.Reply, error) {
	return m.bus.Send(m.addr, cmd, typ, m.axis, value)
}

// Axis returns the keyed axis-parameter accessor for this motor.
func (m *Motor) Axis() *AxisParams {
	return m.params
}

// RotateRight spins the motor in the positive direction at the given
// velocity (device units).
func (m *Motor) RotateRight(velocity int64) error {
	_, err := m.send(protocol.ROR, 0, velocity)
	return err
}

// RotateLeft spins the motor in the negative direction at the given velocity.
func (m *Motor) RotateLeft(velocity int64) error {
	_, err := m.send(protocol.ROL, 0, velocity)
	return err
}

// Stop halts the motor using its configured stop ramp.
func (m *Motor) Stop() error {
	_, err := m.send(protocol.MST, 0, 0)
	return err
}

// MoveAbsolute moves to an absolute position and returns the target the
// module echoed back.
func (m *Motor) MoveAbsolute(position int64) (int32, error) {
	reply, err := m.send(protocol.MVP, protocol.MVPAbsolute, position)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// MoveRelative moves by an offset from the current target position.
func (m *Motor) MoveRelative(offset int64) (int32, error) {
	reply, err := m.send(protocol.MVP, protocol.MVPRelative, offset)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// ReferenceSearch controls the homing sequence. rfsType is one of RFSStart,
// RFSStop or RFSStatus; for RFSStatus the returned value is zero once the
// search has finished.
func (m *Motor) ReferenceSearch(rfsType uint8) (int32, error) {
	reply, err := m.send(protocol.RFS, rfsType, 0)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// RunSubroutine starts the TMCL application stored on the module at the
// given program address.
func (m *Motor) RunSubroutine(address int64) (int32, error) {
	reply, err := m.send(protocol.RunApplication, 1, address)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// Send is the raw escape hatch: any opcode and type byte against this
// motor's address and axis.
func (m *Motor) Send(cmd protocol.Command, typ uint8, value int64) (*protocol.Reply, error) {
	return m.send(cmd, typ, value)
}

// ActualPosition reads the motor's current position counter.
func (m *Motor) ActualPosition() (int32, error) {
	return m.params.Get("actual_position")
}

// ActualSpeed reads the motor's current velocity.
func (m *Motor) ActualSpeed() (int32, error) {
	return m.params.Get("actual_speed")
}
