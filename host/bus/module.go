package bus

import (
	"fmt"

	"tmcl/protocol"
)

// Module is a handle on one addressable controller module. Constructing it
// performs no I/O; there is no device-side teardown when it is dropped.
type Module struct {
	bus  *Bus
	addr uint8
}

// Module returns a handle bound to this bus for a module address in 1-255.
func (b *Bus) Module(address uint8) (*Module, error) {
	if address == 0 {
		return nil, &protocol.EncodingError{Field: "address", Value: 0}
	}
	return &Module{bus: b, addr: address}, nil
}

// Motor is a convenience factory for a single axis on a module.
func (b *Bus) Motor(address, axis uint8) (*Motor, error) {
	m, err := b.Module(address)
	if err != nil {
		return nil, err
	}
	return m.Motor(axis), nil
}

// Address returns the module address this handle is bound to.
func (m *Module) Address() uint8 {
	return m.addr
}

// Motor returns a handle for one axis on this module. How many axes the
// module actually has is device-family-dependent and not checked here.
func (m *Module) Motor(axis uint8) *Motor {
	mt := &Motor{bus: m.bus, addr: m.addr, axis: axis}
	mt.params = &AxisParams{motor: mt}
	return mt
}

// GetGlobal reads global parameter n from a parameter bank.
func (m *Module) GetGlobal(bank, n uint8) (int32, error) {
	reply, err := m.bus.Send(m.addr, protocol.GGP, n, bank, 0)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// SetGlobal writes global parameter n in a parameter bank and returns the
// value the module echoed back.
func (m *Module) SetGlobal(bank, n uint8, value int64) (int32, error) {
	reply, err := m.bus.Send(m.addr, protocol.SGP, n, bank, value)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// StoreGlobal persists global parameter n to the module's EEPROM.
func (m *Module) StoreGlobal(bank, n uint8) error {
	_, err := m.bus.Send(m.addr, protocol.STGP, n, bank, 0)
	return err
}

// RestoreGlobal reloads global parameter n from the module's EEPROM.
func (m *Module) RestoreGlobal(bank, n uint8) error {
	_, err := m.bus.Send(m.addr, protocol.RSGP, n, bank, 0)
	return err
}

// FirmwareVersion queries the module for its type and firmware revision.
// The binary reply packs the module number into the upper 16 bits and the
// major/minor revision into the lower two bytes.
func (m *Module) FirmwareVersion() (string, error) {
	reply, err := m.bus.Send(m.addr, protocol.GetFirmwareVersion, 1, 0, 0)
	if err != nil {
		return "", err
	}
	v := uint32(reply.Value)
	return fmt.Sprintf("TMCM-%d V%d.%02d", v>>16, (v>>8)&0xFF, v&0xFF), nil
}
