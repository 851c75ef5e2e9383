package bus

import (
	"sort"

	"tmcl/protocol"
)

// axisParamNumbers is the fixed mapping from parameter name to the number
// the protocol assigns it. Looking parameters up by name (instead of letting
// callers pass arbitrary numbers) keeps a typo from silently addressing the
// wrong parameter on the device.
var axisParamNumbers = map[string]uint8{
	"target_position":            0,
	"actual_position":            1,
	"target_speed":               2,
	"actual_speed":               3,
	"max_positioning_speed":      4,
	"max_acceleration":           5,
	"max_current":                6,
	"standby_current":            7,
	"target_position_reached":    8,
	"ref_switch_status":          9,
	"right_limit_status":         10,
	"left_limit_status":          11,
	"right_limit_switch_disable": 12,
	"left_limit_switch_disable":  13,
	"minimum_speed":              130,
	"actual_acceleration":        135,
	"ramp_mode":                  138,
	"microstep_resolution":       140,
	"soft_stop_flag":             149,
	"ramp_divisor":               153,
	"pulse_divisor":              154,
	"referencing_mode":           193,
	"referencing_search_speed":   194,
	"referencing_switch_speed":   195,
	"freewheeling_delay":         204,
	"power_down_delay":           214,
}

// AxisParamNames lists every known parameter name, sorted.
func AxisParamNames() []string {
	names := make([]string, 0, len(axisParamNumbers))
	for name := range axisParamNumbers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AxisParams is a keyed view over a motor's axis parameters. It owns no
// state beyond the motor it is bound to; every read is a GAP exchange and
// every write a SAP exchange.
type AxisParams struct {
	motor *Motor
}

// Number resolves a parameter name. Unknown names fail with
// *protocol.UnknownParameterError before any I/O.
func (a *AxisParams) Number(name string) (uint8, error) {
	n, ok := axisParamNumbers[name]
	if !ok {
		return 0, &protocol.UnknownParameterError{Name: name}
	}
	return n, nil
}

// Get reads a named axis parameter from the module.
func (a *AxisParams) Get(name string) (int32, error) {
	n, err := a.Number(name)
	if err != nil {
		return 0, err
	}
	return a.GetNumber(n)
}

// Set writes a named axis parameter and returns the value the module echoed.
func (a *AxisParams) Set(name string, value int64) (int32, error) {
	n, err := a.Number(name)
	if err != nil {
		return 0, err
	}
	return a.SetNumber(n, value)
}

// Store persists a named axis parameter to the module's EEPROM.
func (a *AxisParams) Store(name string) error {
	n, err := a.Number(name)
	if err != nil {
		return err
	}
	_, err = a.motor.send(protocol.STAP, n, 0)
	return err
}

// Restore reloads a named axis parameter from the module's EEPROM.
func (a *AxisParams) Restore(name string) error {
	n, err := a.Number(name)
	if err != nil {
		return err
	}
	_, err = a.motor.send(protocol.RSAP, n, 0)
	return err
}

// GetNumber reads an axis parameter by its raw protocol number.
func (a *AxisParams) GetNumber(n uint8) (int32, error) {
	reply, err := a.motor.send(protocol.GAP, n, 0)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// SetNumber writes an axis parameter by its raw protocol number.
func (a *AxisParams) SetNumber(n uint8, value int64) (int32, error) {
	reply, err := a.motor.send(protocol.SAP, n, value)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}
