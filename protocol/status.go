package protocol

import "fmt"

// Status is a device-reported outcome of processing one request frame. The
// numbering is fixed by the module firmware; the client never invents codes.
type Status uint8

const (
	StatusWrongChecksum       Status = 1
	StatusInvalidCommand      Status = 2
	StatusWrongType           Status = 3
	StatusInvalidValue        Status = 4
	StatusEEPROMLocked        Status = 5
	StatusCommandNotAvailable Status = 6
	StatusSuccess             Status = 100
	StatusLoadedIntoEEPROM    Status = 101
)

var statusNames = map[Status]string{
	StatusWrongChecksum:       "wrong checksum",
	StatusInvalidCommand:      "invalid command",
	StatusWrongType:           "wrong type",
	StatusInvalidValue:        "invalid value",
	StatusEEPROMLocked:        "configuration EEPROM locked",
	StatusCommandNotAvailable: "command not available",
	StatusSuccess:             "success",
	StatusLoadedIntoEEPROM:    "command loaded into EEPROM",
}

// OK reports whether the status is a success outcome. Modules report 101
// instead of 100 while a command is being stored in download mode; both count.
func (s Status) OK() bool {
	return s == StatusSuccess || s == StatusLoadedIntoEEPROM
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}
