package protocol

import "fmt"

// Command is a TMCL command opcode. The opcode set is defined by the device
// firmware and never changes at runtime.
type Command uint8

// Motion and parameter commands.
const (
	ROR  Command = 1  // rotate right
	ROL  Command = 2  // rotate left
	MST  Command = 3  // motor stop
	MVP  Command = 4  // move to position
	SAP  Command = 5  // set axis parameter
	GAP  Command = 6  // get axis parameter
	STAP Command = 7  // store axis parameter
	RSAP Command = 8  // restore axis parameter
	SGP  Command = 9  // set global parameter
	GGP  Command = 10 // get global parameter
	STGP Command = 11 // store global parameter
	RSGP Command = 12 // restore global parameter
	RFS  Command = 13 // reference search
	SIO  Command = 14 // set digital output
	GIO  Command = 15 // get digital input/output
	CALC Command = 19
	COMP Command = 20
	JC   Command = 21 // jump conditional
	SCO  Command = 30 // set coordinate
	GCO  Command = 31 // get coordinate
	CCO  Command = 32 // capture coordinate
)

// Application control commands.
const (
	StopApplication        Command = 128
	RunApplication         Command = 129
	StepApplication        Command = 130
	ResetApplication       Command = 131
	StartDownloadMode      Command = 132
	QuitDownloadMode       Command = 133
	GetApplicationStatus   Command = 135
	GetFirmwareVersion     Command = 136
	RestoreFactorySettings Command = 137
)

// MVP addressing modes (type field).
const (
	MVPAbsolute uint8 = 0
	MVPRelative uint8 = 1
	MVPCoord    uint8 = 2
)

// RFS sub-commands (type field).
const (
	RFSStart  uint8 = 0
	RFSStop   uint8 = 1
	RFSStatus uint8 = 2
)

var commandNames = map[Command]string{
	ROR:                    "ROR",
	ROL:                    "ROL",
	MST:                    "MST",
	MVP:                    "MVP",
	SAP:                    "SAP",
	GAP:                    "GAP",
	STAP:                   "STAP",
	RSAP:                   "RSAP",
	SGP:                    "SGP",
	GGP:                    "GGP",
	STGP:                   "STGP",
	RSGP:                   "RSGP",
	RFS:                    "RFS",
	SIO:                    "SIO",
	GIO:                    "GIO",
	CALC:                   "CALC",
	COMP:                   "COMP",
	JC:                     "JC",
	SCO:                    "SCO",
	GCO:                    "GCO",
	CCO:                    "CCO",
	StopApplication:        "STOP",
	RunApplication:         "RUN",
	StepApplication:        "STEP",
	ResetApplication:       "RESET",
	StartDownloadMode:      "ENTER_DOWNLOAD",
	QuitDownloadMode:       "EXIT_DOWNLOAD",
	GetApplicationStatus:   "APPL_STATUS",
	GetFirmwareVersion:     "FIRMWARE_VERSION",
	RestoreFactorySettings: "FACTORY_DEFAULT",
}

// String returns the TMCL mnemonic for the opcode, or a numeric form for
// opcodes outside the known set.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CMD(%d)", uint8(c))
}
