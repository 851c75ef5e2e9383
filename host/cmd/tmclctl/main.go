package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tmcl/host/bus"
	"tmcl/host/canbus"
	"tmcl/host/config"
	"tmcl/host/serial"
	"tmcl/protocol"
)

var (
	cfgPath   = flag.String("config", "", "Config file path (default: tmclctl.yaml in . or $HOME)")
	device    = flag.String("device", "", "Serial or CAN analyzer device path")
	baud      = flag.Int("baud", 0, "Baud rate")
	address   = flag.Int("address", 0, "Module address (1-255)")
	axis      = flag.Int("axis", 0, "Axis index on the module")
	transport = flag.String("transport", "", "Transport: serial or can")
	verbose   = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if flag.Arg(0) == "ports" {
		listPorts()
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	logger := newLogger(cfg.LogLevel, *verbose)
	defer logger.Sync()

	b, err := openBus(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	logger.Info("connected",
		zap.String("transport", b.Framing().String()),
		zap.Int("address", cfg.Address),
		zap.Int("axis", *axis))

	mod, err := b.Module(uint8(cfg.Address))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	motor := mod.Motor(uint8(*axis))

	if version, err := mod.FirmwareVersion(); err == nil {
		fmt.Printf("Connected to %s (address %d)\n", version, cfg.Address)
	} else {
		logger.Warn("firmware version query failed", zap.Error(err))
		fmt.Printf("Connected (address %d)\n", cfg.Address)
	}

	// Interactive command loop
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if parts[0] == "quit" || parts[0] == "exit" || parts[0] == "q" {
			fmt.Println("Goodbye!")
			return
		}

		if err := runLine(mod, motor, parts); err != nil {
			printError(err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *address != 0 {
		cfg.Address = *address
	}
	if *device != "" {
		cfg.Serial.Device = *device
		cfg.CAN.Device = *device
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
		cfg.CAN.Baud = *baud
	}
}

func newLogger(level string, verbose bool) *zap.Logger {
	logCfg := zap.NewDevelopmentConfig()
	if verbose || level == "debug" {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}

func openBus(cfg *config.Config) (*bus.Bus, error) {
	switch cfg.Transport {
	case "can":
		conn, err := canbus.OpenAnalyzer(cfg.CAN.Device, cfg.CAN.Baud)
		if err != nil {
			return nil, err
		}
		return bus.NewCAN(conn), nil
	case "serial", "":
		port, err := serial.Open(&serial.Config{
			Device:      cfg.Serial.Device,
			Baud:        cfg.Serial.Baud,
			ReadTimeout: cfg.Serial.ReadTimeout,
		})
		if err != nil {
			return nil, err
		}
		return bus.New(port), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want serial or can)", cfg.Transport)
	}
}

func listPorts() {
	ports, err := serial.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}

func runLine(mod *bus.Module, motor *bus.Motor, parts []string) error {
	switch parts[0] {
	case "help", "?":
		printHelp()
		return nil

	case "rr":
		v, err := intArg(parts, 1)
		if err != nil {
			return err
		}
		return motor.RotateRight(v)

	case "rl":
		v, err := intArg(parts, 1)
		if err != nil {
			return err
		}
		return motor.RotateLeft(v)

	case "stop":
		return motor.Stop()

	case "move":
		pos, err := intArg(parts, 1)
		if err != nil {
			return err
		}
		echoed, err := motor.MoveAbsolute(pos)
		if err != nil {
			return err
		}
		fmt.Printf("Moving to %d\n", echoed)
		return nil

	case "movr":
		off, err := intArg(parts, 1)
		if err != nil {
			return err
		}
		echoed, err := motor.MoveRelative(off)
		if err != nil {
			return err
		}
		fmt.Printf("Moving by %d\n", echoed)
		return nil

	case "rfs":
		return runRFS(motor, parts)

	case "status":
		pos, err := motor.ActualPosition()
		if err != nil {
			return err
		}
		speed, err := motor.ActualSpeed()
		if err != nil {
			return err
		}
		fmt.Printf("Position: %d  Speed: %d\n", pos, speed)
		return nil

	case "get":
		if len(parts) < 2 {
			return fmt.Errorf("usage: get <param>")
		}
		v, err := motor.Axis().Get(parts[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %d\n", parts[1], v)
		return nil

	case "set":
		if len(parts) < 3 {
			return fmt.Errorf("usage: set <param> <value>")
		}
		v, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", parts[2], err)
		}
		echoed, err := motor.Axis().Set(parts[1], v)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %d\n", parts[1], echoed)
		return nil

	case "store":
		if len(parts) < 2 {
			return fmt.Errorf("usage: store <param>")
		}
		return motor.Axis().Store(parts[1])

	case "restore":
		if len(parts) < 2 {
			return fmt.Errorf("usage: restore <param>")
		}
		return motor.Axis().Restore(parts[1])

	case "params":
		for _, name := range bus.AxisParamNames() {
			fmt.Println(" ", name)
		}
		return nil

	case "global":
		return runGlobal(mod, parts)

	case "fw":
		version, err := mod.FirmwareVersion()
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil

	case "raw":
		return runRaw(motor, parts)

	default:
		fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", parts[0])
		return nil
	}
}

func runRFS(motor *bus.Motor, parts []string) error {
	sub := "start"
	if len(parts) > 1 {
		sub = parts[1]
	}
	var rfsType uint8
	switch sub {
	case "start":
		rfsType = protocol.RFSStart
	case "stop":
		rfsType = protocol.RFSStop
	case "status":
		rfsType = protocol.RFSStatus
	default:
		return fmt.Errorf("usage: rfs start|stop|status")
	}

	v, err := motor.ReferenceSearch(rfsType)
	if err != nil {
		return err
	}
	if sub == "status" {
		if v == 0 {
			fmt.Println("Reference search finished")
		} else {
			fmt.Println("Reference search still running")
		}
	}
	return nil
}

func runGlobal(mod *bus.Module, parts []string) error {
	if len(parts) < 3 {
		return fmt.Errorf("usage: global <bank> <param> [value]")
	}
	bank, err := byteArg(parts, 1)
	if err != nil {
		return err
	}
	n, err := byteArg(parts, 2)
	if err != nil {
		return err
	}

	if len(parts) == 3 {
		v, err := mod.GetGlobal(bank, n)
		if err != nil {
			return err
		}
		fmt.Printf("global %d:%d = %d\n", bank, n, v)
		return nil
	}

	value, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return fmt.Errorf("bad value %q: %w", parts[3], err)
	}
	echoed, err := mod.SetGlobal(bank, n, value)
	if err != nil {
		return err
	}
	fmt.Printf("global %d:%d = %d\n", bank, n, echoed)
	return nil
}

func runRaw(motor *bus.Motor, parts []string) error {
	if len(parts) < 4 {
		return fmt.Errorf("usage: raw <opcode> <type> <value>")
	}
	opcode, err := byteArg(parts, 1)
	if err != nil {
		return err
	}
	typ, err := byteArg(parts, 2)
	if err != nil {
		return err
	}
	value, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return fmt.Errorf("bad value %q: %w", parts[3], err)
	}

	reply, err := motor.Send(protocol.Command(opcode), typ, value)
	if err != nil {
		return err
	}
	fmt.Printf("status=%s value=%d\n", reply.Status, reply.Value)
	return nil
}

func intArg(parts []string, i int) (int64, error) {
	if len(parts) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	v, err := strconv.ParseInt(parts[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", parts[i], err)
	}
	return v, nil
}

func byteArg(parts []string, i int) (uint8, error) {
	if len(parts) <= i {
		return 0, fmt.Errorf("missing argument")
	}
	v, err := strconv.ParseUint(parts[i], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad byte value %q: %w", parts[i], err)
	}
	return uint8(v), nil
}

func printError(err error) {
	var devErr *protocol.DeviceError
	if errors.As(err, &devErr) {
		fmt.Fprintf(os.Stderr, "Device rejected command: %s (value %d)\n", devErr.Status, devErr.Value)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help             - Show this help message")
	fmt.Println("  rr <velocity>    - Rotate right")
	fmt.Println("  rl <velocity>    - Rotate left")
	fmt.Println("  stop             - Stop the motor")
	fmt.Println("  move <position>  - Move to absolute position")
	fmt.Println("  movr <offset>    - Move by relative offset")
	fmt.Println("  rfs [start|stop|status] - Reference search")
	fmt.Println("  status           - Show actual position and speed")
	fmt.Println("  get <param>      - Read an axis parameter")
	fmt.Println("  set <param> <v>  - Write an axis parameter")
	fmt.Println("  store <param>    - Store an axis parameter to EEPROM")
	fmt.Println("  restore <param>  - Restore an axis parameter from EEPROM")
	fmt.Println("  params           - List known axis parameters")
	fmt.Println("  global <bank> <n> [v] - Read or write a global parameter")
	fmt.Println("  fw               - Query firmware version")
	fmt.Println("  raw <op> <type> <v>   - Send a raw command to this axis")
	fmt.Println("  quit/exit/q      - Exit the program")
	fmt.Println()
}
