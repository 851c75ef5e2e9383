// Package config loads the tmclctl host tool configuration from a file,
// environment variables and defaults. Flags override whatever is loaded here.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SerialConfig configures the serial transport.
type SerialConfig struct {
	Device      string `mapstructure:"device"`
	Baud        int    `mapstructure:"baud"`
	ReadTimeout int    `mapstructure:"readTimeout"` // milliseconds
}

// CANConfig configures the CAN transport (USB-CAN analyzer).
type CANConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// Config is the top-level tool configuration.
type Config struct {
	Transport string       `mapstructure:"transport"` // "serial" or "can"
	Address   int          `mapstructure:"address"`   // module address, 1-255
	Serial    SerialConfig `mapstructure:"serial"`
	CAN       CANConfig    `mapstructure:"can"`
	LogLevel  string       `mapstructure:"logLevel"`
}

// Load reads configuration from the given file, or from tmclctl.yaml in the
// working directory and $HOME when path is empty. Environment variables with
// a TMCL_ prefix override file values; a missing file is fine, defaults
// apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName("tmclctl")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("TMCL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Address < 1 || cfg.Address > 255 {
		return nil, fmt.Errorf("module address %d outside 1-255", cfg.Address)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("transport", "serial")
	v.SetDefault("address", 1)
	v.SetDefault("logLevel", "info")

	v.SetDefault("serial.device", "/dev/ttyACM0")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.readTimeout", 500)

	v.SetDefault("can.device", "/dev/ttyUSB0")
	v.SetDefault("can.baud", 2000000)
}
