package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// TransformConfig holds configuration for the transform command.
type TransformConfig struct {
	In       string
	Out      string
	Errors   string
	LogLevel string
}

// LoadTransform merges config file, environment variables, and flags into TransformConfig.
func LoadTransform(cfgFile string, flags *pflag.FlagSet) (TransformConfig, error) {
	v := viper.New()
	v.SetDefault("out", "./data/transactions.jsonl")
	v.SetDefault("errors", "./data/transform_errors.jsonl")
	v.SetDefault("log-level", "info")

	if err := readConfig(v, cfgFile, flags); err != nil {
		return TransformConfig{}, err
	}

	cfg := TransformConfig{
		In:       v.GetString("in"),
		Out:      v.GetString("out"),
		Errors:   v.GetString("errors"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}
