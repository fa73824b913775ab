package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ETL"

// Sink names accepted by the run command.
const (
	SinkJSONL    = "jsonl"
	SinkPostgres = "postgres"
	SinkTiDB     = "tidb"
)

// Config holds configuration for the run command.
type Config struct {
	Endpoint          string
	From              string
	To                string
	PageSize          int
	Sink              string
	Out               string
	Errors            string
	PGDSN             string
	TiDBDSN           string
	TiDBBatchSize     int
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestTimeout    time.Duration
	MetricsAddr       string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("endpoint", "https://api.teztok.com/v1/graphql")
	v.SetDefault("from", "2021-11-03")
	v.SetDefault("page-size", 500)
	v.SetDefault("sink", SinkJSONL)
	v.SetDefault("out", "./data/transactions.jsonl")
	v.SetDefault("errors", "./data/transform_errors.jsonl")
	v.SetDefault("tidb-batch-size", 500)
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("request-timeout", 30*time.Second)
	v.SetDefault("log-level", "info")

	if err := readConfig(v, cfgFile, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Endpoint:          v.GetString("endpoint"),
		From:              v.GetString("from"),
		To:                v.GetString("to"),
		PageSize:          v.GetInt("page-size"),
		Sink:              strings.ToLower(v.GetString("sink")),
		Out:               v.GetString("out"),
		Errors:            v.GetString("errors"),
		PGDSN:             v.GetString("pg-dsn"),
		TiDBDSN:           v.GetString("tidb-dsn"),
		TiDBBatchSize:     v.GetInt("tidb-batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RequestTimeout:    v.GetDuration("request-timeout"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

func readConfig(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
