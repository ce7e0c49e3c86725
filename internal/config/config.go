// Package config loads server settings from the environment with flag overrides.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Address         string        `env:"ADDRESS"`
	DatabaseDSN     string        `env:"DATABASE_URI"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// New loads .env (if present), environment variables, then command-line flags.
// Flags win over environment values.
func New() *Config {
	_ = godotenv.Load()
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) *Config {
	cfg := &Config{}
	_ = env.Parse(cfg)

	fs.StringVar(&cfg.Address, "a", cfg.Address, "listen address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	_ = fs.Parse(args)

	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return cfg
}
