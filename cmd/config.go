package main

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=5000"`
	GrpcPort             int           `env:"GRPC_PORT,default=5001"`
	DebugPort            int           `env:"DEBUG_PORT,default=0"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	SweepTimeout         time.Duration `env:"SWEEP_TIMEOUT,default=5s"`
	ExpiryThreshold      time.Duration `env:"EXPIRY_THRESHOLD,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	EnableModeration     bool          `env:"ENABLE_MODERATION,default=false"`
	CharacterReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

// Validate rejects durations the sweeper cannot run with.
func (c Config) Validate() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"SWEEP_INTERVAL", c.SweepInterval},
		{"SWEEP_TIMEOUT", c.SweepTimeout},
		{"EXPIRY_THRESHOLD", c.ExpiryThreshold},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	return nil
}
