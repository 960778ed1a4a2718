package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		BadgerFilepath:  "/tmp/badger",
		SweepInterval:   15 * time.Second,
		SweepTimeout:    5 * time.Second,
		ExpiryThreshold: 10 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)
	req.NoError(validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero interval", func(c *Config) { c.SweepInterval = 0 }, "SWEEP_INTERVAL"},
		{"negative interval", func(c *Config) { c.SweepInterval = -time.Second }, "SWEEP_INTERVAL"},
		{"zero timeout", func(c *Config) { c.SweepTimeout = 0 }, "SWEEP_TIMEOUT"},
		{"negative expiry", func(c *Config) { c.ExpiryThreshold = -time.Second }, "EXPIRY_THRESHOLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)
			err := config.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.field)
		})
	}
}
