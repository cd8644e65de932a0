package post

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RuntimeConfig is the ambient configuration read from post.toml and POST_*
// environment variables (spec §4.K). It is independent of the per-run phase
// document: the phase document describes one mission, this describes how
// the binary behaves regardless of which mission it runs.
type RuntimeConfig struct {
	LogLevel        string // debug, info, notice, warning, critical
	DefaultStepSize float64 // s, used when a phase omits step_size
	DefaultMaxSteps uint64  // used when a phase omits max_steps
	TraceDir        string  // directory for optional .xyzv trace output; empty disables it
}

// LoadRuntimeConfig reads post.toml (searched on the given config paths) and
// overlays POST_*-prefixed environment variables, mirroring the teacher's
// viper-based configuration loading.
func LoadRuntimeConfig(configPaths ...string) (RuntimeConfig, error) {
	v := viper.New()
	v.SetConfigName("post")
	v.SetConfigType("toml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("POST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("integration.default_step_size", 0.1)
	v.SetDefault("integration.default_max_steps", uint64(1000000))
	v.SetDefault("output.trace_dir", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return RuntimeConfig{}, fmt.Errorf("reading post.toml: %w", err)
		}
	}

	return RuntimeConfig{
		LogLevel:        v.GetString("log.level"),
		DefaultStepSize: v.GetFloat64("integration.default_step_size"),
		DefaultMaxSteps: v.GetUint64("integration.default_max_steps"),
		TraceDir:        v.GetString("output.trace_dir"),
	}, nil
}
