package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HEALTHCHECK_THREADS.
const EnvPrefix = "HEALTHCHECK"

// Flag names; environment keys are the same names upper-cased with "-" as "_".
const (
	FlagFile           = "file"
	FlagThreads        = "threads"
	FlagCycleLength    = "cycle-length"
	FlagTimeout        = "timeout"
	FlagSlowThreshold  = "slow-threshold"
	FlagDNSDiagnostics = "dns-diagnostics"
	FlagColorize       = "colorize"
	FlagVerbose        = "verbose"
	FlagLogDir         = "log-dir"
	FlagListen         = "listen"
	FlagCycles         = "cycles"
)

type Config struct {
	File           string        // endpoint YAML file
	MaxParallelism int           // probes in flight at once
	CycleLength    time.Duration // time between round starts
	RequestTimeout time.Duration // per-probe timeout
	SlowThreshold  time.Duration // 0 disables the latency rule
	DNSDiagnostics bool          // classify DNS on transport failures
	Colorize       bool
	ColorizeSet    bool // colorize was chosen explicitly (flag or env)
	Verbose        bool
	LogDir         string // rotating log file directory
	Listen         string // status API address, empty disables it
	Cycles         int    // stop after this many rounds, 0 runs forever
}

// BindFlags registers every run flag with its default.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagFile, "f", "", "path to YAML file with endpoints (required)")
	fs.IntP(FlagThreads, "t", 10, "maximum number of parallel requests")
	fs.Float64(FlagCycleLength, 15, "seconds between the start of two health check cycles")
	fs.Duration(FlagTimeout, 10*time.Second, "per-request timeout")
	fs.Duration(FlagSlowThreshold, 0, "mark responses at or above this latency as down (0 disables)")
	fs.Bool(FlagDNSDiagnostics, false, "classify DNS resolution when a request fails to connect")
	fs.BoolP(FlagColorize, "c", true, "colorize output")
	fs.BoolP(FlagVerbose, "v", false, "print per-endpoint detail and debug logs")
	fs.String(FlagLogDir, "logs", "directory for the rotating log file")
	fs.String(FlagListen, "", "address for the status API, e.g. 127.0.0.1:8080 (disabled when empty)")
	fs.Int(FlagCycles, 0, "stop after this many cycles (0 runs until interrupted)")
}

// Load resolves flags, HEALTHCHECK_* environment variables and defaults, in
// that order of precedence, and validates the result.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	colorizeFlag := fs.Lookup(FlagColorize)
	_, colorizeEnv := os.LookupEnv(EnvPrefix + "_COLORIZE")

	cfg := Config{
		File:           strings.TrimSpace(v.GetString(FlagFile)),
		MaxParallelism: v.GetInt(FlagThreads),
		CycleLength:    time.Duration(v.GetFloat64(FlagCycleLength) * float64(time.Second)),
		RequestTimeout: v.GetDuration(FlagTimeout),
		SlowThreshold:  v.GetDuration(FlagSlowThreshold),
		DNSDiagnostics: v.GetBool(FlagDNSDiagnostics),
		Colorize:       v.GetBool(FlagColorize),
		ColorizeSet:    (colorizeFlag != nil && colorizeFlag.Changed) || colorizeEnv,
		Verbose:        v.GetBool(FlagVerbose),
		LogDir:         v.GetString(FlagLogDir),
		Listen:         strings.TrimSpace(v.GetString(FlagListen)),
		Cycles:         v.GetInt(FlagCycles),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.File, validation.Required.Error("an endpoint file is required (--file)")),
		validation.Field(&c.MaxParallelism, validation.Required, validation.Min(1)),
		validation.Field(&c.CycleLength, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.SlowThreshold, validation.Min(time.Duration(0))),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.Cycles, validation.Min(0)),
	)
}
