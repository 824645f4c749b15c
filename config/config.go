package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug                = "debug"
	ConfigFile                 = "config"
	ConfigCPUProfile           = "cpu-profile"
	ConfigMemProfile           = "mem-profile"
	ConfigNumbersCount         = "numbers-count"
	ConfigMinNumber            = "min-number"
	ConfigMaxNumber            = "max-number"
	ConfigMinTarget            = "min-target"
	ConfigMaxTarget            = "max-target"
	ConfigBigNumberProbability = "big-number-probability"
	ConfigBigNumbers           = "big-numbers"
	ConfigSmallMin             = "small-min"
	ConfigSmallMax             = "small-max"
	ConfigHistoryDB            = "history-db"
	ConfigNatsURL              = "nats-url"
	ConfigNatsSubject          = "nats-subject"
	ConfigBatchThreads         = "batch-threads"
	ConfigCacheSize            = "cache-size"
)

// Config wraps a viper instance holding every setting of the program.
type Config struct {
	*viper.Viper
	args []string
}

// Bounds is an inclusive range.
type Bounds struct {
	Min int64
	Max int64
}

func (b Bounds) Contains(n int64) bool {
	return n >= b.Min && n <= b.Max
}

// GeneratorSettings drive the random puzzle generator.
type GeneratorSettings struct {
	Count                int
	BigNumberProbability int
	BigNumbers           []int64
	Small                Bounds
	Numbers              Bounds
	Target               Bounds
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigNumbersCount, 6)
	v.SetDefault(ConfigMinNumber, 1)
	v.SetDefault(ConfigMaxNumber, 100)
	v.SetDefault(ConfigMinTarget, 100)
	v.SetDefault(ConfigMaxTarget, 999)
	v.SetDefault(ConfigBigNumberProbability, 28)
	v.SetDefault(ConfigBigNumbers, []int{10, 25, 50, 100})
	v.SetDefault(ConfigSmallMin, 1)
	v.SetDefault(ConfigSmallMax, 9)
	v.SetDefault(ConfigHistoryDB, "")
	v.SetDefault(ConfigNatsURL, nats.DefaultURL)
	v.SetDefault(ConfigNatsSubject, "cifras.solve")
	v.SetDefault(ConfigBatchThreads, runtime.NumCPU())
	v.SetDefault(ConfigCacheSize, 1024)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("cifras")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig returns a config holding only default values (and whatever
// CIFRAS_* environment variables are set).
func DefaultConfig() *Config {
	return &Config{Viper: newViper()}
}

// Load parses command-line flags, then the config file if one was given.
// Flags take precedence over the environment, which takes precedence over
// the file.
func (c *Config) Load(args []string) error {
	c.Viper = newViper()

	fs := pflag.NewFlagSet("cifras", pflag.ContinueOnError)
	fs.String(ConfigFile, "", "path to a YAML config file")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.Int(ConfigNumbersCount, 6, "how many numbers a puzzle has")
	fs.Int64(ConfigMinNumber, 1, "smallest number allowed in a puzzle")
	fs.Int64(ConfigMaxNumber, 100, "largest number allowed in a puzzle")
	fs.Int64(ConfigMinTarget, 100, "smallest target allowed")
	fs.Int64(ConfigMaxTarget, 999, "largest target allowed")
	fs.Int(ConfigBigNumberProbability, 28, "percent chance a generated number is a big one")
	fs.IntSlice(ConfigBigNumbers, []int{10, 25, 50, 100}, "the big numbers the generator draws from")
	fs.Int(ConfigSmallMin, 1, "smallest small number the generator draws")
	fs.Int(ConfigSmallMax, 9, "largest small number the generator draws")
	fs.String(ConfigHistoryDB, "", "sqlite database for the solve history; empty disables it")
	fs.String(ConfigNatsURL, nats.DefaultURL, "NATS server for the solver service")
	fs.String(ConfigNatsSubject, "cifras.solve", "NATS subject the solver service listens on")
	fs.Int(ConfigBatchThreads, runtime.NumCPU(), "puzzles solved in parallel by batch runs")
	fs.Int(ConfigCacheSize, 1024, "solutions kept in the solution cache")

	// Everything from the first positional argument on is a command for
	// the caller, flags included.
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %v: %w", path, err)
		}
	}
	return nil
}

// Args returns the command-line arguments left after the config flags.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) NumberBounds() Bounds {
	return Bounds{Min: c.GetInt64(ConfigMinNumber), Max: c.GetInt64(ConfigMaxNumber)}
}

func (c *Config) TargetBounds() Bounds {
	return Bounds{Min: c.GetInt64(ConfigMinTarget), Max: c.GetInt64(ConfigMaxTarget)}
}

func (c *Config) GeneratorSettings() GeneratorSettings {
	bigs := c.GetIntSlice(ConfigBigNumbers)
	big := make([]int64, len(bigs))
	for i, b := range bigs {
		big[i] = int64(b)
	}
	return GeneratorSettings{
		Count:                c.GetInt(ConfigNumbersCount),
		BigNumberProbability: c.GetInt(ConfigBigNumberProbability),
		BigNumbers:           big,
		Small:                Bounds{Min: c.GetInt64(ConfigSmallMin), Max: c.GetInt64(ConfigSmallMax)},
		Numbers:              c.NumberBounds(),
		Target:               c.TargetBounds(),
	}
}

// SanitizedSettings renders all settings, one key per line, for logging.
func (c *Config) SanitizedSettings() string {
	keys := c.AllKeys()
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%v\n", k, c.Get(k))
	}
	return sb.String()
}
