// Package config carries runtime settings, layered from built-in
// defaults, an optional tavla.yml, and TAVLA_* environment variables.
package config

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Keys understood by the rest of the program.
const (
	KeySearchPlies    = "search.plies"
	KeySearchTopK     = "search.topk"
	KeySearchBeam     = "search.beam"
	KeySearchReplyCap = "search.replycap"
	KeySearchCSP      = "search.cspfilter"

	KeyAutoplayThreads  = "autoplay.threads"
	KeyAutoplayMaxTurns = "autoplay.maxturns"
	KeyAutoplayLogFile  = "autoplay.logfile"
	KeyAutoplayDB       = "autoplay.db"

	KeyEvalWeights = "eval.weights"

	KeyDebug      = "debug"
	KeyCPUProfile = "profile.cpu"
	KeyMemProfile = "profile.mem"
)

// Config wraps a viper instance so the rest of the program never deals
// with viper directly.
type Config struct {
	v *viper.Viper
}

// New returns a Config holding only the defaults and whatever TAVLA_*
// variables are set in the environment.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix("tavla")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeySearchPlies, 2)
	v.SetDefault(KeySearchTopK, 14)
	v.SetDefault(KeySearchBeam, 5)
	v.SetDefault(KeySearchReplyCap, 5)
	v.SetDefault(KeySearchCSP, true)
	v.SetDefault(KeyAutoplayThreads, 0)
	v.SetDefault(KeyAutoplayMaxTurns, 200)
	v.SetDefault(KeyAutoplayLogFile, "")
	v.SetDefault(KeyAutoplayDB, "")
	v.SetDefault(KeyEvalWeights, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyCPUProfile, "")
	v.SetDefault(KeyMemProfile, "")

	return &Config{v: v}
}

// Load reads tavla.yml from dir, if one exists. A missing file is not
// an error; defaults and the environment still apply.
func (c *Config) Load(dir string) error {
	if dir == "" {
		dir = "."
	}
	c.v.SetConfigName("tavla")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(dir)
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Str("dir", dir).Msg("no tavla.yml, using defaults")
			return nil
		}
		return err
	}
	log.Debug().Str("file", c.v.ConfigFileUsed()).Msg("config loaded")
	return nil
}

func (c *Config) Int(key string) int       { return c.v.GetInt(key) }
func (c *Config) Bool(key string) bool     { return c.v.GetBool(key) }
func (c *Config) String(key string) string { return c.v.GetString(key) }

// Set overrides a key for the rest of the process. The shell's set
// command lands here.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// AllSettings flattens every known setting for display.
func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }
