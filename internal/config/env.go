package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment variable the loader reads.
const EnvPrefix = "RICHPAD_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envSetter func(c *Config, val string) error

// envMapping maps environment variables to settings.
var envMapping = map[string]envSetter{
	"RICHPAD_STYLE_FAMILY": func(c *Config, v string) error {
		c.Style.Family = v
		return nil
	},
	"RICHPAD_STYLE_SIZE": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Style.Size = f
		return nil
	},
	"RICHPAD_STYLE_COLOR": func(c *Config, v string) error {
		c.Style.Color = v
		return nil
	},
	"RICHPAD_AUTOSAVE_ENABLED": func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		c.Autosave.Enabled = b
		return nil
	},
	"RICHPAD_AUTOSAVE_DELAY": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Autosave.Delay = Duration(d)
		return nil
	},
	"RICHPAD_AUTOSAVE_DIR": func(c *Config, v string) error {
		c.Autosave.Dir = v
		return nil
	},
	"RICHPAD_HISTORY_MAX_ENTRIES": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.History.MaxEntries = n
		return nil
	},
	"RICHPAD_LOG_LEVEL": func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	},
}

// EnvVars returns the names of the supported environment variables,
// sorted.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for k := range envMapping {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Empty values are treated as set. Unparseable values are reported as a
// ValidationError naming the variable.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	ve := &ValidationError{}
	for _, name := range EnvVars() {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		if err := envMapping[name](cfg, val); err != nil {
			ve.add(name, fmt.Sprintf("cannot parse %q: %v", val, err))
		}
	}
	if len(ve.Problems) > 0 {
		return ve
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
