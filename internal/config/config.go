// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config holds the replay harness settings, merged from built-in
// defaults, an optional YAML configuration file and environment variables.
//
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	defModel  = "8521"
	defOutput = "cia_sim.log"

	// EnvVarPrefix prefixes the environment variables mapped onto settings,
	// e.g. CIASIM_TOD_FREQUENCY.
	EnvVarPrefix = "CIASIM"
)

// MaxTODFrequency bounds the TOD signal generator.
const MaxTODFrequency = 1000000

var replacer = strings.NewReplacer(".", "_")

// Config holds the replay harness settings.
type Config struct {
	Model        string `mapstructure:"cia_model" yaml:"cia_model"`
	TODFrequency uint64 `mapstructure:"tod_frequency" yaml:"tod_frequency"`
	Input        string `mapstructure:"input" yaml:"input"`
	Output       string `mapstructure:"output" yaml:"output"`
	Stdout       bool   `mapstructure:"stdout" yaml:"stdout"`
}

// Default returns the built-in settings: an 8521 core, TOD generation off,
// input from standard input and output to cia_sim.log.
func Default() *Config {
	return &Config{
		Model:  defModel,
		Output: defOutput,
	}
}

// Load merges, in order: built-in defaults, the optional YAML config file,
// and CIASIM_* environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Viper needs to know a key exists in order to override it, so the
	// defaults are fed in as the base config layer.
	b, err := yaml.Marshal(Default())
	if err != nil {
		return nil, errors.Wrap(err, "marshal defaults")
	}
	if err = v.MergeConfig(bytes.NewReader(b)); err != nil {
		return nil, errors.Wrap(err, "merge defaults")
	}

	if cfgFile != "" {
		fi, err := os.Stat(cfgFile)
		if err != nil {
			return nil, errors.Wrapf(err, "config file %s", cfgFile)
		}
		if fi.IsDir() {
			return nil, errors.Errorf("config file %s is a directory", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err = v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config file %s", cfgFile)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvVarPrefix)
	v.SetEnvKeyReplacer(replacer)
	for _, key := range []string{"cia_model", "tod_frequency", "input", "output", "stdout"} {
		if err = v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind environment variable for %s", key)
		}
	}

	cfg := Default()
	if err = v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}

// Validate checks the merged settings.
func (c *Config) Validate() error {
	if c.Model != "6526" && c.Model != "8521" {
		return errors.Errorf("invalid CIA model %q", c.Model)
	}
	if c.TODFrequency > MaxTODFrequency {
		return errors.Errorf("TOD frequency %d out of range (0 - %d Hz)", c.TODFrequency, MaxTODFrequency)
	}
	return nil
}
