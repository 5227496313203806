// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command ciasim replays a trace of CIA bus transactions against a
// simulated 6526/8521 core and writes a normalized trace for diffing
// against a golden reference.
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/db47h/ciasim"
	"github.com/db47h/ciasim/internal/config"
	"github.com/db47h/ciasim/mos6526"
)

var (
	cfgFile string
	flags   = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ciasim",
	Short: "ciasim replays CIA bus traces against a simulated 6526/8521 core",
	Long: `Read lines of CIA communication (cycles R/W/I register/port/pin value)
from standard input or a trace file, and write a file to diff with to
"cia_sim.log" (default) or to standard output.`,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// explicit flags override file and environment settings
	if cmd.Flags().Changed("cia-model") {
		cfg.Model = flags.Model
	}
	if cmd.Flags().Changed("tod-frequency") {
		cfg.TODFrequency = flags.TODFrequency
	}
	if cmd.Flags().Changed("input") {
		cfg.Input = flags.Input
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = flags.Output
	}
	if cmd.Flags().Changed("stdout") {
		cfg.Stdout = flags.Stdout
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	model := mos6526.MOS8521
	if cfg.Model == "6526" {
		model = mos6526.MOS6526
	}

	in := io.Reader(os.Stdin)
	if cfg.Input != "" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return errors.Wrap(err, "open trace")
		}
		defer f.Close()
		in = f
	} else if term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("standard input is a terminal")
	}

	out := io.Writer(os.Stdout)
	if !cfg.Stdout {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "create log")
		}
		defer f.Close()
		out = f
	}

	rp := ciasim.NewReplay(mos6526.New(model), cfg.TODFrequency)
	return rp.Run(in, out)
}

func main() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "C", "", "configuration file")
	rootCmd.Flags().StringVarP(&flags.Model, "cia-model", "m", flags.Model, "CIA model (6526|8521)")
	rootCmd.Flags().Uint64VarP(&flags.TODFrequency, "tod-frequency", "f", flags.TODFrequency, "generate internal TOD signal (1 - 1M)Hz, 0 disables")
	rootCmd.Flags().StringVarP(&flags.Input, "input", "i", flags.Input, "input trace file (default: standard input)")
	rootCmd.Flags().StringVarP(&flags.Output, "output", "o", flags.Output, "output trace file")
	rootCmd.Flags().BoolVarP(&flags.Stdout, "stdout", "c", flags.Stdout, "write the log to standard output")

	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
