package main

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"batchgen/internal/config"
)

// app carries state shared by the subcommands once the root has loaded the
// configuration.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	var (
		cfgPath   string
		logLevel  string
		logFormat string
	)
	root := &cobra.Command{
		Use:           "batchgen",
		Short:         "Batch text generation with an instruction-tuned model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			a.cfg = cfg
			a.log = newLogger(stderr, cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace|debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format: auto|console|json")

	root.AddCommand(newRunCmd(a), newFetchCmd(a), newServeCmd(a))
	return root
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
