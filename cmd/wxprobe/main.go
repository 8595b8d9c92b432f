// Command wxprobe reports whether the running platform lets a process patch
// its own code pages.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pboyd/wxprobe"
)

type config struct {
	Output   string
	LogLevel string
	NoColor  bool
	Describe bool
	Strict   bool
}

// exitError carries the process exit status out of the command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "wxprobe",
		Short: "Check whether the platform enforces W^X on code pages",
		Long: `wxprobe makes the page holding a small routine writable and executable,
rewrites one instruction and calls the routine again. If the platform refuses
the protection change, W^X is enforced.

Flags can also be set with WXPROBE_ environment variables, e.g.
WXPROBE_LOG_LEVEL=debug.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config{
				Output:   v.GetString("output"),
				LogLevel: v.GetString("log-level"),
				NoColor:  v.GetBool("no-color"),
				Describe: v.GetBool("describe"),
				Strict:   v.GetBool("strict"),
			}
			err := run(cmd, cfg)
			var exit *exitError
			if err != nil && !errors.As(err, &exit) {
				fmt.Fprintln(cmd.ErrOrStderr(), "wxprobe:", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "text", "output format: text, json or yaml")
	flags.String("log-level", "warn", "log level for probe steps (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored text output")
	flags.Bool("describe", false, "include memory map entries from before and after the patch")
	flags.Bool("strict", false, "exit with status 2 when W^X is not enforced")

	v.SetEnvPrefix("WXPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, cfg config) error {
	render, ok := renderers[cfg.Output]
	if !ok {
		return fmt.Errorf("unknown output format %q", cfg.Output)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	rep := wxprobe.Run(wxprobe.WithLogger(log))

	err = render(cmd.OutOrStdout(), rep, cfg)
	if err != nil {
		return err
	}

	if !rep.Secure() {
		return &exitError{code: 1, err: rep.RestoreErr}
	}
	if cfg.Strict && rep.Verdict == wxprobe.Success {
		return &exitError{code: 2}
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
