package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blazor-tools/btp/internal/errors"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "btp",
		Short: "Inspect and edit Blazor Server BlazorPack traffic",
		Long: `btp decodes and encodes BlazorPack, the MessagePack flavour of the
SignalR Hub Protocol used by Blazor Server circuits.

  • decode raw batches into editable JSON
  • encode edited JSON back into raw batches
  • summarise captures
  • run an intercepting proxy that downgrades circuits to HTTP
    transports and archives every batch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), opts.logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to btp.json (default: nearest btp.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		decodeCmd(opts),
		encodeCmd(opts),
		statsCmd(opts),
		proxyCmd(opts),
		prefsCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return errors.Newf(errors.CategoryCLI, "invalid --log-level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// inputName returns a display name for an input argument.
func inputName(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "<stdin>"
	}
	return strings.TrimSpace(args[0])
}
