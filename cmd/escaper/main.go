package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "escaper",
		Short: "Context-aware output escaping",
		Long: `escaper escapes untrusted text for HTML, JavaScript, URL and CSS url()
output sites, validates URL schemes against an allow-list, and serves the
same operations over HTTP and WebSocket.

Unsafe URL schemes are never escaped into safety: they are replaced by "#".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(
		escapeCmd(),
		unescapeCmd(),
		validateURLCmd(),
		splitCmd(),
		reprCmd(),
		serveCmd(),
		versionCmd(),
	)

	return rootCmd
}

// cliLogger builds the logger selected by the persistent --log-* flags.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return logging.NewLogger(format, level, cmd.ErrOrStderr())
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
