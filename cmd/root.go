package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/config"
	"github.com/mj1618/delphi-cli/internal/logging"
	"github.com/mj1618/delphi-cli/internal/output"
	_ "github.com/mj1618/delphi-cli/internal/platform/win32"
	"github.com/mj1618/delphi-cli/internal/version"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "delphi-cli",
	Short: "Inspect and drive Delphi VCL applications",
	Long: `A CLI tool that lets AI agents read and drive Delphi VCL applications through
their in-process HTTP UI bridge, with native Win32 input for clicks and typing.

The bridge is found by scanning local listening ports unless --port is given.`,
	SilenceUsage: true,
}

// Execute runs the root command. Ctrl+C cancels the command's context,
// which aborts pending bridge requests and input pauses.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: $DELPHI_CONFIG)")
	rootCmd.PersistentFlags().Int("port", 0, "Bridge port; skips discovery")
	rootCmd.PersistentFlags().String("process", "", "Only discover bridges owned by a process whose name contains this")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlags(cmd, loaded)
		cfg = loaded

		level := cfg.LogLevel
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			level = "debug"
		}
		l, err := logging.New(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}

// applyFlags lets explicitly set flags override file and environment
// settings.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		c.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("process") {
		c.Process, _ = flags.GetString("process")
	}
}
