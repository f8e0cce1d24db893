package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optionometer/config"
)

const defaultTicker = "QQQ"

// RootConfig holds the persistent flags shared by every subcommand.
type RootConfig struct {
	ConfigPath  string
	LogLevel    string
	DBPath      string
	MetricsAddr string
}

// NewRootCmd builds the command tree. Run without a subcommand it only
// announces the ticker it would screen: the first argument, or QQQ. Flags
// are not parsed at that level and extra arguments are ignored.
func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "optionometer [ticker]",
		Short: "Optionometer: option trade screener",
		Long: `Optionometer ranks multi-leg option trades on a ticker's option chains.

It provides tools for:
  - Screening spreads, three and four leg trades, condors and bull put spreads
  - Writing ranked trades to one CSV per expiration
  - Keeping a journal of screen runs in SQLite or Postgres
  - Saving option chain snapshots for offline screening`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Optionometer started with ticker %s\n", startTicker(args))
			return nil
		},
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file, YAML or JSON (optional)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite journal database (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	cmd.AddCommand(
		newScreenCmd(rc),
		newChainCmd(rc),
		newRunsCmd(rc),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

func startTicker(args []string) string {
	if len(args) == 0 {
		return defaultTicker
	}
	return args[0]
}

// loadConfig reads the config file, then applies the persistent flags.
func loadConfig(rc *RootConfig) (*config.Config, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if rc.LogLevel != "" {
		cfg.LogLevel = rc.LogLevel
	}
	if rc.DBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = rc.DBPath
	}
	if rc.MetricsAddr != "" {
		cfg.Metrics.Addr = rc.MetricsAddr
	}
	return cfg, nil
}

// dispatch runs args against the command tree. Only a first argument that
// names a subcommand, or "help", reaches cobra. Anything else, flag-like
// values included, is announced as the ticker.
func dispatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if len(args) == 0 || !isCommand(cmd, args[0]) {
		fmt.Fprintf(stdout, "Optionometer started with ticker %s\n", startTicker(args))
		return nil
	}

	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func isCommand(root *cobra.Command, name string) bool {
	if name == "help" {
		return true
	}
	for _, c := range root.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// Main runs the program and returns its exit status.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := dispatch(ctx, args, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
