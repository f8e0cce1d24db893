package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/optionometer/config"
	"github.com/rustyeddy/optionometer/internal/util"
	"github.com/rustyeddy/optionometer/journal"
	"github.com/rustyeddy/optionometer/marketdata"
	"github.com/rustyeddy/optionometer/metrics"
	"github.com/rustyeddy/optionometer/output"
	"github.com/rustyeddy/optionometer/pkg/id"
	"github.com/rustyeddy/optionometer/screener"
)

var errBlankTicker = errors.New("ticker must not be blank")

func newScreenCmd(rc *RootConfig) *cobra.Command {
	var (
		snapshot string
		minDays  int
		maxDays  int
		legs     []string
		csvDir   string
	)

	cmd := &cobra.Command{
		Use:   "screen [ticker] [mode]",
		Short: "Rank option trades on a ticker's chains",
		Long: `Fetch the option chains of a ticker expiring inside the configured window,
score every candidate trade and write the ranked trades to CSV.

Modes:
  STRATEGY_OPTIMIZER        spreads, 3 and 4 leg trades, condors (default)
  BULL_PUT_SPREAD_SCREENER  bull put spreads sized to screener.max_margin

Examples:
  optionometer screen
  optionometer screen SPY bull-put-spread-screener
  optionometer screen QQQ --snapshot qqq.json.xz --legs 2,condors`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("min-days") {
				cfg.Screener.MinDays = minDays
			}
			if flags.Changed("max-days") {
				cfg.Screener.MaxDays = maxDays
			}
			if flags.Changed("legs") {
				cfg.Screener.Legs = legs
			}
			if flags.Changed("csv-dir") {
				cfg.Output.CSVDir = csvDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ticker, err := parseTicker(args)
			if err != nil {
				return err
			}
			modeArg := cfg.Screener.Mode
			if len(args) > 1 {
				modeArg = args[1]
			}
			mode, err := screener.ParseMode(modeArg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Optionometer started with ticker %s in mode %s\n", ticker, mode)

			log := util.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
			return runScreen(cmd.Context(), out, log, cfg, ticker, mode, snapshot)
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Screen a saved chain response (.json or .json.xz) instead of calling the API")
	cmd.Flags().IntVar(&minDays, "min-days", 0, "Minimum days to expiration (overrides config)")
	cmd.Flags().IntVar(&maxDays, "max-days", 0, "Maximum days to expiration (overrides config)")
	cmd.Flags().StringSliceVar(&legs, "legs", nil, "Leg types: 2,3,4,2+,3+,4+,condors,bullputspreads (overrides config)")
	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "Directory for CSV output (overrides config)")

	return cmd
}

func parseTicker(args []string) (string, error) {
	if len(args) == 0 {
		return defaultTicker, nil
	}
	t := strings.ToUpper(strings.TrimSpace(args[0]))
	if t == "" {
		return "", errBlankTicker
	}
	return t, nil
}

func runScreen(ctx context.Context, out io.Writer, log zerolog.Logger, cfg *config.Config, ticker string, mode screener.Mode, snapshot string) error {
	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Serve(cfg.Metrics.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("metrics disabled")
		} else {
			defer srv.Shutdown(context.Background())
			log.Info().Str("addr", srv.Addr).Msg("serving metrics")
		}
	}

	importer, closeImporter, err := newImporter(ctx, cfg, log, snapshot)
	if err != nil {
		return err
	}
	defer closeImporter()

	res, err := screener.New(importer, screener.OptionsFromConfig(cfg), log).Screen(ctx, ticker, mode)
	if err != nil {
		return fmt.Errorf("screen %s: %w", ticker, err)
	}

	paths, err := output.NewCSVWriter(cfg.Output.CSVDir).Write(ticker, res.TradeLists())
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, p := range paths {
		log.Info().Str("path", p).Msg("wrote trades")
	}

	runID, err := recordRun(ctx, cfg, res)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	printSummary(out, res, runID)
	fmt.Fprintf(out, "Optionometer complete for %s after %s\n", ticker, minutesSeconds(res.Elapsed))
	return nil
}

// newImporter picks a snapshot file, or the live API with an optional Redis
// cache. An unreachable Redis only costs the cache.
func newImporter(ctx context.Context, cfg *config.Config, log zerolog.Logger, snapshot string) (marketdata.Importer, func(), error) {
	noop := func() {}
	if snapshot != "" {
		log.Info().Str("path", snapshot).Msg("screening snapshot")
		return marketdata.FileImporter{Path: snapshot}, noop, nil
	}

	client, err := marketdata.NewClient(cfg.MarketData, log)
	if err != nil {
		return nil, noop, err
	}
	if cfg.MarketData.Token == "" {
		log.Warn().Msg("no marketdata token; requests are unauthenticated")
	}
	if cfg.Cache.RedisAddr == "" {
		return client, noop, nil
	}

	cache, err := marketdata.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unavailable, continuing without cache")
		return client, noop, nil
	}
	ttl, err := cfg.Cache.ParseTTL()
	if err != nil {
		cache.Close()
		return nil, noop, err
	}
	return client.WithCache(cache, ttl), func() { cache.Close() }, nil
}

// recordRun journals the run and its top trades. It returns "" when
// journaling is off.
func recordRun(ctx context.Context, cfg *config.Config, res *screener.Result) (string, error) {
	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil || j == nil {
		return "", err
	}
	defer j.Close()

	run, rows := journal.FromResult(id.NewAt(res.Started), res, cfg.Journal.TopTrades)
	if err := j.RecordRun(ctx, run); err != nil {
		return "", err
	}
	if err := j.RecordTrades(ctx, rows); err != nil {
		return "", err
	}
	return run.RunID, nil
}

func printSummary(out io.Writer, res *screener.Result, runID string) {
	if len(res.Chains) == 0 {
		fmt.Fprintf(out, "No options matching criteria for %s\n", res.Ticker)
	}
	for _, c := range res.Chains {
		best, ok := c.Best()
		if !ok {
			fmt.Fprintf(out, "  %s  %3d DTE  no trades\n", c.Expiry.Format("2006-01-02"), c.DTE)
			continue
		}
		fmt.Fprintf(out, "  %s  %3d DTE  %4d trades  best %d  %s\n",
			c.Expiry.Format("2006-01-02"), c.DTE, len(c.Trades), best.Score, best.Trade)
	}
	if runID != "" {
		fmt.Fprintf(out, "Recorded run %s\n", runID)
	}
}

func minutesSeconds(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%dm %ds", int(d/time.Minute), int(d%time.Minute/time.Second))
}
