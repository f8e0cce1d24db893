package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optionometer/internal/util"
	"github.com/rustyeddy/optionometer/marketdata"
)

func newChainCmd(rc *RootConfig) *cobra.Command {
	var (
		save     string
		snapshot string
		minDays  int
		maxDays  int
	)

	cmd := &cobra.Command{
		Use:   "chain <ticker>",
		Short: "Fetch and summarize a ticker's option chains",
		Long: `Fetch the option chains of a ticker and print one line per expiration.
With --save the raw response is kept for "screen --snapshot"; a .xz suffix
compresses it.

Examples:
  optionometer chain QQQ
  optionometer chain QQQ --save snapshots/qqq.json.xz`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}
			ticker, err := parseTicker(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-days") {
				minDays = cfg.Screener.MinDays
			}
			if !cmd.Flags().Changed("max-days") {
				maxDays = cfg.Screener.MaxDays
			}

			log := util.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)

			var body []byte
			if snapshot != "" {
				body, err = marketdata.ReadSnapshot(snapshot)
			} else {
				var client *marketdata.Client
				client, err = marketdata.NewClient(cfg.MarketData, log)
				if err == nil {
					body, err = client.FetchRaw(cmd.Context(), client.NewChainRequest(ticker, minDays, maxDays))
				}
			}
			out := cmd.OutOrStdout()
			if errors.Is(err, marketdata.ErrNoData) {
				fmt.Fprintf(out, "No options for %s\n", ticker)
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch chain: %w", err)
			}

			if save != "" {
				if err := marketdata.WriteSnapshot(save, body); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				log.Info().Str("path", save).Int("bytes", len(body)).Msg("saved snapshot")
			}

			chains, err := marketdata.ParseChains(ticker, body)
			if errors.Is(err, marketdata.ErrNoData) {
				fmt.Fprintf(out, "No options for %s\n", ticker)
				return nil
			}
			if err != nil {
				return err
			}

			for _, c := range chains {
				fmt.Fprintf(out, "%s %s  underlying %.2f  %d calls  %d puts\n",
					c.Underlying, c.Expiry.Format("2006-01-02"), c.UnderlyingPrice, len(c.Calls), len(c.Puts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the raw response to this file (.xz compresses)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Read a saved response instead of calling the API")
	cmd.Flags().IntVar(&minDays, "min-days", 0, "Minimum days to expiration (default from config)")
	cmd.Flags().IntVar(&maxDays, "max-days", 0, "Maximum days to expiration (default from config)")

	return cmd
}
