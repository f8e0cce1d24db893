package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/optionometer/screener"
)

var header = []string{
	"Score",
	"Probability",
	"Annualized",
	"100 Trades",
	"Max Profit",
	"Max Loss",
	"Max P/L Ratio",
	"-1SD",
	"+1SD",
	"Contracts",
	"Trade",
}

// CSVWriter writes one spreadsheet per expiration into Dir.
type CSVWriter struct {
	Dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

// Write stores each non-empty list of trades as {Dir}/{UNDERLIER}{yyyyMMdd}.csv
// and returns the paths written.
func (w *CSVWriter) Write(underlier string, lists [][]screener.ScoredTrade) ([]string, error) {
	var paths []string
	for _, trades := range lists {
		if len(trades) == 0 {
			continue
		}
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return paths, fmt.Errorf("create csv dir: %w", err)
		}

		path := filepath.Join(w.Dir, FileName(underlier, trades))
		if err := writeFile(path, trades); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName is the underlier followed by the expiry date of the first leg.
func FileName(underlier string, trades []screener.ScoredTrade) string {
	date := "unknown"
	if len(trades) > 0 {
		if legs := trades[0].Trade.Legs(); len(legs) > 0 {
			date = time.Unix(legs[0].Expiry, 0).UTC().Format("20060102")
		}
	}
	return strings.ToUpper(underlier) + date + ".csv"
}

func writeFile(path string, trades []screener.ScoredTrade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrades(f, trades); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteTrades writes the header and one row per trade with CRLF line
// endings.
func WriteTrades(out io.Writer, trades []screener.ScoredTrade) error {
	cw := csv.NewWriter(out)
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, st := range trades {
		if err := cw.Write(Row(st)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders a scored trade in header order.
func Row(st screener.ScoredTrade) []string {
	return []string{
		strconv.Itoa(st.Score),
		fixed(st.Probability),
		fixed(st.AnnualReturn),
		strconv.Itoa(st.HundredTrades),
		fixed(st.MaxProfitLoss.MaxProfit),
		fixed(st.MaxProfitLoss.MaxLoss),
		fixed(st.MaxProfitLoss.Ratio),
		fixed(st.SDPrices.OneSDDown()),
		fixed(st.SDPrices.OneSDUp()),
		strconv.Itoa(st.Contracts),
		st.Trade.String(),
	}
}

func fixed(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return decimal.NewFromFloat(x).StringFixed(2)
}
