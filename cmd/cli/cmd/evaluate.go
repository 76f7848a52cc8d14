// Package cmd - evaluate command
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"oiltrading/adapters/excel"
	"oiltrading/core/formula"
	"oiltrading/core/money"
	"oiltrading/core/pricing"
	"oiltrading/internal/config"
	"oiltrading/internal/logging"
)

var (
	dataFile     string
	inlineSeries string
	fromDate     string
	toDate       string
	quantityFlag string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <formula>",
	Short: "Evaluate a pricing formula against market data",
	Long: `Parse a pricing formula and evaluate it against historical index
observations, producing the settlement benchmark price.

Observations come either from a market-data workbook (--data) or
inline (--series). With --quantity the computed amount is shown too.

Examples:
  oiltrading evaluate "AVG(BRENT) + 5.00 USD/MT" --series 80,82,81
  oiltrading evaluate "MEDIAN(GASOIL)" --data market_data.xlsx --from 2026-07-01 --to 2026-07-31
  oiltrading evaluate "AVG(BRENT) + 5.00 USD/MT" --series 80,82,81 --quantity 10000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&dataFile, "data", "d", "", "market data workbook (.xlsx)")
	evaluateCmd.Flags().StringVarP(&inlineSeries, "series", "s", "", "comma-separated inline observations")
	evaluateCmd.Flags().StringVar(&fromDate, "from", "", "pricing period start (YYYY-MM-DD)")
	evaluateCmd.Flags().StringVar(&toDate, "to", "", "pricing period end (YYYY-MM-DD)")
	evaluateCmd.Flags().StringVarP(&quantityFlag, "quantity", "q", "", "settlement quantity to apply")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	spec := formula.Parse(text)

	if spec.Kind() == formula.KindCustom {
		return fmt.Errorf("formula not recognized: %q", text)
	}

	prices, err := loadObservations(spec)
	if err != nil {
		return err
	}

	eval := newEvaluator()
	price, err := eval.Evaluate(spec, prices, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Formula:         %s\n", spec.Formula())
	fmt.Printf("Benchmark price: %s\n", price)

	if quantityFlag != "" {
		qty, err := decimal.NewFromString(quantityFlag)
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", quantityFlag, err)
		}
		currency := spec.Currency()
		if currency == "" {
			currency = config.Get().Pricing.DefaultCurrency
		}
		amount, err := money.New(price.Mul(qty), currency)
		if err != nil {
			return err
		}
		fmt.Printf("Amount:          %s\n", amount)
	}
	return nil
}

func newEvaluator() *pricing.Evaluator {
	var opts []pricing.Option
	if cfg := config.Get().Pricing; cfg.EnforceAdjustmentCurrency {
		opts = append(opts, pricing.WithAdjustmentCurrencyCheck(cfg.DefaultCurrency))
	}
	return pricing.NewEvaluator(opts...)
}

func loadObservations(spec formula.Specification) (map[string][]decimal.Decimal, error) {
	if spec.Kind() == formula.KindFixed {
		return nil, nil
	}

	if inlineSeries != "" {
		values, err := parseInlineSeries(inlineSeries)
		if err != nil {
			return nil, err
		}
		return map[string][]decimal.Decimal{spec.IndexName(): values}, nil
	}

	if dataFile == "" {
		return nil, fmt.Errorf("index formula needs observations: pass --data or --series")
	}

	series, err := excel.Load(dataFile)
	if err != nil {
		return nil, err
	}
	logging.Sugar.Debugw("loaded market data", "file", dataFile, "products", len(series))

	indexSeries := series[spec.IndexName()]
	if fromDate != "" || toDate != "" {
		from, to, err := parsePeriod()
		if err != nil {
			return nil, err
		}
		indexSeries = indexSeries.Between(from, to)
	}

	out := make(map[string][]decimal.Decimal, 1)
	if len(indexSeries) > 0 {
		out[spec.IndexName()] = indexSeries.Values()
	}
	return out, nil
}

func parseInlineSeries(s string) ([]decimal.Decimal, error) {
	parts := strings.Split(s, ",")
	values := make([]decimal.Decimal, 0, len(parts))
	for _, part := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid observation %q: %w", part, err)
		}
		values = append(values, d)
	}
	return values, nil
}

func parsePeriod() (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	var err error

	if fromDate != "" {
		from, err = time.Parse("2006-01-02", fromDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if toDate != "" {
		to, err = time.Parse("2006-01-02", toDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	return from, to, nil
}
