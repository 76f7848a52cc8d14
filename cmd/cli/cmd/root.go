// Package cmd provides the CLI commands for the oiltrading back office.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oiltrading/internal/config"
	"oiltrading/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "oiltrading",
	Short: "Pricing-formula engine for oil-trading settlements",
	Long: `oiltrading evaluates contract pricing formulas against historical
market index observations to produce settlement benchmark prices.

Examples:
  oiltrading parse "AVG(BRENT) + 5.00 USD/MT"
  oiltrading evaluate "AVG(BRENT) + 5.00 USD/MT" --series 80,82,81
  oiltrading evaluate "MAX(380CST)" --data market_data.xlsx --from 2026-07-01 --to 2026-07-31`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.oiltrading.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	logCfg := config.Get().Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if err := logging.Initialize(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("oiltrading 0.1.0")
	},
}
