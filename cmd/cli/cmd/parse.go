// Package cmd - parse command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oiltrading/core/formula"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <formula>",
	Short: "Classify a pricing formula",
	Long: `Classify formula text into its structured pricing specification.

Unrecognized text degrades to a custom specification rather than failing;
custom specifications cannot be evaluated.

Examples:
  oiltrading parse "AVG(BRENT) + 5.00 USD/MT"
  oiltrading parse "450 USD/MT"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runParse,
}

func runParse(cmd *cobra.Command, args []string) {
	text := strings.Join(args, " ")
	spec := formula.Parse(text)

	fmt.Printf("Kind:       %s\n", spec.Kind())
	fmt.Printf("Formula:    %s\n", spec.Formula())

	switch spec.Kind() {
	case formula.KindFixed:
		price, _ := spec.FixedPrice()
		fmt.Printf("Price:      %s %s\n", price, spec.Currency())
		if spec.AdjustmentUnit() != "" {
			fmt.Printf("Unit:       %s\n", spec.AdjustmentUnit())
		}

	case formula.KindIndex, formula.KindMixedUnit:
		fmt.Printf("Method:     %s\n", spec.Method())
		fmt.Printf("Index:      %s\n", spec.IndexName())
		if adj, ok := spec.Adjustment(); ok {
			sign := "+"
			if spec.IsDiscount() {
				sign = "-"
			}
			fmt.Printf("Adjustment: %s %s\n", sign, adj)
			if spec.AdjustmentUnit() != "" {
				fmt.Printf("Unit:       %s\n", spec.AdjustmentUnit())
			}
		}

	case formula.KindCustom:
		fmt.Println("Note:       unrecognized text; evaluation unsupported")
	}
}
