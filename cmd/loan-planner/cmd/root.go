// Package cmd implements the loan-planner command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "loan-planner",
	Short: "Loan repayment schedule planner",
	Long: `loan-planner compares repayment schedules of a loan under the equal
installment, equal principal and bullet methods, with grace periods,
prepayments and rate changes, and estimates the savings of refinancing.

Commands:
  calculate - compute the scenarios of a plan file
  serve     - run the HTTP calculation API
  version   - print version information`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
