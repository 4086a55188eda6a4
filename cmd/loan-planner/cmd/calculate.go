package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iwvelando/loan-planner/internal/config"
	"github.com/iwvelando/loan-planner/internal/planner"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/output"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planFile     string
	outputFormat string
	outputFile   string
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the active scenarios of a plan file",
	Long: `Calculate loads a plan file, computes the schedules of every active
scenario under all repayment methods and prints them.

Examples:
  loan-planner calculate --config config.yaml
  loan-planner calculate --output-format csv --output-file schedules.csv
  loan-planner calculate --output-format pdf --output-file report.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCalculate(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	calculateCmd.Flags().StringVar(&planFile, "config", constants.DefaultConfigFile, "path to plan file")
	calculateCmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, pdf")
	calculateCmd.Flags().StringVar(&outputFile, "output-file", "", "write output to this file instead of stdout")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(ctx context.Context, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := config.LoadConfiguration(planFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", planFile, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	format := conf.Output.Format
	if outputFormat != "" {
		format = outputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty // Default to pretty format
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		logger.Error(err.Error(),
			zap.String("op", "cmd.calculate"),
		)
		return err
	}

	destination := conf.Output.File
	if outputFile != "" {
		destination = outputFile
	}
	if destination == "" && format == constants.OutputFormatPDF {
		destination = constants.DefaultReportFile
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "cmd.calculate"),
		)
	}

	results, err := calculateScenarios(ctx, logger, conf)
	if err != nil {
		return err
	}

	if destination == "" {
		return writeResults(stdout, format, results)
	}

	file, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", destination, err)
	}
	if err := writeResults(file, format, results); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", destination, err)
	}
	logger.Info(fmt.Sprintf("wrote %s output for %d scenarios to %s", format, len(results), destination),
		zap.String("op", "cmd.calculate"),
	)
	return nil
}

// calculateScenarios runs every active scenario. A scenario with invalid
// input stops the run so no partial output is written.
func calculateScenarios(ctx context.Context, logger *zap.Logger, conf *config.Configuration) ([]output.Scenario, error) {
	p := planner.New(logger, conf.UnitScale)

	var results []output.Scenario
	active := conf.ActiveScenarios()
	if skipped := len(conf.Scenarios) - len(active); skipped > 0 {
		logger.Debug(fmt.Sprintf("skipping %d inactive scenarios", skipped),
			zap.String("op", "cmd.calculateScenarios"),
		)
	}

	for _, scenario := range active {
		result, err := p.Calculate(ctx, scenario.ToRawInput())
		if err != nil {
			for field, problems := range planner.FormErrors(err) {
				for _, problem := range problems {
					logger.Error(fmt.Sprintf("scenario %s: %s %s", scenario.Name, field, problem),
						zap.String("op", "cmd.calculateScenarios"),
					)
				}
			}
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", scenario.Name, err)
		}
		results = append(results, output.Scenario{Name: scenario.Name, Result: result})
	}
	return results, nil
}

func writeResults(w io.Writer, format string, results []output.Scenario) error {
	switch format {
	case constants.OutputFormatPretty:
		return output.WritePretty(w, results)
	case constants.OutputFormatCSV:
		_, err := io.WriteString(w, output.CsvString(results))
		return err
	case constants.OutputFormatPDF:
		pdf, err := output.PDFReport(results, time.Now())
		if err != nil {
			return err
		}
		_, err = w.Write(pdf)
		return err
	default:
		return validation.ValidateOutputFormat(format)
	}
}
