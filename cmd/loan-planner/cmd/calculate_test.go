package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/loan-planner/internal/config"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testPlan = `
logging:
  level: error
output:
  format: pretty
scenarios:
  - name: short loan
    active: true
    principal: 1200
    annualRate: 6
    loanTermMonths: 12
  - name: skipped
    active: false
    principal: 0
    annualRate: 0
    loanTermMonths: 0
`

func setCalculateFlags(t *testing.T, plan, format, file string) {
	t.Helper()
	oldPlan, oldFormat, oldFile := planFile, outputFormat, outputFile
	planFile, outputFormat, outputFile = plan, format, file
	t.Cleanup(func() {
		planFile, outputFormat, outputFile = oldPlan, oldFormat, oldFile
	})
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write plan: %v", err)
	}
	return path
}

func TestRunCalculatePretty(t *testing.T) {
	setCalculateFlags(t, writePlan(t, testPlan), "", "")

	var stdout bytes.Buffer
	if err := runCalculate(context.Background(), &stdout); err != nil {
		t.Fatalf("runCalculate() error = %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "--- Results for scenario short loan ---") {
		t.Errorf("expected the active scenario in output, got %q", output)
	}
	if strings.Contains(output, "skipped") {
		t.Errorf("inactive scenario should not be calculated")
	}
}

func TestCalculateScenariosSkipsInactive(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	conf := &config.Configuration{
		UnitScale: constants.DefaultUnitScale,
		Scenarios: []config.Scenario{
			{Name: "first", Active: true, Principal: "1200", AnnualRate: "6", LoanTermMonths: "12"},
			{Name: "broken but inactive", Active: false, Principal: "-1"},
			{Name: "second", Active: true, Principal: "2400", AnnualRate: "4", LoanTermMonths: "24"},
		},
	}

	results, err := calculateScenarios(context.Background(), zap.New(core), conf)
	if err != nil {
		t.Fatalf("calculateScenarios() error = %v", err)
	}
	if len(results) != 2 || results[0].Name != "first" || results[1].Name != "second" {
		t.Fatalf("calculateScenarios() returned %v, expected the two active scenarios in order", results)
	}
	if logs.FilterMessage("skipping 1 inactive scenarios").Len() != 1 {
		t.Errorf("expected the inactive scenario to be logged as skipped")
	}
}

func TestRunCalculateCsvToFile(t *testing.T) {
	destination := filepath.Join(t.TempDir(), "out.csv")
	setCalculateFlags(t, writePlan(t, testPlan), constants.OutputFormatCSV, destination)

	var stdout bytes.Buffer
	if err := runCalculate(context.Background(), &stdout); err != nil {
		t.Fatalf("runCalculate() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be written to stdout when an output file is set")
	}

	data, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), `"short loan","equal-installment","1","","972797","0","60000","1032797","11027203"`) {
		t.Errorf("unexpected CSV output %s", data)
	}
}

func TestRunCalculatePDF(t *testing.T) {
	destination := filepath.Join(t.TempDir(), "report.pdf")
	setCalculateFlags(t, writePlan(t, testPlan), constants.OutputFormatPDF, destination)

	if err := runCalculate(context.Background(), &bytes.Buffer{}); err != nil {
		t.Fatalf("runCalculate() error = %v", err)
	}

	data, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected a PDF document")
	}
}

func TestRunCalculateErrors(t *testing.T) {
	tests := []struct {
		name   string
		plan   string
		format string
	}{
		{
			name:   "Missing plan file",
			plan:   filepath.Join(t.TempDir(), "missing.yaml"),
			format: "",
		},
		{
			name:   "Unsupported output format",
			plan:   writePlan(t, testPlan),
			format: "xml",
		},
		{
			name: "Invalid scenario",
			plan: writePlan(t, `
logging:
  level: error
scenarios:
  - name: broken
    active: true
    principal: 1000
    annualRate: 5
    loanTermMonths: 12
    gracePeriodMonths: 24
`),
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCalculateFlags(t, tt.plan, tt.format, "")

			var stdout bytes.Buffer
			if err := runCalculate(context.Background(), &stdout); err == nil {
				t.Fatal("runCalculate() expected error but got none")
			}
			if stdout.Len() != 0 {
				t.Errorf("no output should be written on failure, got %q", stdout.String())
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	versionCmd.SetOut(&stdout)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(stdout.String(), "loan-planner "+Version) {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}
