// Package output provides utilities for formatting and displaying loan schedules.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/loan-planner/internal/planner"
	"github.com/iwvelando/loan-planner/pkg/format"
	"github.com/iwvelando/loan-planner/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Scenario is a named calculation result.
type Scenario struct {
	Name   string
	Result *planner.Result
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []Scenario) {
	_ = WritePretty(os.Stdout, results)
}

// WritePretty writes the human-readable tables to w.
func WritePretty(w io.Writer, results []Scenario) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	for i, scenario := range results {
		result := scenario.Result
		req := result.Request

		fmt.Fprintf(&b, "--- Results for scenario %s ---\n", scenario.Name)
		_, _ = p.Fprintf(&b, "Principal:   ₩%.0f\n", req.Principal)
		fmt.Fprintf(&b, "Annual rate: %s\n", format.Rate(req.AnnualRate))
		fmt.Fprintf(&b, "Term:        %d months", req.TermMonths)
		if req.GracePeriodMonths > 0 {
			fmt.Fprintf(&b, " (%d months grace)", req.GracePeriodMonths)
		}
		b.WriteString("\n")
		if req.StartDate != "" {
			fmt.Fprintf(&b, "Start date:  %s\n", req.StartDate)
		}
		if len(req.Events) > 0 {
			b.WriteString("Events:\n")
			for _, event := range req.Events {
				fmt.Fprintf(&b, "  round %d: %s\n", event.Round, describeEvent(p, event))
			}
		}

		b.WriteString("\nMethod            | Total interest | Total paid\n")
		b.WriteString("______            | ______________ | __________\n")
		for _, schedule := range result.Results() {
			_, _ = p.Fprintf(&b, "%-17s | ₩%.0f | ₩%.0f\n", schedule.Method.Title(), schedule.TotalInterest, schedule.TotalPaid)
		}

		if refinance := result.Refinance; refinance != nil {
			_, _ = p.Fprintf(&b, "\nRefinance: moving the balance of ₩%.0f to %s after month %d could save ₩%.0f in interest (₩%.0f -> ₩%.0f)\n",
				refinance.BalanceAtRefinance, format.Rate(refinance.RefinanceRate), refinance.RefinanceMonth,
				refinance.PotentialSavings, refinance.OriginalTotalInterest, refinance.RefinancedTotalInterest)
		}

		for _, schedule := range result.Results() {
			fmt.Fprintf(&b, "\n%s schedule\n", schedule.Method.Title())
			b.WriteString("Month | Date    | Principal | Prepayment | Interest | Total | Remaining\n")
			b.WriteString("_____ | ____    | _________ | __________ | ________ | _____ | _________\n")
			for _, entry := range schedule.Schedule {
				date := entry.Date
				if date == "" {
					date = "-"
				}
				_, _ = p.Fprintf(&b, "%d | %s | ₩%.0f | ₩%.0f | ₩%.0f | ₩%.0f | ₩%.0f\n",
					entry.Month, date, entry.PrincipalPayment, entry.Prepayment,
					entry.InterestPayment, entry.TotalPayment, entry.RemainingPrincipal)
			}
		}

		if len(results) > 1 && i < len(results)-1 {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describeEvent(p *message.Printer, event loans.RepaymentEvent) string {
	var parts []string
	if event.HasPrepayment() {
		parts = append(parts, p.Sprintf("prepayment ₩%.0f", event.Amount))
	}
	if event.HasRateChange() {
		parts = append(parts, "rate "+format.Rate(*event.NewRate))
	}
	return strings.Join(parts, ", ")
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []Scenario) {
	fmt.Print(CsvString(results))
}

// CsvString renders the CSV output as a string. There is one row per
// scenario, method and month.
func CsvString(results []Scenario) string {
	var b strings.Builder
	b.WriteString(`"scenario","method","month","date","principal","prepayment","interest","total","remaining"`)
	b.WriteString("\n")
	for _, scenario := range results {
		for _, schedule := range scenario.Result.Results() {
			for _, entry := range schedule.Schedule {
				fmt.Fprintf(&b, `"%s","%s","%d","%s","%.0f","%.0f","%.0f","%.0f","%.0f"`,
					csvEscape(scenario.Name), schedule.Method, entry.Month, entry.Date,
					entry.PrincipalPayment, entry.Prepayment, entry.InterestPayment,
					entry.TotalPayment, entry.RemainingPrincipal)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
