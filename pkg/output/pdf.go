package output

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/loan-planner/pkg/format"
	"github.com/iwvelando/loan-planner/pkg/loans"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	rowHeight = 5.0
)

// scheduleColumns are the schedule table headers and widths in mm.
var scheduleColumns = []struct {
	title string
	width float64
}{
	{"Month", 14},
	{"Date", 18},
	{"Principal", 30},
	{"Prepayment", 28},
	{"Interest", 26},
	{"Total", 30},
	{"Remaining", 34},
}

// pdfReport lays out a schedule report. Amounts are printed without the won
// sign, which the standard PDF fonts cannot encode.
type pdfReport struct {
	pdf       *fpdf.Fpdf
	generated time.Time
	// text maps user supplied text onto the cp1252 core fonts. Characters
	// outside cp1252, such as Hangul, are printed as '.'.
	text func(string) string
}

func newPDFReport(generated time.Time) *pdfReport {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &pdfReport{
		pdf:       pdf,
		generated: generated,
		text:      pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// PDFReport renders a summary page and the schedules of every method for each
// scenario as an A4 PDF document.
func PDFReport(results []Scenario, generated time.Time) ([]byte, error) {
	report := newPDFReport(generated)

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle("Loan repayment schedules", true)

	for _, scenario := range results {
		report.addSummaryPage(scenario)
		for _, schedule := range scenario.Result.Results() {
			report.addSchedule(scenario.Name, schedule)
		}
	}
	if len(results) == 0 {
		report.pdf.AddPage()
		report.heading("No scenarios were calculated")
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) heading(text string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, text, "", 1, "L", false, 0, "")
	r.pdf.SetTextColor(50, 50, 50)
}

func (r *pdfReport) labelValue(label, value string) {
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.CellFormat(contentWidth-45, 6, value, "", 1, "L", false, 0, "")
}

func (r *pdfReport) addSummaryPage(scenario Scenario) {
	result := scenario.Result
	req := result.Request

	r.pdf.AddPage()
	r.heading(r.text(scenario.Name))

	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Generated: %s  |  Calculation %s", r.generated.Format("2 January 2006"), result.ID), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)

	r.labelValue("Principal (KRW)", format.NumericCurrency(req.Principal))
	r.labelValue("Annual rate", format.Rate(req.AnnualRate))
	r.labelValue("Term", fmt.Sprintf("%d months", req.TermMonths))
	if req.GracePeriodMonths > 0 {
		r.labelValue("Grace period", fmt.Sprintf("%d months", req.GracePeriodMonths))
	}
	if req.StartDate != "" {
		r.labelValue("First payment", req.StartDate)
	}
	for _, event := range req.Events {
		text := ""
		if event.HasPrepayment() {
			text = "prepayment " + format.NumericCurrency(event.Amount)
		}
		if event.HasRateChange() {
			if text != "" {
				text += ", "
			}
			text += "rate " + format.Rate(*event.NewRate)
		}
		r.labelValue(fmt.Sprintf("Round %d", event.Round), text)
	}

	r.pdf.Ln(6)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(60, 7, "Method", "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(60, 7, "Total interest (KRW)", "1", 0, "R", true, 0, "")
	r.pdf.CellFormat(60, 7, "Total paid (KRW)", "1", 1, "R", true, 0, "")

	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFont("Arial", "", 10)
	for _, schedule := range result.Results() {
		r.pdf.CellFormat(60, 6, schedule.Method.Title(), "1", 0, "L", false, 0, "")
		r.pdf.CellFormat(60, 6, format.NumericCurrency(schedule.TotalInterest), "1", 0, "R", false, 0, "")
		r.pdf.CellFormat(60, 6, format.NumericCurrency(schedule.TotalPaid), "1", 1, "R", false, 0, "")
	}

	if refinance := result.Refinance; refinance != nil {
		r.pdf.Ln(6)
		r.pdf.SetFillColor(240, 248, 255)
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.CellFormat(contentWidth, 7, "Refinance estimate", "", 1, "L", true, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.MultiCell(contentWidth, 5, fmt.Sprintf(
			"Refinancing the remaining balance of %s KRW after month %d at %s could save %s KRW in interest (%s KRW instead of %s KRW).",
			format.NumericCurrency(refinance.BalanceAtRefinance), refinance.RefinanceMonth, format.Rate(refinance.RefinanceRate),
			format.NumericCurrency(refinance.PotentialSavings), format.NumericCurrency(refinance.RefinancedTotalInterest),
			format.NumericCurrency(refinance.OriginalTotalInterest)), "", "L", true)
	}
}

func (r *pdfReport) scheduleHeader() {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 8)
	for _, column := range scheduleColumns {
		r.pdf.CellFormat(column.width, 6, column.title, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFont("Arial", "", 8)
}

func (r *pdfReport) addSchedule(name string, schedule *loans.CalculationResult) {
	r.pdf.AddPage()
	r.heading(fmt.Sprintf("%s: %s", r.text(name), schedule.Method.Title()))
	r.scheduleHeader()

	_, pageHeight := r.pdf.GetPageSize()
	for i, entry := range schedule.Schedule {
		if r.pdf.GetY()+rowHeight > pageHeight-marginBottom {
			r.pdf.AddPage()
			r.scheduleHeader()
		}
		fill := i%2 == 1
		r.pdf.SetFillColor(245, 247, 250)
		values := []string{
			strconv.Itoa(entry.Month),
			entry.Date,
			format.NumericCurrency(entry.PrincipalPayment),
			format.NumericCurrency(entry.Prepayment),
			format.NumericCurrency(entry.InterestPayment),
			format.NumericCurrency(entry.TotalPayment),
			format.NumericCurrency(entry.RemainingPrincipal),
		}
		for j, value := range values {
			align := "R"
			if j < 2 {
				align = "C"
			}
			r.pdf.CellFormat(scheduleColumns[j].width, rowHeight, value, "LR", 0, align, fill, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.CellFormat(contentWidth, 0, "", "T", 1, "", false, 0, "")
}
