// Package constants provides shared constants for the loan-planner application.
package constants

// DateTimeLayout is the format expected for schedule start dates and is also
// the output date format for schedule entries.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyUnit is the smallest currency unit amounts are rounded to (whole won)
	CurrencyUnit = 1.0

	// CurrencyTolerance is the tolerance for currency comparisons (half a unit)
	CurrencyTolerance = 0.5

	// CurrencySymbol prefixes formatted amounts
	CurrencySymbol = "₩"
)

// Input limits enforced by the validator.
const (
	// DefaultUnitScale converts submitted amounts into won; inputs are given in
	// units of 10,000 won (만원).
	DefaultUnitScale int64 = 10000

	// MaxPrincipal is the largest principal accepted, in won
	MaxPrincipal = 1_000_000_000_000.0

	// MinAnnualRate is the smallest annual rate accepted, in percent
	MinAnnualRate = 0.01

	// MaxAnnualRate is the largest annual rate accepted, in percent
	MaxAnnualRate = 100.0

	// MaxTermMonths bounds the schedule length (50 years)
	MaxTermMonths = 600
)

// Refinance estimate parameters.
const (
	// RefinanceMonth is the evaluation point at which a refinance is assumed
	RefinanceMonth = 12

	// ReferenceLowRate is the average first-tier rate a refinance can reach
	ReferenceLowRate = 3.8

	// RefinanceRateDelta is the assumed rate reduction from refinancing, in percentage points
	RefinanceRateDelta = 1.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatPDF is the PDF report output format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default plan file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example plan file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultReportFile is where PDF reports are written when no file is given
	DefaultReportFile = "loan-report.pdf"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
