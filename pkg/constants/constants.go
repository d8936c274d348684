// Package constants provides shared constants for the fisco-forecast application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01-02"

// Flat-rate regime ("regime forfettario") constants
const (
	// DefaultCoefficient is the profitability coefficient applied when no
	// ATECO code can be resolved for an income transaction.
	DefaultCoefficient = 0.78

	// RevenueCeiling is the statutory gross-revenue ceiling for staying in
	// the flat-rate regime (euros).
	RevenueCeiling = 85000.0

	// ReducedTaxRate is the startup substitute tax rate.
	ReducedTaxRate = 0.05

	// StandardTaxRate is the ordinary substitute tax rate.
	StandardTaxRate = 0.15
)

// INPS contribution constants
const (
	// SeparataRate is the Gestione Separata contribution rate applied to the
	// full taxable income.
	SeparataRate = 0.2623

	// DefaultArtigianiFixedIncome is the income threshold below which the
	// Artigiani e Commercianti regime only owes the fixed minimum.
	DefaultArtigianiFixedIncome = 18415.0

	// DefaultArtigianiFixedCost is the annual fixed minimum contribution for
	// the Artigiani e Commercianti regime.
	DefaultArtigianiFixedCost = 4515.0

	// DefaultArtigianiExceedRate is the marginal contribution rate on income
	// above the Artigiani threshold.
	DefaultArtigianiExceedRate = 0.24
)

// Payment calendar constants
const (
	// FirstInstallmentShare is the share of the estimated liability due with
	// the first acconto.
	FirstInstallmentShare = 0.40

	// SecondInstallmentShare is the share due with the second acconto.
	SecondInstallmentShare = 0.60

	// ArtigianiQuarterlyInstallments is the number of fixed-minimum
	// installments billed per year in the Artigiani regime.
	ArtigianiQuarterlyInstallments = 4
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// MarginalRevenueStep is the notional revenue increment used for the
	// marginal tax-efficiency figure.
	MarginalRevenueStep = 1000.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
