// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/forfettario/fisco-forecast/pkg/constants"
	"github.com/forfettario/fisco-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for fisco-forecast: the fiscal data
// snapshot plus logging and output options.
type Configuration struct {
	ViewYear     int
	Settings     SettingsConfig
	AtecoCodes   []AtecoCodeConfig
	Transactions []TransactionConfig
	FixedDebts   []FixedDebtConfig
	Contracts    []ContractConfig
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// SettingsConfig is the raw tax-regime configuration block. Opening balances
// are keyed by year as strings because that is how YAML mapping keys arrive.
type SettingsConfig struct {
	TaxRateType          string
	InpsType             string
	ArtigianiFixedIncome float64
	ArtigianiFixedCost   float64
	ArtigianiExceedRate  float64
	AnnualGoal           float64
	ManualSaldo          float64
	OpeningHistory       map[string]float64
	ExpenseGoals         map[string]float64
	LockedYears          []int
}

// AtecoCodeConfig is one raw ATECO classification record.
type AtecoCodeConfig struct {
	ID          string
	Code        string
	Description string
	Coefficient float64
}

// TransactionConfig is one raw cash-movement record with its date still in
// string form.
type TransactionConfig struct {
	ID          string
	Date        string
	Type        string
	Category    string
	Amount      float64
	Description string
	Client      string
	Tags        string
	AtecoCodeID string
	Status      string
}

// FixedDebtConfig is one raw recurring-obligation record.
type FixedDebtConfig struct {
	ID          string
	Name        string
	TotalDue    float64
	Installment float64
	DebitDay    int
	Suspended   bool
	Type        string
	StartMonth  int
	StartYear   int
	PaymentMode string
}

// ContractConfig is one raw pipeline-item record.
type ContractConfig struct {
	ID           string
	Title        string
	ClientName   string
	Amount       float64
	Category     string
	AtecoCodeID  string
	Status       string
	ExpectedDate string
	Notes        string
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader, e.g. an HTTP upload.
func LoadConfigurationFromReader(reader io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(reader); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Records that fail to parse are reported and skipped so a
// single malformed date does not hide the remaining warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	codes := c.atecoCodes()
	warnings = append(warnings, validation.ValidateAtecoCodes(codes)...)

	settings, settingsWarnings := c.settings()
	warnings = append(warnings, settingsWarnings...)
	warnings = append(warnings, validation.ValidateSettings(settings)...)

	warnings = append(warnings, validation.ValidateFixedDebts(c.fixedDebts())...)

	transactions, txWarnings := c.transactions()
	warnings = append(warnings, txWarnings...)
	warnings = append(warnings, validation.ValidateTransactions(transactions, codes, settings.LockedYears)...)

	_, contractWarnings := c.contracts()
	warnings = append(warnings, contractWarnings...)

	return warnings
}
