// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/forfettario/fisco-forecast/internal/fiscal"
)

// FiscalInput converts the raw configuration into the engine's input
// snapshot. Transaction and contract dates are strict: any unparseable date
// is an error, so the engine only ever sees well-typed records.
func (c *Configuration) FiscalInput(now time.Time) (fiscal.Input, error) {
	transactions, txWarnings := c.transactions()
	if len(txWarnings) > 0 {
		return fiscal.Input{}, fmt.Errorf("invalid transactions: %s", txWarnings[0])
	}

	contracts, contractWarnings := c.contracts()
	if len(contractWarnings) > 0 {
		return fiscal.Input{}, fmt.Errorf("invalid contracts: %s", contractWarnings[0])
	}

	// Settings conversion skips malformed opening-history keys; they are
	// surfaced through ValidateConfiguration rather than failing the load.
	settings, _ := c.settings()

	viewYear := c.ViewYear
	if viewYear == 0 {
		viewYear = now.Year()
	}

	return fiscal.Input{
		Transactions: transactions,
		FixedDebts:   c.fixedDebts(),
		Contracts:    contracts,
		Settings:     settings,
		AtecoCodes:   c.atecoCodes(),
		ViewYear:     viewYear,
		Now:          now,
	}, nil
}

func (c *Configuration) atecoCodes() []fiscal.AtecoCode {
	codes := make([]fiscal.AtecoCode, 0, len(c.AtecoCodes))
	for _, raw := range c.AtecoCodes {
		codes = append(codes, fiscal.AtecoCode{
			ID:          raw.ID,
			Code:        raw.Code,
			Description: raw.Description,
			Coefficient: raw.Coefficient,
		})
	}
	return codes
}

func (c *Configuration) settings() (fiscal.UserSettings, []string) {
	var warnings []string

	openingHistory := make(map[int]float64, len(c.Settings.OpeningHistory))
	for yearKey, balance := range c.Settings.OpeningHistory {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("opening history key '%s' is not a year", yearKey))
			continue
		}
		openingHistory[year] = balance
	}

	return fiscal.UserSettings{
		OpeningHistory:       openingHistory,
		TaxRateType:          c.Settings.TaxRateType,
		InpsType:             fiscal.InpsRegime(c.Settings.InpsType),
		ArtigianiFixedIncome: c.Settings.ArtigianiFixedIncome,
		ArtigianiFixedCost:   c.Settings.ArtigianiFixedCost,
		ArtigianiExceedRate:  c.Settings.ArtigianiExceedRate,
		AnnualGoal:           c.Settings.AnnualGoal,
		ExpenseGoals:         c.Settings.ExpenseGoals,
		ManualSaldo:          c.Settings.ManualSaldo,
		LockedYears:          c.Settings.LockedYears,
	}, warnings
}

func (c *Configuration) transactions() ([]fiscal.Transaction, []string) {
	var warnings []string
	transactions := make([]fiscal.Transaction, 0, len(c.Transactions))
	for _, raw := range c.Transactions {
		date, err := time.Parse(DateTimeLayout, raw.Date)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("transaction '%s' has unparseable date '%s'", raw.ID, raw.Date))
			continue
		}
		transactions = append(transactions, fiscal.Transaction{
			ID:          raw.ID,
			Date:        date,
			Type:        fiscal.TransactionType(raw.Type),
			Category:    fiscal.Category(raw.Category),
			Amount:      raw.Amount,
			Description: raw.Description,
			Client:      raw.Client,
			Tags:        raw.Tags,
			AtecoCodeID: raw.AtecoCodeID,
			Status:      fiscal.TransactionStatus(raw.Status),
		})
	}
	return transactions, warnings
}

func (c *Configuration) fixedDebts() []fiscal.FixedDebt {
	debts := make([]fiscal.FixedDebt, 0, len(c.FixedDebts))
	for _, raw := range c.FixedDebts {
		startMonth := raw.StartMonth
		if startMonth == 0 {
			startMonth = 1
		}
		debts = append(debts, fiscal.FixedDebt{
			ID:          raw.ID,
			Name:        raw.Name,
			TotalDue:    raw.TotalDue,
			Installment: raw.Installment,
			DebitDay:    raw.DebitDay,
			Suspended:   raw.Suspended,
			Type:        fiscal.FixedDebtType(raw.Type),
			StartMonth:  startMonth,
			StartYear:   raw.StartYear,
			PaymentMode: fiscal.PaymentMode(raw.PaymentMode),
		})
	}
	return debts
}

func (c *Configuration) contracts() ([]fiscal.Contract, []string) {
	var warnings []string
	contracts := make([]fiscal.Contract, 0, len(c.Contracts))
	for _, raw := range c.Contracts {
		expectedDate, err := time.Parse(DateTimeLayout, raw.ExpectedDate)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("contract '%s' has unparseable expected date '%s'", raw.ID, raw.ExpectedDate))
			continue
		}
		contracts = append(contracts, fiscal.Contract{
			ID:           raw.ID,
			Title:        raw.Title,
			ClientName:   raw.ClientName,
			Amount:       raw.Amount,
			Category:     fiscal.Category(raw.Category),
			AtecoCodeID:  raw.AtecoCodeID,
			Status:       fiscal.ContractStatus(raw.Status),
			ExpectedDate: expectedDate,
			Notes:        raw.Notes,
		})
	}
	return contracts, warnings
}
