// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/forfettario/fisco-forecast/internal/fiscal"
)

// FixedNow returns a stable reference instant (July 15, 2025) so tests never
// depend on the wall clock.
func FixedNow() time.Time {
	return time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
}

// SingleAteco returns a one-element ATECO list with the given coefficient.
func SingleAteco(coefficient float64) []fiscal.AtecoCode {
	return []fiscal.AtecoCode{
		{ID: "ateco-1", Code: "62.02.00", Description: "Consulenza informatica", Coefficient: coefficient},
	}
}

// IncomeTransaction builds an active business income transaction resolved
// against the first code from SingleAteco.
func IncomeTransaction(id string, date time.Time, amount float64) fiscal.Transaction {
	return fiscal.Transaction{
		ID:          id,
		Date:        date,
		Type:        fiscal.Income,
		Category:    fiscal.CategoryBusiness,
		Amount:      amount,
		AtecoCodeID: "ateco-1",
	}
}

// ExpenseTransaction builds an active expense transaction with the given
// category.
func ExpenseTransaction(id string, date time.Time, amount float64, category fiscal.Category) fiscal.Transaction {
	return fiscal.Transaction{
		ID:       id,
		Date:     date,
		Type:     fiscal.Expense,
		Category: category,
		Amount:   amount,
	}
}

// SeparataSettings returns Gestione Separata settings with the given
// substitute tax rate type ("5%" or "15%").
func SeparataSettings(taxRateType string) fiscal.UserSettings {
	return fiscal.UserSettings{
		TaxRateType: taxRateType,
		InpsType:    fiscal.RegimeSeparata,
	}
}

// ArtigianiSettings returns Artigiani e Commercianti settings relying on the
// statutory defaults for the regime constants.
func ArtigianiSettings(taxRateType string) fiscal.UserSettings {
	return fiscal.UserSettings{
		TaxRateType: taxRateType,
		InpsType:    fiscal.RegimeArtigiani,
	}
}
