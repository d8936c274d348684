package validation

import (
	"fmt"

	"github.com/forfettario/fisco-forecast/internal/fiscal"
)

// ValidateAtecoCodes warns about coefficients outside the meaningful (0,1]
// range and duplicate identifiers.
func ValidateAtecoCodes(codes []fiscal.AtecoCode) []string {
	var warnings []string
	seen := make(map[string]struct{})
	for _, code := range codes {
		if code.Coefficient <= 0 || code.Coefficient > 1 {
			warnings = append(warnings, fmt.Sprintf("ATECO code '%s' has coefficient %.2f outside (0,1]",
				code.Code, code.Coefficient))
		}
		if _, dup := seen[code.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("ATECO code id '%s' appears more than once", code.ID))
		}
		seen[code.ID] = struct{}{}
	}
	return warnings
}

// ValidateTransactions warns about income records referencing unknown ATECO
// codes, negative amounts, and movements dated inside locked years.
func ValidateTransactions(transactions []fiscal.Transaction, codes []fiscal.AtecoCode, lockedYears []int) []string {
	var warnings []string
	known := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		known[code.ID] = struct{}{}
	}
	locked := make(map[int]struct{}, len(lockedYears))
	for _, year := range lockedYears {
		locked[year] = struct{}{}
	}

	for _, tx := range transactions {
		if tx.Amount < 0 {
			warnings = append(warnings, fmt.Sprintf("Transaction '%s' has a negative amount %.2f", tx.ID, tx.Amount))
		}
		if tx.Type == fiscal.Income && tx.Category != fiscal.CategoryExtra && tx.AtecoCodeID != "" {
			if _, ok := known[tx.AtecoCodeID]; !ok {
				warnings = append(warnings, fmt.Sprintf("Transaction '%s' references unknown ATECO code '%s' - the fallback coefficient will apply",
					tx.ID, tx.AtecoCodeID))
			}
		}
		if _, isLocked := locked[tx.Date.Year()]; isLocked {
			warnings = append(warnings, fmt.Sprintf("Transaction '%s' is dated inside locked year %d", tx.ID, tx.Date.Year()))
		}
	}
	return warnings
}

// ValidateFixedDebts warns about debit days outside the 1-28 window and
// non-positive installments on active debts.
func ValidateFixedDebts(debts []fiscal.FixedDebt) []string {
	var warnings []string
	for _, debt := range debts {
		if debt.DebitDay < 1 || debt.DebitDay > 28 {
			warnings = append(warnings, fmt.Sprintf("Fixed debt '%s' has debit day %d outside 1-28", debt.Name, debt.DebitDay))
		}
		if !debt.Suspended && debt.Installment <= 0 {
			warnings = append(warnings, fmt.Sprintf("Fixed debt '%s' is active but has a non-positive installment", debt.Name))
		}
		if debt.StartMonth < 1 || debt.StartMonth > 12 {
			warnings = append(warnings, fmt.Sprintf("Fixed debt '%s' has start month %d outside 1-12", debt.Name, debt.StartMonth))
		}
	}
	return warnings
}

// ValidateSettings warns about regime constants that would distort the
// estimates.
func ValidateSettings(settings fiscal.UserSettings) []string {
	var warnings []string
	if settings.TaxRateType != "" && settings.TaxRateType != "5%" && settings.TaxRateType != "15%" {
		warnings = append(warnings, fmt.Sprintf("Tax rate type '%s' is not 5%% or 15%% - the ordinary 15%% rate will apply",
			settings.TaxRateType))
	}
	if settings.InpsType != "" && settings.InpsType != fiscal.RegimeSeparata && settings.InpsType != fiscal.RegimeArtigiani {
		warnings = append(warnings, fmt.Sprintf("INPS regime '%s' is unknown - Gestione Separata will apply", settings.InpsType))
	}
	if settings.ArtigianiExceedRate < 0 || settings.ArtigianiExceedRate > 1 {
		warnings = append(warnings, fmt.Sprintf("Artigiani exceed rate %.2f is outside [0,1]", settings.ArtigianiExceedRate))
	}
	if settings.AnnualGoal < 0 {
		warnings = append(warnings, fmt.Sprintf("Annual goal %.2f is negative", settings.AnnualGoal))
	}
	return warnings
}
