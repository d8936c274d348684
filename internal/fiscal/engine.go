package fiscal

import (
	"strings"
	"time"

	"github.com/forfettario/fisco-forecast/pkg/constants"
	"github.com/forfettario/fisco-forecast/pkg/datetime"
	"github.com/forfettario/fisco-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine computes the derived fiscal statistics for one view year. It is
// stateless apart from its logger; Compute is safe to call concurrently.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new fiscal calculation engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Compute derives the full Stats snapshot from the given input. It is
// deterministic and total: structurally valid input never produces an error,
// NaN, or Inf; missing settings degrade to documented defaults.
func (e *Engine) Compute(in Input) Stats {
	var stats Stats

	// Recurring debt annual estimate. This is a forward estimate for the
	// full calendar year, not an elapsed-so-far figure.
	stats.TotalFixedDebtEstimate = annualDebtEstimate(in.FixedDebts, in.ViewYear)

	// Partition the view year's transactions into realized and
	// scheduled-future sets.
	active, scheduled := partitionTransactions(in.Transactions, in.ViewYear, in.Now)
	for _, tx := range scheduled {
		if tx.Type == Expense {
			stats.ScheduledExpenses += tx.Amount
		}
	}

	// Income decomposition.
	for _, tx := range active {
		if tx.Type != Income {
			continue
		}
		stats.TotalIncome += tx.Amount
		if tx.Category == CategoryExtra {
			stats.ExtraIncome += tx.Amount
			continue
		}
		stats.BusinessIncome += tx.Amount
		stats.GrossTaxableIncome += tx.Amount * e.coefficientFor(tx.AtecoCodeID, in.AtecoCodes)
	}

	// Expense decomposition. Every cash outflow counts, deliberately
	// including tax and INPS payments: this is a cash-flow view, not a P&L.
	for _, tx := range active {
		if tx.Type != Expense {
			continue
		}
		stats.RealExpenses += tx.Amount
		switch tx.Category {
		case CategoryTax:
			stats.TaxesPaid += tx.Amount
		case CategoryInps:
			stats.TaxesPaid += tx.Amount
			stats.InpsPaid += tx.Amount
		}
		accumulateTags(&stats, tx)
	}

	// Net taxable income ("reddito imponibile"): INPS paid is deductible,
	// the substitute tax is not. Floored at zero.
	stats.TaxableIncome = mathutil.NonNegative(stats.GrossTaxableIncome - stats.InpsPaid)

	// Substitute flat tax.
	stats.TaxRateApplied = in.Settings.TaxRate()
	stats.FlatTax = stats.TaxableIncome * stats.TaxRateApplied

	// Social security estimate, branching on the contribution regime.
	stats.Inps = e.contributionEstimate(stats.TaxableIncome, in.Settings)
	stats.TotalTaxEstimate = stats.FlatTax + stats.Inps

	// Cash position.
	stats.OpeningBalance = in.Settings.OpeningHistory[in.ViewYear]
	stats.RealNetIncome = stats.TotalIncome - stats.RealExpenses
	stats.CurrentLiquidity = stats.OpeningBalance + stats.RealNetIncome

	// Disposable income chain.
	stats.EstimatedNetIncome = stats.BusinessIncome - stats.TotalTaxEstimate
	stats.NetAvailableIncome = stats.EstimatedNetIncome - stats.TotalFixedDebtEstimate
	stats.RemainingTaxDue = stats.TotalTaxEstimate - stats.TaxesPaid
	stats.MonthlyNetIncome = stats.NetAvailableIncome / constants.MonthsPerYear

	monthsElapsed := datetime.MonthsElapsed(in.ViewYear, in.Now)
	weightedCoeff := averageCoefficient(stats.GrossTaxableIncome, stats.BusinessIncome)

	// Break-even turnover: the gross revenue whose after-tax leftover covers
	// annual fixed debts plus projected lifestyle spending.
	target := stats.TotalFixedDebtEstimate + projectedAnnualVariable(
		stats.RealExpenses-stats.TaxesPaid,
		stats.TotalFixedDebtEstimate,
		monthsElapsed,
	)
	stats.BreakEvenTurnover = e.breakEvenTurnover(breakEvenParams{
		TargetNetIncome: target,
		Coefficient:     weightedCoeff,
		TaxRate:         stats.TaxRateApplied,
		Settings:        in.Settings,
	})

	// Marginal efficiency: net value of the next €1000 of revenue.
	stats.TaxEfficiencyPer1000 = e.marginalEfficiency(
		weightedCoeff, stats.GrossTaxableIncome, monthsElapsed, in.Settings, stats.TaxRateApplied)

	// Payment deadline calendar.
	stats.Deadlines = e.paymentDeadlines(in.ViewYear, in.Settings, stats.FlatTax, stats.Inps)

	// Pipeline overlay: forward-looking twins including unconfirmed
	// contracts.
	e.applyForecast(&stats, in)

	// Goal tracking.
	stats.GoalPercentage = mathutil.Percentage(stats.BusinessIncome, in.Settings.AnnualGoal)
	stats.GapToGoal = mathutil.NonNegative(in.Settings.AnnualGoal - stats.BusinessIncome)
	stats.CeilingUsagePercent = mathutil.Percentage(stats.BusinessIncome, constants.RevenueCeiling)

	return stats
}

// annualDebtEstimate sums a full calendar year of installments for every debt
// active in the view year. Suspended debts and debts starting after the view
// year contribute zero.
func annualDebtEstimate(debts []FixedDebt, viewYear int) float64 {
	total := 0.0
	for _, debt := range debts {
		if debt.Suspended || debt.StartYear > viewYear {
			continue
		}
		firstMonth := 1
		if debt.StartYear == viewYear && debt.StartMonth > 1 {
			firstMonth = debt.StartMonth
		}
		months := constants.MonthsPerYear - firstMonth + 1
		if months < 0 {
			months = 0
		}
		total += debt.Installment * float64(months)
	}
	return total
}

// partitionTransactions filters to the view year and splits realized from
// scheduled-future movements. A scheduled transaction dated today or earlier
// counts as realized.
func partitionTransactions(transactions []Transaction, viewYear int, now time.Time) (active, scheduled []Transaction) {
	for _, tx := range transactions {
		if !datetime.InYear(tx.Date, viewYear) {
			continue
		}
		if tx.EffectiveStatus() == StatusScheduled && datetime.IsFuture(tx.Date, now) {
			scheduled = append(scheduled, tx)
			continue
		}
		active = append(active, tx)
	}
	return active, scheduled
}

// coefficientFor resolves the profitability coefficient for an income
// transaction: matching ATECO code, else the first code in the list, else the
// statutory default.
func (e *Engine) coefficientFor(atecoCodeID string, codes []AtecoCode) float64 {
	for _, code := range codes {
		if code.ID == atecoCodeID {
			return code.Coefficient
		}
	}
	if len(codes) > 0 {
		if atecoCodeID != "" {
			e.logger.Debug("unknown ATECO code, falling back to first configured code",
				zap.String("op", "fiscal.coefficientFor"),
				zap.String("atecoCodeId", atecoCodeID),
			)
		}
		return codes[0].Coefficient
	}
	e.logger.Debug("no ATECO codes configured, using default coefficient",
		zap.String("op", "fiscal.coefficientFor"),
		zap.Float64("coefficient", constants.DefaultCoefficient),
	)
	return constants.DefaultCoefficient
}

// contributionEstimate computes the annual INPS estimate on the taxable
// income for the configured regime.
func (e *Engine) contributionEstimate(taxableIncome float64, settings UserSettings) float64 {
	switch settings.InpsType {
	case RegimeArtigiani:
		threshold, fixedCost, exceedRate := settings.ArtigianiParams()
		return fixedCost + mathutil.NonNegative(taxableIncome-threshold)*exceedRate
	default:
		// Gestione Separata: flat percentage, no threshold.
		return taxableIncome * constants.SeparataRate
	}
}

// averageCoefficient is the portfolio-average ATECO coefficient actually
// observed in the year's income, used by the break-even and marginal math.
func averageCoefficient(grossTaxable, businessIncome float64) float64 {
	if businessIncome > 0 {
		return grossTaxable / businessIncome
	}
	return constants.DefaultCoefficient
}

// projectedAnnualVariable annualizes the lifestyle (non-debt, non-tax)
// spending observed so far. When the fixed-debt estimate exceeds observed
// spending the full non-tax figure is used instead, which handles users who
// never logged their debts as transactions.
func projectedAnnualVariable(nonTaxSpending, annualDebtEstimate float64, monthsElapsed int) float64 {
	if monthsElapsed < 1 {
		monthsElapsed = 1
	}
	debtPaidSoFar := annualDebtEstimate / constants.MonthsPerYear * float64(monthsElapsed)
	variable := nonTaxSpending - debtPaidSoFar
	if variable < 0 {
		variable = nonTaxSpending
	}
	return variable / float64(monthsElapsed) * constants.MonthsPerYear
}

// marginalEfficiency computes the net cash kept from a notional extra €1000
// of revenue, re-running the per-regime formulas at the margin. The same
// margin algebra as the break-even solve is used so the two agree.
func (e *Engine) marginalEfficiency(coefficient, grossTaxable float64, monthsElapsed int, settings UserSettings, taxRate float64) float64 {
	step := constants.MarginalRevenueStep
	extraTaxable := step * coefficient

	var marginalInps, marginalTax float64
	switch settings.InpsType {
	case RegimeArtigiani:
		threshold, _, exceedRate := settings.ArtigianiParams()
		if monthsElapsed < 1 {
			monthsElapsed = 1
		}
		// Run-rate projection decides whether the fixed-minimum threshold is
		// already exhausted at the margin.
		projectedTaxable := grossTaxable / float64(monthsElapsed) * constants.MonthsPerYear
		if projectedTaxable > threshold {
			marginalInps = extraTaxable * exceedRate
			marginalTax = extraTaxable * (1 - exceedRate) * taxRate
		} else {
			marginalInps = 0
			marginalTax = extraTaxable * taxRate
		}
	default:
		marginalInps = extraTaxable * constants.SeparataRate
		marginalTax = extraTaxable * (1 - constants.SeparataRate) * taxRate
	}

	return step - marginalInps - marginalTax
}

// applyForecast overlays the unconfirmed contract pipeline onto the realized
// figures, producing the forward-looking twins. Completed contracts are
// excluded to avoid double counting against real transactions.
func (e *Engine) applyForecast(stats *Stats, in Input) {
	var pipelineBusiness, pipelineExtra, pipelineGrossTaxable float64
	for _, contract := range in.Contracts {
		if contract.Status == ContractCompleted {
			continue
		}
		if contract.ExpectedDate.Year() > in.ViewYear {
			continue
		}
		if contract.EffectiveCategory() == CategoryExtra {
			pipelineExtra += contract.Amount
			continue
		}
		pipelineBusiness += contract.Amount
		pipelineGrossTaxable += contract.Amount * e.coefficientFor(contract.AtecoCodeID, in.AtecoCodes)
	}

	forecastedTaxable := mathutil.NonNegative(stats.GrossTaxableIncome + pipelineGrossTaxable - stats.InpsPaid)
	forecastedFlatTax := forecastedTaxable * stats.TaxRateApplied
	forecastedInps := e.contributionEstimate(forecastedTaxable, in.Settings)

	stats.ForecastedBusinessIncome = stats.BusinessIncome + pipelineBusiness
	stats.ForecastedTaxTotal = forecastedFlatTax + forecastedInps
	stats.ForecastedNetIncome = stats.ForecastedBusinessIncome - stats.ForecastedTaxTotal

	deltaIncome := pipelineBusiness + pipelineExtra
	deltaTax := stats.ForecastedTaxTotal - stats.TotalTaxEstimate
	stats.ForecastedLiquidity = stats.CurrentLiquidity + deltaIncome - deltaTax
}

// accumulateTags groups active expense amounts by tag so callers can compare
// against their configured expense goals.
func accumulateTags(stats *Stats, tx Transaction) {
	if tx.Tags == "" {
		return
	}
	if stats.TagExpenses == nil {
		stats.TagExpenses = make(map[string]float64)
	}
	for _, tag := range strings.Split(tx.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		stats.TagExpenses[tag] += tx.Amount
	}
}
