package fiscal_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/forfettario/fisco-forecast/internal/fiscal"
	"github.com/forfettario/fisco-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const tolerance = 0.005

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func computeScenarioA(t *testing.T, settings fiscal.UserSettings) fiscal.Stats {
	t.Helper()
	engine := fiscal.NewEngine(zap.NewNop())
	return engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10000),
		},
		Settings:   settings,
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})
}

func TestScenarioSeparataSingleIncome(t *testing.T) {
	stats := computeScenarioA(t, testutil.SeparataSettings("5%"))

	if !almostEqual(stats.FlatTax, 335.0) {
		t.Errorf("FlatTax = %.2f, expected 335.00", stats.FlatTax)
	}
	if !almostEqual(stats.Inps, 1757.41) {
		t.Errorf("Inps = %.2f, expected 1757.41", stats.Inps)
	}
	if !almostEqual(stats.TotalTaxEstimate, 2092.41) {
		t.Errorf("TotalTaxEstimate = %.2f, expected 2092.41", stats.TotalTaxEstimate)
	}
	if !almostEqual(stats.TaxableIncome, 6700.0) {
		t.Errorf("TaxableIncome = %.2f, expected 6700.00", stats.TaxableIncome)
	}
	if stats.TaxRateApplied != 0.05 {
		t.Errorf("TaxRateApplied = %v, expected 0.05", stats.TaxRateApplied)
	}
}

func TestScenarioInpsDeduction(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10000),
			testutil.ExpenseTransaction("t2", time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC), 1000, fiscal.CategoryInps),
		},
		Settings:   testutil.SeparataSettings("5%"),
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	if !almostEqual(stats.TaxableIncome, 5700.0) {
		t.Errorf("TaxableIncome = %.2f, expected 5700.00", stats.TaxableIncome)
	}
	if !almostEqual(stats.FlatTax, 285.0) {
		t.Errorf("FlatTax = %.2f, expected 285.00", stats.FlatTax)
	}
	if !almostEqual(stats.InpsPaid, 1000.0) {
		t.Errorf("InpsPaid = %.2f, expected 1000.00", stats.InpsPaid)
	}
	if !almostEqual(stats.TaxesPaid, 1000.0) {
		t.Errorf("TaxesPaid = %.2f, expected 1000.00", stats.TaxesPaid)
	}
	if !almostEqual(stats.RealExpenses, 1000.0) {
		t.Errorf("RealExpenses = %.2f, expected 1000.00", stats.RealExpenses)
	}
}

func TestScenarioFixedDebtChain(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10000),
		},
		FixedDebts: []fiscal.FixedDebt{
			{ID: "d1", Name: "Mutuo", Installment: 500, DebitDay: 5, StartMonth: 1, StartYear: 2025, Type: fiscal.DebtTypeDebt},
		},
		Settings:   testutil.SeparataSettings("5%"),
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	if !almostEqual(stats.TotalFixedDebtEstimate, 6000.0) {
		t.Errorf("TotalFixedDebtEstimate = %.2f, expected 6000.00", stats.TotalFixedDebtEstimate)
	}
	if !almostEqual(stats.NetAvailableIncome, 1907.59) {
		t.Errorf("NetAvailableIncome = %.2f, expected 1907.59", stats.NetAvailableIncome)
	}
	if !almostEqual(stats.MonthlyNetIncome, stats.NetAvailableIncome/12) {
		t.Errorf("MonthlyNetIncome = %.2f, expected %.2f", stats.MonthlyNetIncome, stats.NetAvailableIncome/12)
	}
}

func TestScenarioGoalTracking(t *testing.T) {
	settings := testutil.SeparataSettings("15%")
	settings.AnnualGoal = 100000
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), 25000),
		},
		Settings:   settings,
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	if !almostEqual(stats.GoalPercentage, 25.0) {
		t.Errorf("GoalPercentage = %.2f, expected 25.00", stats.GoalPercentage)
	}
	if !almostEqual(stats.GapToGoal, 75000.0) {
		t.Errorf("GapToGoal = %.2f, expected 75000.00", stats.GapToGoal)
	}
	if !almostEqual(stats.CeilingUsagePercent, 25000.0/85000.0*100) {
		t.Errorf("CeilingUsagePercent = %.2f, expected %.2f", stats.CeilingUsagePercent, 25000.0/85000.0*100)
	}
}

func TestScenarioArtigianiThresholdBoundary(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC), 18415),
		},
		Settings:   testutil.ArtigianiSettings("15%"),
		AtecoCodes: testutil.SingleAteco(1.0),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	// Taxable income exactly at the threshold owes only the fixed minimum.
	if !almostEqual(stats.TaxableIncome, 18415.0) {
		t.Fatalf("TaxableIncome = %.2f, expected 18415.00", stats.TaxableIncome)
	}
	if !almostEqual(stats.Inps, 4515.0) {
		t.Errorf("Inps = %.2f, expected 4515.00", stats.Inps)
	}
}

func TestIncomeAdditivity(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	transactions := []fiscal.Transaction{
		testutil.IncomeTransaction("t1", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), 1200.50),
		testutil.IncomeTransaction("t2", time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC), 3300),
		{
			ID: "t3", Date: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			Type: fiscal.Income, Category: fiscal.CategoryExtra, Amount: 750.25,
		},
	}
	stats := engine.Compute(fiscal.Input{
		Transactions: transactions,
		Settings:     testutil.SeparataSettings("5%"),
		AtecoCodes:   testutil.SingleAteco(0.78),
		ViewYear:     2025,
		Now:          testutil.FixedNow(),
	})

	if !almostEqual(stats.BusinessIncome+stats.ExtraIncome, stats.TotalIncome) {
		t.Errorf("business %.2f + extra %.2f != total %.2f",
			stats.BusinessIncome, stats.ExtraIncome, stats.TotalIncome)
	}
	if !almostEqual(stats.ExtraIncome, 750.25) {
		t.Errorf("ExtraIncome = %.2f, expected 750.25", stats.ExtraIncome)
	}
}

func TestTaxableIncomeNeverNegative(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 1000),
			testutil.ExpenseTransaction("t2", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 5000, fiscal.CategoryInps),
		},
		Settings:   testutil.SeparataSettings("5%"),
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	if stats.TaxableIncome != 0 {
		t.Errorf("TaxableIncome = %.2f, expected 0 (deduction floor)", stats.TaxableIncome)
	}
	if stats.FlatTax != 0 {
		t.Errorf("FlatTax = %.2f, expected 0", stats.FlatTax)
	}
}

func TestFlatTaxLinearity(t *testing.T) {
	for _, rateType := range []string{"5%", "15%"} {
		t.Run(rateType, func(t *testing.T) {
			stats := computeScenarioA(t, testutil.SeparataSettings(rateType))
			if stats.FlatTax != stats.TaxableIncome*stats.TaxRateApplied {
				t.Errorf("FlatTax = %v, expected TaxableIncome x rate = %v",
					stats.FlatTax, stats.TaxableIncome*stats.TaxRateApplied)
			}
		})
	}
}

func TestContributionRegimeBranches(t *testing.T) {
	engine := fiscal.NewEngine(nil)

	tests := []struct {
		name     string
		settings fiscal.UserSettings
		income   float64
		expected float64
	}{
		{
			name:     "separata is a flat percentage",
			settings: testutil.SeparataSettings("15%"),
			income:   30000,
			expected: 30000 * 0.2623,
		},
		{
			name:     "artigiani below threshold owes the fixed minimum",
			settings: testutil.ArtigianiSettings("15%"),
			income:   10000,
			expected: 4515,
		},
		{
			name:     "artigiani above threshold adds the marginal rate",
			settings: testutil.ArtigianiSettings("15%"),
			income:   20000,
			expected: 4515 + (20000-18415)*0.24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := engine.Compute(fiscal.Input{
				Transactions: []fiscal.Transaction{
					testutil.IncomeTransaction("t1", time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), tt.income),
				},
				Settings:   tt.settings,
				AtecoCodes: testutil.SingleAteco(1.0),
				ViewYear:   2025,
				Now:        testutil.FixedNow(),
			})
			if !almostEqual(stats.Inps, tt.expected) {
				t.Errorf("Inps = %.2f, expected %.2f", stats.Inps, tt.expected)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	input := fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 12345.67),
			testutil.ExpenseTransaction("t2", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 987.65, fiscal.CategoryPersonal),
		},
		FixedDebts: []fiscal.FixedDebt{
			{ID: "d1", Installment: 250, StartMonth: 3, StartYear: 2025},
		},
		Contracts: []fiscal.Contract{
			{ID: "c1", Amount: 4000, Status: fiscal.ContractPending,
				AtecoCodeID:  "ateco-1",
				ExpectedDate: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)},
		},
		Settings:   testutil.ArtigianiSettings("5%"),
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	}

	first := engine.Compute(input)
	second := engine.Compute(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different outputs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDebtEstimateExclusions(t *testing.T) {
	engine := fiscal.NewEngine(nil)

	tests := []struct {
		name     string
		debt     fiscal.FixedDebt
		expected float64
	}{
		{
			name:     "suspended debt contributes zero",
			debt:     fiscal.FixedDebt{Installment: 500, StartMonth: 1, StartYear: 2025, Suspended: true},
			expected: 0,
		},
		{
			name:     "debt starting after the view year contributes zero",
			debt:     fiscal.FixedDebt{Installment: 500, StartMonth: 1, StartYear: 2026},
			expected: 0,
		},
		{
			name:     "mid-year start counts remaining months",
			debt:     fiscal.FixedDebt{Installment: 500, StartMonth: 4, StartYear: 2025},
			expected: 500 * 9,
		},
		{
			name:     "prior-year start counts the full year",
			debt:     fiscal.FixedDebt{Installment: 500, StartMonth: 7, StartYear: 2023},
			expected: 500 * 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := engine.Compute(fiscal.Input{
				FixedDebts: []fiscal.FixedDebt{tt.debt},
				Settings:   testutil.SeparataSettings("5%"),
				ViewYear:   2025,
				Now:        testutil.FixedNow(),
			})
			if !almostEqual(stats.TotalFixedDebtEstimate, tt.expected) {
				t.Errorf("TotalFixedDebtEstimate = %.2f, expected %.2f", stats.TotalFixedDebtEstimate, tt.expected)
			}
		})
	}
}

func TestScheduledTransactionPartition(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	now := testutil.FixedNow()

	futureExpense := testutil.ExpenseTransaction("t1", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 800, fiscal.CategoryBusiness)
	futureExpense.Status = fiscal.StatusScheduled
	pastScheduledIncome := testutil.IncomeTransaction("t2", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), 2000)
	pastScheduledIncome.Status = fiscal.StatusScheduled
	otherYear := testutil.IncomeTransaction("t3", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 9999)

	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{futureExpense, pastScheduledIncome, otherYear},
		Settings:     testutil.SeparataSettings("5%"),
		AtecoCodes:   testutil.SingleAteco(0.67),
		ViewYear:     2025,
		Now:          now,
	})

	if !almostEqual(stats.ScheduledExpenses, 800) {
		t.Errorf("ScheduledExpenses = %.2f, expected 800.00", stats.ScheduledExpenses)
	}
	if stats.RealExpenses != 0 {
		t.Errorf("RealExpenses = %.2f, expected 0 (scheduled-future excluded)", stats.RealExpenses)
	}
	if !almostEqual(stats.TotalIncome, 2000) {
		t.Errorf("TotalIncome = %.2f, expected 2000.00 (scheduled but already due counts, other years excluded)", stats.TotalIncome)
	}
}

func TestCashPosition(t *testing.T) {
	settings := testutil.SeparataSettings("5%")
	settings.OpeningHistory = map[int]float64{2025: 12000}
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10000),
			testutil.ExpenseTransaction("t2", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 3000, fiscal.CategoryPersonal),
		},
		Settings:   settings,
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	})

	if !almostEqual(stats.OpeningBalance, 12000) {
		t.Errorf("OpeningBalance = %.2f, expected 12000.00", stats.OpeningBalance)
	}
	if !almostEqual(stats.RealNetIncome, 7000) {
		t.Errorf("RealNetIncome = %.2f, expected 7000.00", stats.RealNetIncome)
	}
	if !almostEqual(stats.CurrentLiquidity, 19000) {
		t.Errorf("CurrentLiquidity = %.2f, expected 19000.00", stats.CurrentLiquidity)
	}
}

func TestForecastOverlay(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	base := fiscal.Input{
		Transactions: []fiscal.Transaction{
			testutil.IncomeTransaction("t1", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10000),
		},
		Contracts: []fiscal.Contract{
			{ID: "c1", Title: "Rearchitecture", Amount: 5000, Status: fiscal.ContractPending,
				AtecoCodeID:  "ateco-1",
				ExpectedDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "c2", Title: "Done deal", Amount: 7000, Status: fiscal.ContractCompleted,
				AtecoCodeID:  "ateco-1",
				ExpectedDate: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "c3", Title: "Next year", Amount: 9000, Status: fiscal.ContractSigned,
				AtecoCodeID:  "ateco-1",
				ExpectedDate: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)},
		},
		Settings:   testutil.SeparataSettings("5%"),
		AtecoCodes: testutil.SingleAteco(0.67),
		ViewYear:   2025,
		Now:        testutil.FixedNow(),
	}

	stats := engine.Compute(base)

	// Only the pending in-year contract feeds the overlay: the completed one
	// is presumed already invoiced, the 2026 one is out of scope.
	if !almostEqual(stats.ForecastedBusinessIncome, 15000) {
		t.Errorf("ForecastedBusinessIncome = %.2f, expected 15000.00", stats.ForecastedBusinessIncome)
	}

	forecastedTaxable := (10000 + 5000) * 0.67
	expectedTax := forecastedTaxable*0.05 + forecastedTaxable*0.2623
	if !almostEqual(stats.ForecastedTaxTotal, expectedTax) {
		t.Errorf("ForecastedTaxTotal = %.2f, expected %.2f", stats.ForecastedTaxTotal, expectedTax)
	}
	if !almostEqual(stats.ForecastedNetIncome, 15000-expectedTax) {
		t.Errorf("ForecastedNetIncome = %.2f, expected %.2f", stats.ForecastedNetIncome, 15000-expectedTax)
	}

	deltaTax := expectedTax - stats.TotalTaxEstimate
	expectedLiquidity := stats.CurrentLiquidity + 5000 - deltaTax
	if !almostEqual(stats.ForecastedLiquidity, expectedLiquidity) {
		t.Errorf("ForecastedLiquidity = %.2f, expected %.2f", stats.ForecastedLiquidity, expectedLiquidity)
	}
}

func TestMarginalEfficiencySeparata(t *testing.T) {
	stats := computeScenarioA(t, testutil.SeparataSettings("5%"))

	extraTaxable := 1000 * 0.67
	expected := 1000 - extraTaxable*0.2623 - extraTaxable*(1-0.2623)*0.05
	if !almostEqual(stats.TaxEfficiencyPer1000, expected) {
		t.Errorf("TaxEfficiencyPer1000 = %.2f, expected %.2f", stats.TaxEfficiencyPer1000, expected)
	}
}

func TestMarginalEfficiencyArtigiani(t *testing.T) {
	engine := fiscal.NewEngine(nil)

	tests := []struct {
		name     string
		income   float64
		expected func(extraTaxable float64) float64
	}{
		{
			// Run-rate projection stays under the threshold: the fixed
			// minimum already covers the marginal euro, only tax applies.
			name:   "below threshold run-rate",
			income: 5000,
			expected: func(extraTaxable float64) float64 {
				return 1000 - extraTaxable*0.15
			},
		},
		{
			// gross taxable 40000 over 7 elapsed months projects well above
			// the 18415 threshold.
			name:   "above threshold run-rate",
			income: 40000,
			expected: func(extraTaxable float64) float64 {
				return 1000 - extraTaxable*0.24 - extraTaxable*(1-0.24)*0.15
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := engine.Compute(fiscal.Input{
				Transactions: []fiscal.Transaction{
					testutil.IncomeTransaction("t1", time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), tt.income),
				},
				Settings:   testutil.ArtigianiSettings("15%"),
				AtecoCodes: testutil.SingleAteco(1.0),
				ViewYear:   2025,
				Now:        testutil.FixedNow(),
			})
			expected := tt.expected(1000 * 1.0)
			if !almostEqual(stats.TaxEfficiencyPer1000, expected) {
				t.Errorf("TaxEfficiencyPer1000 = %.2f, expected %.2f", stats.TaxEfficiencyPer1000, expected)
			}
		})
	}
}

func TestTagExpenses(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	trip := testutil.ExpenseTransaction("t1", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), 600, fiscal.CategoryPersonal)
	trip.Tags = "viaggi, svago"
	dinner := testutil.ExpenseTransaction("t2", time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC), 80, fiscal.CategoryPersonal)
	dinner.Tags = "svago"

	stats := engine.Compute(fiscal.Input{
		Transactions: []fiscal.Transaction{trip, dinner},
		Settings:     testutil.SeparataSettings("5%"),
		ViewYear:     2025,
		Now:          testutil.FixedNow(),
	})

	if !almostEqual(stats.TagExpenses["viaggi"], 600) {
		t.Errorf("TagExpenses[viaggi] = %.2f, expected 600.00", stats.TagExpenses["viaggi"])
	}
	if !almostEqual(stats.TagExpenses["svago"], 680) {
		t.Errorf("TagExpenses[svago] = %.2f, expected 680.00", stats.TagExpenses["svago"])
	}
}

func TestEmptyInputDegradesToZero(t *testing.T) {
	engine := fiscal.NewEngine(nil)
	stats := engine.Compute(fiscal.Input{
		Settings: testutil.SeparataSettings("5%"),
		ViewYear: 2025,
		Now:      testutil.FixedNow(),
	})

	values := map[string]float64{
		"TotalIncome":          stats.TotalIncome,
		"BreakEvenTurnover":    stats.BreakEvenTurnover,
		"GoalPercentage":       stats.GoalPercentage,
		"CeilingUsagePercent":  stats.CeilingUsagePercent,
		"MonthlyNetIncome":     stats.MonthlyNetIncome,
		"ForecastedTaxTotal":   stats.ForecastedTaxTotal,
		"TaxableIncome":        stats.TaxableIncome,
		"ForecastedLiquidity":  stats.ForecastedLiquidity,
		"TaxEfficiencyPer1000": stats.TaxEfficiencyPer1000,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, expected a finite value", name, v)
		}
	}
	if stats.TotalIncome != 0 || stats.TaxableIncome != 0 || stats.BreakEvenTurnover != 0 {
		t.Errorf("expected zero-valued figures for empty input, got income %.2f, taxable %.2f, break-even %.2f",
			stats.TotalIncome, stats.TaxableIncome, stats.BreakEvenTurnover)
	}
}
