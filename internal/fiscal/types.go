// Package fiscal defines the data structures for the flat-rate regime
// ("regime forfettario") tax estimation and includes the functions for
// computing the derived fiscal statistics.
package fiscal

import (
	"time"

	"github.com/forfettario/fisco-forecast/pkg/constants"
)

// TransactionType distinguishes cash inflows from outflows.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Category classifies a cash movement.
type Category string

const (
	CategoryBusiness Category = "business"
	CategoryPersonal Category = "personal"
	CategoryTax      Category = "tax"
	CategoryInps     Category = "inps"
	CategoryExtra    Category = "extra"
)

// TransactionStatus marks whether a transaction has happened or is merely
// scheduled.
type TransactionStatus string

const (
	StatusActive    TransactionStatus = "active"
	StatusScheduled TransactionStatus = "scheduled"
)

// Transaction is one cash movement. The engine only reads a snapshot; it
// never mutates or owns these records.
type Transaction struct {
	ID          string
	Date        time.Time
	Type        TransactionType
	Category    Category
	Amount      float64
	Description string
	Client      string
	Tags        string // comma-joined
	AtecoCodeID string
	Status      TransactionStatus
}

// EffectiveStatus returns the transaction status, defaulting to active when
// unset.
func (t Transaction) EffectiveStatus() TransactionStatus {
	if t.Status == "" {
		return StatusActive
	}
	return t.Status
}

// AtecoCode is a tax-category classification carrying the flat-rate
// profitability coefficient ("coefficiente di redditività").
type AtecoCode struct {
	ID          string
	Code        string
	Description string
	Coefficient float64 // fraction of gross revenue treated as taxable profit
}

// FixedDebtType distinguishes amortizing debts from open-ended subscriptions.
type FixedDebtType string

const (
	DebtTypeDebt         FixedDebtType = "debt"
	DebtTypeSubscription FixedDebtType = "subscription"
)

// PaymentMode indicates how a fixed debt gets settled.
type PaymentMode string

const (
	PaymentManual PaymentMode = "manual"
	PaymentAuto   PaymentMode = "auto"
)

// FixedDebt is a recurring monthly obligation such as a loan installment or a
// subscription.
type FixedDebt struct {
	ID          string
	Name        string
	TotalDue    float64 // original principal, 0 for open-ended subscriptions
	Installment float64
	DebitDay    int // 1-28
	Suspended   bool
	Type        FixedDebtType
	StartMonth  int // first active month, 1-12
	StartYear   int
	PaymentMode PaymentMode
}

// ContractStatus tracks an unconfirmed pipeline item through its lifecycle.
type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
)

// Contract is signed or pending work not yet invoiced. Completed contracts
// are presumed already reflected as real transactions.
type Contract struct {
	ID           string
	Title        string
	ClientName   string
	Amount       float64
	Category     Category // business or extra, default business
	AtecoCodeID  string
	Status       ContractStatus
	ExpectedDate time.Time
	Notes        string
}

// EffectiveCategory returns the contract category, defaulting to business
// when unset.
func (c Contract) EffectiveCategory() Category {
	if c.Category == "" {
		return CategoryBusiness
	}
	return c.Category
}

// InpsRegime selects the social-security contribution formula.
type InpsRegime string

const (
	RegimeSeparata  InpsRegime = "separata"
	RegimeArtigiani InpsRegime = "artigiani"
)

// UserSettings is the tax-regime configuration for one user/year context.
type UserSettings struct {
	OpeningHistory       map[int]float64 // year -> opening cash balance
	TaxRateType          string          // "5%" or "15%"
	InpsType             InpsRegime
	ArtigianiFixedIncome float64
	ArtigianiFixedCost   float64
	ArtigianiExceedRate  float64
	AnnualGoal           float64
	ExpenseGoals         map[string]float64 // tag -> budget ceiling
	ManualSaldo          float64            // carried-over balance due
	LockedYears          []int              // enforced by the caller, not the engine
}

// TaxRate maps the configured rate type onto the substitute tax rate.
// Anything other than the startup "5%" setting falls back to the ordinary
// 15% rate.
func (s UserSettings) TaxRate() float64 {
	if s.TaxRateType == "5%" {
		return constants.ReducedTaxRate
	}
	return constants.StandardTaxRate
}

// ArtigianiParams returns the Artigiani e Commercianti regime constants,
// substituting statutory defaults for omitted values.
func (s UserSettings) ArtigianiParams() (threshold, fixedCost, exceedRate float64) {
	threshold = s.ArtigianiFixedIncome
	if threshold == 0 {
		threshold = constants.DefaultArtigianiFixedIncome
	}
	fixedCost = s.ArtigianiFixedCost
	if fixedCost == 0 {
		fixedCost = constants.DefaultArtigianiFixedCost
	}
	exceedRate = s.ArtigianiExceedRate
	if exceedRate == 0 {
		exceedRate = constants.DefaultArtigianiExceedRate
	}
	return threshold, fixedCost, exceedRate
}

// Deadline is one fiscal due date with its tax and contribution components.
type Deadline struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Tax   float64   `json:"tax"`
	Inps  float64   `json:"inps"`
	Total float64   `json:"total"`
}

// Input is the full argument snapshot for one engine invocation. Now is
// injected rather than read from an ambient clock so the computation stays
// pure.
type Input struct {
	Transactions []Transaction
	FixedDebts   []FixedDebt
	Contracts    []Contract
	Settings     UserSettings
	AtecoCodes   []AtecoCode
	ViewYear     int
	Now          time.Time
}

// Stats is the engine's sole output: a flat, fully-derived snapshot for one
// view year. It is recomputed from scratch on every call.
type Stats struct {
	TotalIncome    float64 `json:"totalIncome"`
	BusinessIncome float64 `json:"businessIncome"`
	ExtraIncome    float64 `json:"extraIncome"`

	RealExpenses      float64 `json:"realExpenses"`
	TaxesPaid         float64 `json:"taxesPaid"`
	InpsPaid          float64 `json:"inpsPaid"`
	ScheduledExpenses float64 `json:"scheduledExpenses"`

	GrossTaxableIncome float64 `json:"grossTaxableIncome"`
	TaxableIncome      float64 `json:"redditoImponibile"`
	FlatTax            float64 `json:"flatTax"`
	Inps               float64 `json:"inps"`
	TotalTaxEstimate   float64 `json:"totalTaxEstimate"`
	TaxRateApplied     float64 `json:"taxRateApplied"`

	OpeningBalance   float64 `json:"openingBalance"`
	RealNetIncome    float64 `json:"realNetIncome"`
	CurrentLiquidity float64 `json:"currentLiquidity"`

	EstimatedNetIncome     float64 `json:"estimatedNetIncome"`
	NetAvailableIncome     float64 `json:"netAvailableIncome"`
	RemainingTaxDue        float64 `json:"remainingTaxDue"`
	MonthlyNetIncome       float64 `json:"monthlyNetIncome"`
	TotalFixedDebtEstimate float64 `json:"totalFixedDebtEstimate"`

	CeilingUsagePercent  float64    `json:"percentualeSoglia"`
	Deadlines            []Deadline `json:"deadlines"`
	BreakEvenTurnover    float64    `json:"breakEvenTurnover"`
	TaxEfficiencyPer1000 float64    `json:"taxEfficiencyPer1000"`

	GoalPercentage float64 `json:"goalPercentage"`
	GapToGoal      float64 `json:"gapToGoal"`

	ForecastedBusinessIncome float64 `json:"forecastedBusinessIncome"`
	ForecastedNetIncome      float64 `json:"forecastedNetIncome"`
	ForecastedTaxTotal       float64 `json:"forecastedTaxTotal"`
	ForecastedLiquidity      float64 `json:"forecastedLiquidity"`

	TagExpenses map[string]float64 `json:"tagExpenses,omitempty"`
}
