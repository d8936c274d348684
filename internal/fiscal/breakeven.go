package fiscal

import (
	"github.com/forfettario/fisco-forecast/pkg/constants"
	"go.uber.org/zap"
)

// breakEvenParams carries everything the inverse solve needs. The regime has
// a piecewise cost structure, so the solve is modeled as an explicit choice
// between regime strategies rather than nested conditionals.
type breakEvenParams struct {
	TargetNetIncome float64
	Coefficient     float64
	TaxRate         float64
	Settings        UserSettings
}

// breakEvenTurnover solves for the gross annual business revenue R such
// that, after the substitute tax and INPS formulas are applied, the leftover
// cash exactly equals TargetNetIncome. A non-positive margin means the
// combination of coefficient and rates eats the whole revenue; the result
// stays at the 0 sentinel in that degenerate case.
func (e *Engine) breakEvenTurnover(p breakEvenParams) float64 {
	var turnover float64
	var ok bool

	switch p.Settings.InpsType {
	case RegimeArtigiani:
		turnover, ok = solveArtigiani(p)
	default:
		turnover, ok = solveSeparata(p)
	}

	if !ok {
		e.logger.Debug("break-even margin non-positive, leaving turnover at sentinel 0",
			zap.String("op", "fiscal.breakEvenTurnover"),
			zap.Float64("coefficient", p.Coefficient),
			zap.Float64("taxRate", p.TaxRate),
		)
		return 0
	}
	return turnover
}

// solveSeparata inverts the Gestione Separata chain:
//
//	net = R − R·c·inpsRate − (R·c − R·c·inpsRate)·taxRate
//
// which is linear in R, so R = target / margin.
func solveSeparata(p breakEvenParams) (float64, bool) {
	c := p.Coefficient
	margin := 1 - c*constants.SeparataRate - c*(1-constants.SeparataRate)*p.TaxRate
	if margin <= 0 {
		return 0, false
	}
	return p.TargetNetIncome / margin, true
}

// solveArtigiani inverts the Artigiani e Commercianti chain. The cost
// structure is piecewise (fixed minimum below the threshold, marginal rate
// above it), so each bracket is solved on its own and the low-bracket answer
// is only accepted when its own taxable base stays under the threshold.
func solveArtigiani(p breakEvenParams) (float64, bool) {
	threshold, fixedCost, exceedRate := p.Settings.ArtigianiParams()
	c := p.Coefficient

	// Low bracket: INPS is the fixed minimum only, deducted from the taxable
	// base before the flat tax.
	//
	//	net = R·(1 − c·t) − fixed·(1 − t)
	marginLow := 1 - c*p.TaxRate
	if marginLow > 0 {
		lowTurnover := (p.TargetNetIncome + fixedCost*(1-p.TaxRate)) / marginLow
		if lowTurnover*c <= threshold {
			return lowTurnover, true
		}
	}

	// High bracket: the marginal rate applies above the threshold.
	marginHigh := 1 - c*exceedRate - c*(1-exceedRate)*p.TaxRate
	if marginHigh <= 0 {
		return 0, false
	}
	return (p.TargetNetIncome + fixedCost) / marginHigh, true
}
