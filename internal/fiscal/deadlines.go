package fiscal

import (
	"github.com/forfettario/fisco-forecast/pkg/constants"
	"github.com/forfettario/fisco-forecast/pkg/datetime"
	"github.com/forfettario/fisco-forecast/pkg/mathutil"
)

// paymentDeadlines builds the ordered fiscal due-date calendar for the view
// year. Gestione Separata settles in two dates (40% by end of June, 60% by
// end of November); Artigiani e Commercianti follows Italy's split calendar
// with a third, fixed-minimum-only installment in August. The carried-over
// manual balance is always added to the first date's tax component.
func (e *Engine) paymentDeadlines(viewYear int, settings UserSettings, flatTax, inps float64) []Deadline {
	first := constants.FirstInstallmentShare
	second := constants.SecondInstallmentShare

	if settings.InpsType == RegimeArtigiani {
		_, fixedCost, _ := settings.ArtigianiParams()
		variableInps := mathutil.NonNegative(inps - fixedCost)

		june := Deadline{
			Date:  datetime.MidJune(viewYear),
			Label: "Saldo + 1º acconto",
			Tax:   flatTax*first + settings.ManualSaldo,
			Inps:  variableInps * first,
		}
		august := Deadline{
			Date:  datetime.EndOfAugust(viewYear),
			Label: "Rata fissa INPS",
			Inps:  fixedCost / constants.ArtigianiQuarterlyInstallments,
		}
		november := Deadline{
			Date:  datetime.EndOfNovember(viewYear),
			Label: "2º acconto",
			Tax:   flatTax * second,
			Inps:  variableInps * second,
		}
		return totaled(june, august, november)
	}

	june := Deadline{
		Date:  datetime.EndOfJune(viewYear),
		Label: "Saldo + 1º acconto",
		Tax:   flatTax*first + settings.ManualSaldo,
		Inps:  inps * first,
	}
	november := Deadline{
		Date:  datetime.EndOfNovember(viewYear),
		Label: "2º acconto",
		Tax:   flatTax * second,
		Inps:  inps * second,
	}
	return totaled(june, november)
}

func totaled(deadlines ...Deadline) []Deadline {
	for i := range deadlines {
		deadlines[i].Total = deadlines[i].Tax + deadlines[i].Inps
	}
	return deadlines
}
