// Package output provides utilities for formatting and displaying computed
// fiscal statistics.
package output

import (
	"fmt"
	"strings"

	"github.com/forfettario/fisco-forecast/internal/fiscal"
	"github.com/forfettario/fisco-forecast/pkg/constants"
	"github.com/forfettario/fisco-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type row struct {
	label string
	value float64
}

func summaryRows(stats fiscal.Stats) []row {
	return []row{
		{"Ricavi totali", stats.TotalIncome},
		{"Ricavi business", stats.BusinessIncome},
		{"Ricavi extra", stats.ExtraIncome},
		{"Uscite reali", stats.RealExpenses},
		{"Imposte e contributi versati", stats.TaxesPaid},
		{"Contributi INPS versati", stats.InpsPaid},
		{"Uscite pianificate", stats.ScheduledExpenses},
		{"Reddito imponibile", stats.TaxableIncome},
		{"Imposta sostitutiva", stats.FlatTax},
		{"Contributi INPS stimati", stats.Inps},
		{"Carico fiscale stimato", stats.TotalTaxEstimate},
		{"Saldo residuo da versare", stats.RemainingTaxDue},
		{"Liquidita' attuale", stats.CurrentLiquidity},
		{"Netto stimato", stats.EstimatedNetIncome},
		{"Netto disponibile", stats.NetAvailableIncome},
		{"Netto mensile", stats.MonthlyNetIncome},
		{"Rate annue stimate", stats.TotalFixedDebtEstimate},
		{"Fatturato di pareggio", stats.BreakEvenTurnover},
		{"Resa netta prossimi 1000", stats.TaxEfficiencyPer1000},
		{"Obiettivo raggiunto %", stats.GoalPercentage},
		{"Distanza dall'obiettivo", stats.GapToGoal},
		{"Quota soglia 85k %", stats.CeilingUsagePercent},
		{"Ricavi previsti (pipeline)", stats.ForecastedBusinessIncome},
		{"Carico fiscale previsto", stats.ForecastedTaxTotal},
		{"Netto previsto", stats.ForecastedNetIncome},
		{"Liquidita' prevista", stats.ForecastedLiquidity},
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(viewYear int, stats fiscal.Stats) {
	p := message.NewPrinter(language.Italian)
	fmt.Printf("--- Riepilogo fiscale %d ---\n", viewYear)
	for _, r := range summaryRows(stats) {
		_, _ = p.Printf("%-30s | %12.2f\n", r.label, r.value)
	}

	if len(stats.Deadlines) > 0 {
		fmt.Printf("\nScadenze:\n")
		fmt.Printf("Data       | Causale            | Imposta      | INPS         | Totale\n")
		for _, d := range stats.Deadlines {
			fmt.Printf("%s | %-18s | %12s | %12s | %12s\n",
				d.Date.Format(constants.DateTimeLayout), d.Label,
				format.Euro(d.Tax), format.Euro(d.Inps), format.Euro(d.Total))
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(viewYear int, stats fiscal.Stats) {
	fmt.Print(CsvString(viewYear, stats))
}

// CsvString renders the CSV output as a string, e.g. for an HTTP response.
func CsvString(viewYear int, stats fiscal.Stats) string {
	var builder strings.Builder
	builder.WriteString(`"field","value"` + "\n")
	fmt.Fprintf(&builder, `"viewYear","%d"`+"\n", viewYear)
	for _, r := range summaryRows(stats) {
		fmt.Fprintf(&builder, `"%s","%.2f"`+"\n", r.label, r.value)
	}
	for _, d := range stats.Deadlines {
		fmt.Fprintf(&builder, `"scadenza %s %s","%.2f"`+"\n",
			d.Date.Format(constants.DateTimeLayout), d.Label, d.Total)
	}
	return builder.String()
}
