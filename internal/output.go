package internal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// OutputOptions controls how subscriptions are displayed
type OutputOptions struct {
	Currency Currency
}

// WriteSubscriptionsJSON writes the deduplicated list as a
// pretty-printed JSON array, the persistence format consumers read.
func WriteSubscriptionsJSON(w io.Writer, subs []Subscription) error {
	if subs == nil {
		subs = []Subscription{} // emit [] rather than null
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(subs)
}

// cycleMonthlyFactor converts a billing cycle into payments per month
// for spend estimates. Unknown cycles are treated as monthly, the
// most common case.
func cycleMonthlyFactor(cycle Cycle) float64 {
	switch cycle {
	case CycleYearly:
		return 1.0 / 12
	case CycleWeekly:
		return 52.0 / 12
	case CycleBiWeekly:
		return 26.0 / 12
	case CycleQuarterly:
		return 1.0 / 3
	case CycleBiMonthly:
		return 1.0 / 2
	case CycleBiYearly:
		return 1.0 / 24
	default:
		return 1
	}
}

// MonthlyEstimate returns the estimated monthly cost of a
// subscription, or 0 when no amount was extracted.
func MonthlyEstimate(sub Subscription) float64 {
	if sub.Amount == nil {
		return 0
	}
	return *sub.Amount * cycleMonthlyFactor(sub.Cycle)
}

// PrintSubscriptionsTable renders the deduplicated subscriptions as a
// table with estimated monthly/yearly totals in the footer.
func PrintSubscriptionsTable(w io.Writer, subs []Subscription, opts OutputOptions) {
	trialCount := 0
	var totalMonthly float64
	for _, sub := range subs {
		if sub.IsTrial != nil && *sub.IsTrial {
			trialCount++
		}
		totalMonthly += MonthlyEstimate(sub)
	}

	fmt.Fprintf(w, "Found %d subscriptions (%d on trial)\n\n", len(subs), trialCount)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Category", "Cycle", "Amount", "Start Date", "Trial"})

	for _, sub := range subs {
		amountStr := text.FgHiBlack.Sprint("-")
		if sub.Amount != nil {
			amountStr = opts.Currency.Format(*sub.Amount)
		}

		trialStr := ""
		if sub.IsTrial != nil && *sub.IsTrial {
			trialStr = text.FgYellow.Sprint("TRIAL")
			if sub.TrialDurationDays != nil && sub.TrialEndDate != nil {
				trialStr = text.FgYellow.Sprintf("%dd, ends %s", *sub.TrialDurationDays, *sub.TrialEndDate)
			}
		}

		t.AppendRow(table.Row{
			sub.Name,
			string(sub.Category),
			string(sub.Cycle),
			amountStr,
			sub.StartDate,
			trialStr,
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{
		"", "", "",
		text.Bold.Sprint("Est. monthly: " + opts.Currency.Format(totalMonthly)),
		text.Bold.Sprint("Yearly: " + opts.Currency.Format(totalMonthly*12)),
		"",
	})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	t.Render()
}
