package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"shipment-cost/core/types"
)

const boxWidth = 73

// CLIFormatter renders a boxed summary for terminals
type CLIFormatter struct {
	// ShowDetails lists every in-period shipment under the summary
	ShowDetails bool
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, rep *types.MonthlyReport) error {
	p := &boxPrinter{w: w}
	p.rule("┌", "┐")
	p.centered(fmt.Sprintf("LOGISTICS COST REPORT %s", rep.Period))
	p.rule("├", "┤")

	for _, pb := range rep.Providers {
		p.row(fmt.Sprintf("%s (%d shipments, %s boxes)", pb.Provider, pb.Shipments, pb.Units.String()),
			fmt.Sprintf("%s %s", grouped(pb.Cost), rep.Currency))
	}
	if len(rep.Providers) == 0 {
		p.row("no costed shipments", "")
	}

	p.rule("├", "┤")
	p.row("TOTAL SALES", fmt.Sprintf("%s %s", grouped(rep.Totals.Sales), rep.Currency))
	p.row("TOTAL GOODS COST", fmt.Sprintf("%s %s", grouped(rep.Totals.GoodsCost), rep.Currency))
	p.row("TOTAL LOGISTICS", fmt.Sprintf("%s %s", grouped(rep.Totals.Logistics), rep.Currency))
	p.row("Shipments in period", fmt.Sprintf("%d", rep.Stats.InPeriod))

	if len(rep.Unresolved) > 0 {
		p.rule("├", "┤")
		p.row(fmt.Sprintf("UNRESOLVED (%d)", len(rep.Unresolved)), "")
		for _, u := range rep.Unresolved {
			p.row(fmt.Sprintf("  └─ row %d %s", u.Row, u.ProductText), reasons(u.Reasons))
		}
	}

	if f.ShowDetails && len(rep.Results) > 0 {
		p.rule("├", "┤")
		for _, r := range rep.Results {
			p.row(fmt.Sprintf("row %d %s x%s", r.Row, r.ProductName, r.Quantity.String()),
				fmt.Sprintf("%s/%s", money(r.GoodsCost), money(r.LogisticsCost)))
		}
	}

	p.rule("└", "┘")
	return p.err
}

type boxPrinter struct {
	w   io.Writer
	err error
}

func (p *boxPrinter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *boxPrinter) rule(left, right string) {
	p.printf("%s%s%s\n", left, strings.Repeat("─", boxWidth), right)
}

func (p *boxPrinter) centered(title string) {
	n := utf8.RuneCountInString(title)
	if n > boxWidth {
		title = truncate(title, boxWidth)
		n = boxWidth
	}
	left := (boxWidth - n) / 2
	p.printf("│%s%s%s│\n", strings.Repeat(" ", left), title, strings.Repeat(" ", boxWidth-n-left))
}

func (p *boxPrinter) row(label, value string) {
	p.printf("│ %s %s │\n", pad(truncate(label, 50), 50), padLeft(value, 20))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}
