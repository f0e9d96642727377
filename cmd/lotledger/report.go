package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Spanish)

// money formatea centavos como monto con separadores locales (1.234,56).
func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + printer.Sprintf("%d", cents/100) + fmt.Sprintf(",%02d", cents%100)
}

func writeValuation(w io.Writer, report dto.ValuationReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	printer.Fprintf(tw, "variante\tcantidad\tcosto prom.\tvalor\t\n")
	for _, v := range report.Variants {
		printer.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", v.VariantID, v.Quantity, money(v.AvgCost), money(v.Value))
	}
	printer.Fprintf(tw, "TOTAL\t%d\t\t%s\t\n", report.TotalQuantity, money(report.TotalValue))
	return tw.Flush()
}
