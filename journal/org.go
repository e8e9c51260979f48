package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRecordOrg renders a Record as an Org-mode block. Structured facts go
// in a PROPERTIES drawer; the Notes section is left for the reader.
func FormatRecordOrg(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s: %s (%s)\n", r.Kind, r.Asset, shortID(r.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", r.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", r.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":KIND: %s\n", r.Kind)
	fmt.Fprintf(&b, ":ASSET: %s\n", r.Asset)
	fmt.Fprintf(&b, ":PRICE: %s\n", r.Price.String())
	if r.Kind == Buy {
		fmt.Fprintf(&b, ":INVESTED: %s\n", r.Amount.StringFixed(2))
	} else {
		fmt.Fprintf(&b, ":REALIZED_PL: %s\n", r.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, ":QUANTITY: %s\n", r.Quantity.StringFixed(8))
	fmt.Fprintf(&b, ":CASH: %s\n", r.Cash.StringFixed(2))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")

	return b.String()
}

// FormatRecordsOrg renders multiple records separated by blank lines.
func FormatRecordsOrg(recs []Record) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
