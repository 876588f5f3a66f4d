package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const invoicePrefix = "INV"

// invoiceDayPrefix renders the per-day invoice prefix, e.g. "INV-20250901".
func invoiceDayPrefix(t time.Time) string {
	return fmt.Sprintf("%s-%s", invoicePrefix, t.Format("20060102"))
}

// formatInvoiceNo renders a full invoice number, e.g. "INV-20250901-001".
// Sequences past 999 widen rather than wrap.
func formatInvoiceNo(dayPrefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", dayPrefix, seq)
}

// nextInvoiceSeq derives the next sequence from the highest invoice number
// already issued for the day. An empty last value starts the day at 1. A
// malformed trailing segment also restarts at 1 so a bad row cannot wedge
// invoicing; the unique constraint still rejects real collisions.
func nextInvoiceSeq(last string) int {
	if last == "" {
		return 1
	}
	idx := strings.LastIndex(last, "-")
	if idx < 0 || idx == len(last)-1 {
		return 1
	}
	seq, err := strconv.Atoi(last[idx+1:])
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}
