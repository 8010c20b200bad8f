package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwalitptl/walkin-api/internal/model"
)

var (
	pcsPattern   = regexp.MustCompile(`(?i)\((\d+)\s*pcs\)`)
	digitPattern = regexp.MustCompile(`\d+`)
)

// ParseMedication extracts a medication name and per-incident quantity from a
// stored medication slot. ok is false for blank, "none" and placeholder text.
//
// The quantity comes from a "(N pcs)" suffix, then from the fallback (first
// integer of a string, or a number as is), and defaults to 1.
func ParseMedication(text string, fallback any) (model.Medication, bool) {
	name := strings.TrimSpace(text)
	lower := strings.ToLower(name)
	if name == "" || lower == "none" || strings.Contains(lower, "select medication") {
		return model.Medication{}, false
	}

	qty := 0
	if m := pcsPattern.FindStringSubmatch(name); m != nil {
		qty, _ = strconv.Atoi(m[1])
	}
	if qty == 0 {
		qty = fallbackQty(fallback)
	}
	if qty == 0 {
		qty = 1
	}

	if loc := pcsPattern.FindStringIndex(name); loc != nil {
		name = strings.TrimSpace(name[:loc[0]] + name[loc[1]:])
	}
	return model.Medication{Name: name, Qty: qty}, true
}

func fallbackQty(v any) int {
	switch q := v.(type) {
	case string:
		if m := digitPattern.FindString(q); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case int:
		return q
	case int64:
		return int(q)
	case float64:
		return int(q)
	}
	return 0
}
