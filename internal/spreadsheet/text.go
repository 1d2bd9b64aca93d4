package spreadsheet

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold returns s in NFC form with Unicode case folding applied, so that
// "FORMACIÓN" and a decomposed "formación" compare equal. Casers carry
// state, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func containsAnyFold(s string, substrs ...string) bool {
	folded := fold(s)
	for _, sub := range substrs {
		if strings.Contains(folded, fold(sub)) {
			return true
		}
	}
	return false
}
