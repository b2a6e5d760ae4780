// Package payment holds the pure rules of manual payment verification: the
// fraud heuristic applied to rejection reasons and the client security
// policy.
package payment

import "strings"

// fraudKeywords are matched case-insensitively anywhere in a rejection reason.
var fraudKeywords = []string{
	"falso",
	"fake",
	"editado",
	"no válido",
	"no existe",
	"manipulado",
	"falsificado",
	"adulterado",
	"fraude",
}

// IsFraudIndicative reports whether a rejection reason points to a forged
// voucher.
func IsFraudIndicative(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range fraudKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
