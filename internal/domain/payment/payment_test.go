package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-settlement/internal/models"
)

func TestIsFraudIndicative(t *testing.T) {
	cases := map[string]bool{
		"Voucher FALSO":            true,
		"cliente canceló":          false,
		"":                         false,
		"   ":                      false,
		"comprobante editado":      true,
		"Número NO VÁLIDO":         true,
		"la operación no existe":   true,
		"imagen Manipulada":        false,
		"imagen manipulado":        true,
		"this is a FAKE receipt":   true,
		"monto incorrecto":         false,
		"comprovante falsificado":  true,
	}

	for text, want := range cases {
		if got := IsFraudIndicative(text); got != want {
			t.Errorf("IsFraudIndicative(%q): expected %v, got %v", text, want, got)
		}
	}
}

func TestFraudKeywordsCaseInsensitive(t *testing.T) {
	for _, kw := range fraudKeywords {
		for _, variant := range []string{kw, strings.ToUpper(kw), strings.ToUpper(kw[:1]) + kw[1:]} {
			if !IsFraudIndicative("motivo: " + variant) {
				t.Errorf("expected %q to be fraud-indicative", variant)
			}
		}
	}
}

func TestApplyRejectionScenario(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	flags := models.SecurityFlags{FalseVouchersCount: 2, RejectedPaymentsCount: 4}

	newly := ApplyRejection(&flags, IsFraudIndicative("comprobante editado"), 3, now)

	if !newly {
		t.Error("expected client to become blacklisted by this rejection")
	}
	if flags.FalseVouchersCount != 3 {
		t.Errorf("expected 3 false vouchers, got %d", flags.FalseVouchersCount)
	}
	if flags.RejectedPaymentsCount != 5 {
		t.Errorf("expected 5 rejected payments, got %d", flags.RejectedPaymentsCount)
	}
	if !flags.Blacklisted {
		t.Error("expected blacklisted")
	}
	if flags.LastRejectionDate == nil || !flags.LastRejectionDate.Equal(now) {
		t.Errorf("expected last rejection %v, got %v", now, flags.LastRejectionDate)
	}
}

func TestApplyRejectionNonFraud(t *testing.T) {
	flags := models.SecurityFlags{}
	newly := ApplyRejection(&flags, false, 3, time.Now())

	if newly || flags.Blacklisted {
		t.Error("non-fraud rejection must not blacklist")
	}
	if flags.FalseVouchersCount != 0 || flags.RejectedPaymentsCount != 1 {
		t.Errorf("expected 0/1, got %d/%d", flags.FalseVouchersCount, flags.RejectedPaymentsCount)
	}
}

func TestBlacklistMonotonic(t *testing.T) {
	flags := models.SecurityFlags{FalseVouchersCount: 5, Blacklisted: true}

	for i := 0; i < 3; i++ {
		if ApplyRejection(&flags, i%2 == 0, 3, time.Now()) {
			t.Error("already blacklisted client cannot become newly blacklisted")
		}
		if !flags.Blacklisted {
			t.Fatal("rejection path cleared the blacklist")
		}
	}

	Clear(&flags)
	if flags.Blacklisted || flags.FalseVouchersCount != 0 || flags.RejectedPaymentsCount != 0 {
		t.Errorf("expected cleared flags, got %+v", flags)
	}
}

func TestApplyRejectionWithoutThreshold(t *testing.T) {
	flags := models.SecurityFlags{FalseVouchersCount: 10}
	if ApplyRejection(&flags, true, 0, time.Now()) || flags.Blacklisted {
		t.Error("a zero threshold disables automatic blacklisting")
	}
}
