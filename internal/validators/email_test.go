package validators

import (
	"errors"
	"net"
	"testing"
)

func stubResolvers(t *testing.T, mx []*net.MX, ips []net.IP) {
	t.Helper()
	origMX, origIP := lookupMX, lookupIP
	t.Cleanup(func() { lookupMX, lookupIP = origMX, origIP })

	lookupMX = func(string) ([]*net.MX, error) {
		if mx == nil {
			return nil, errors.New("no mx")
		}
		return mx, nil
	}
	lookupIP = func(string) ([]net.IP, error) {
		if ips == nil {
			return nil, errors.New("no host")
		}
		return ips, nil
	}
}

func TestIsEmailDomainValid(t *testing.T) {
	stubResolvers(t, []*net.MX{{Host: "mx.barbearia.com.br."}}, nil)

	if !IsEmailDomainValid("ana@barbearia.com.br") {
		t.Error("expected domain with MX to be valid")
	}
	if IsEmailDomainValid("ana@") || IsEmailDomainValid("sem-arroba") {
		t.Error("expected malformed addresses to be rejected")
	}
}

func TestIsEmailDomainValidFallsBackToIP(t *testing.T) {
	stubResolvers(t, nil, []net.IP{net.ParseIP("10.0.0.1")})

	if !IsEmailDomainValid("ana@intranet.local") {
		t.Error("expected domain with A record to be valid")
	}
}

func TestIsEmailDomainValidUnresolvable(t *testing.T) {
	stubResolvers(t, nil, nil)

	if IsEmailDomainValid("ana@nao-existe.invalid") {
		t.Error("expected unresolvable domain to be rejected")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Barbearia.COM "); got != "ana@barbearia.com" {
		t.Errorf("expected ana@barbearia.com, got %s", got)
	}
}
