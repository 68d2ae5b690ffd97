package protocol

import (
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^E_[A-Z_]+$`)

func TestKnownCodesMatchSchemaPattern(t *testing.T) {
	if len(knownCodes) != 12 {
		t.Fatalf("known codes=%d", len(knownCodes))
	}
	for c := range knownCodes {
		if !codePattern.MatchString(c) {
			t.Fatalf("code %q does not match %s", c, codePattern)
		}
	}
}

func TestIsKnownCode(t *testing.T) {
	for _, c := range []string{"", ErrUnknownIncident, ErrRestricted, ErrPersistence} {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	for _, c := range []string{"E_WORLD_BUSY", "e_restricted", "RESTRICTED"} {
		if IsKnownCode(c) {
			t.Fatalf("expected %q rejected", c)
		}
	}
}
