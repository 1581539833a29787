package seats

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	claimCodePattern   = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)
	bookingCodePattern = regexp.MustCompile(`^BK-[A-HJ-NP-Z2-9]{8}$`)
)

func TestGenerateClaimCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateClaimCode()
		assert.Regexp(t, claimCodePattern, code)
	}
}

func TestGenerateBookingCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateBookingCode()
		assert.Regexp(t, bookingCodePattern, code)
	}
}

func TestGeneratedCodes_NoImmediateCollision(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := GenerateClaimCode()
		assert.False(t, seen[code], "duplicate claim code %s", code)
		seen[code] = true
	}
}
