package seats

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet leaves out 0/O/1/I so codes survive being read aloud over
// the phone or typed from a WhatsApp message.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken
		panic(fmt.Sprintf("random source unavailable: %v", err))
	}
	var b strings.Builder
	b.Grow(length)
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String()
}

// GenerateClaimCode returns a XXXX-XXXX code shared by a hold cohort
func GenerateClaimCode() string {
	return randomCode(4) + "-" + randomCode(4)
}

// GenerateBookingCode returns a BK-XXXXXXXX code stamped on booked seats
func GenerateBookingCode() string {
	return "BK-" + randomCode(8)
}
