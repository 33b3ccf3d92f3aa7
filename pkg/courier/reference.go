package courier

import (
	"crypto/rand"
	"fmt"
)

// referenceAlphabet is the identifier character set: uppercase letters plus
// digits, no checksum.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewJobReference generates the correlation id shared with every provider for
// one delivery request. 16 characters over a 36-symbol alphabet gives ~82
// bits of entropy, enough that birthday collisions across open jobs are
// negligible.
func NewJobReference() string {
	return randomCode(16)
}

// NewAssignmentCode generates the short assignment code some providers attach
// to a job. Always starts with 'A'.
func NewAssignmentCode() string {
	return "A" + randomCode(7)
}

// FormatOrderNumber renders a job sequence number as the 4-digit zero-padded
// order number printed on labels and receipts. Wraps after 9999.
func FormatOrderNumber(n int) string {
	return fmt.Sprintf("%04d", n%10000)
}

func randomCode(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; identifiers generated without it would be guessable.
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(out)
}
