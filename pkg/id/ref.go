package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// NewRef returns a ledger reference like "PAY-4F9A2B3C1D". The prefix is
// uppercased; the suffix is 10 hex characters from crypto/rand. References
// identify a ledger line on receipts and bank exports, so they stay short
// and typeable.
func NewRef(prefix string) string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return strings.ToUpper(prefix) + "-" + strings.ToUpper(hex.EncodeToString(b))
}
