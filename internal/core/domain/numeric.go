package domain

import (
	"math/big"
	"strconv"
)

// ParseLedgerUint parses a decimal string crossing the ledger boundary.
// The ledger exchanges unbounded-precision integers; values are parsed through
// math/big and converted to uint64 only when they fit, never truncated.
func ParseLedgerUint(s string) (uint64, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return 0, ErrInvalidNumeric
	}
	if !n.IsUint64() {
		return 0, ErrNumericOverflow
	}
	return n.Uint64(), nil
}

// FormatLedgerUint renders v as the decimal string the ledger wire format
// expects.
func FormatLedgerUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
