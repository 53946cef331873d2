package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the legacy keccak-256 hash of the concatenated inputs
func Keccak256(data ...[]byte) ethcommon.Hash {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}
	var h ethcommon.Hash
	hash.Sum(h[:0])
	return h
}

// WordToAddress keeps the low 20 bytes of a stack word, the way CALL targets
// and CREATE results are interpreted.
func WordToAddress(w *uint256.Int) ethcommon.Address {
	return ethcommon.Address(w.Bytes20())
}

// ParseWord accepts "0x"-prefixed hex (leading zeros and odd length allowed)
// or a plain decimal string.
func ParseWord(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty word")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if len(digits) == 0 {
			return new(uint256.Int), nil
		}
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		raw, err := hex.DecodeString(digits)
		if err != nil {
			return nil, fmt.Errorf("bad hex word %q: %w", s, err)
		}
		// strip leading zero bytes before the length check
		for len(raw) > 32 && raw[0] == 0 {
			raw = raw[1:]
		}
		if len(raw) > 32 {
			return nil, fmt.Errorf("hex word %q exceeds 256 bits", s)
		}
		return new(uint256.Int).SetBytes(raw), nil
	}
	w, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("bad decimal word %q: %w", s, err)
	}
	return w, nil
}
