package types

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// NormalizeAddress lowercases a wallet address into the canonical form
// used as a lookup key. Address comparison is always case-insensitive.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr != "" && !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}

// ChecksumAddress renders an address with EIP-55 mixed-case checksum
// capitalization for display.
func ChecksumAddress(addr string) string {
	a := strings.TrimPrefix(NormalizeAddress(addr), "0x")
	if a == "" {
		return ""
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(a))
	sum := h.Sum(nil)

	out := []byte(a)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// TruncateAddress shortens a checksummed address for display,
// e.g. "0xd8dA…6045".
func TruncateAddress(addr string) string {
	cs := ChecksumAddress(addr)
	if len(cs) < 10 {
		return cs
	}
	return cs[:6] + "…" + cs[len(cs)-4:]
}
