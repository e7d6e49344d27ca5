package gl

import (
	"math/big"
	"strings"
)

// maxFractionDigits bounds the expansion of a non-terminating fraction whose
// period has not shown up yet; the rest is elided as "...".
const maxFractionDigits = 32

var bigTen = big.NewInt(10)

// formatRat renders r as an exact decimal. A repeating tail is wrapped in
// parentheses: 1/3 -> 0.(3), 1/6 -> 0.1(6). Integral values keep a ".0".
func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String() + ".0"
	}
	var b strings.Builder
	if r.Sign() < 0 {
		b.WriteByte('-')
	}
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()

	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	b.WriteString(q.String())
	b.WriteByte('.')

	seen := map[string]int{}
	var digits []byte
	for rem.Sign() != 0 {
		key := rem.String()
		if at, ok := seen[key]; ok {
			b.Write(digits[:at])
			b.WriteByte('(')
			b.Write(digits[at:])
			b.WriteByte(')')
			return b.String()
		}
		if len(digits) == maxFractionDigits {
			b.Write(digits)
			b.WriteString("...")
			return b.String()
		}
		seen[key] = len(digits)
		shifted := new(big.Int).Mul(rem, bigTen)
		d, next := new(big.Int).QuoRem(shifted, den, new(big.Int))
		digits = append(digits, byte('0'+d.Int64()))
		rem = next
	}
	b.Write(digits)
	return b.String()
}

func ratFromInt(n *big.Int) *big.Rat { return new(big.Rat).SetInt(n) }

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}
