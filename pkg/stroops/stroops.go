// Package stroops converts between decimal XLM amounts and the stroop
// integer domain the circuit operates on. All conversions floor: a converted
// balance never overstates the real holding.
package stroops

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// PerLumen is the number of stroops in one XLM.
const PerLumen = 10_000_000

var perLumenInt = big.NewInt(PerLumen)

func parse(amount string) (*big.Rat, error) {
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(amount, "/eE") {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return r, nil
}

// ToStroops converts a decimal XLM amount to stroops, flooring any fraction
// below one stroop. Negative amounts are rejected.
func ToStroops(amount string) (uint64, error) {
	r, err := parse(amount)
	if err != nil {
		return 0, err
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("negative amount %q", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(perLumenInt))
	// Quo truncates; for non-negative values that is the floor.
	n := new(big.Int).Quo(r.Num(), r.Denom())
	if !n.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows the stroop domain", amount)
	}
	return n.Uint64(), nil
}

// FromStroops renders a stroop count as a decimal XLM string with no
// trailing fractional zeros.
func FromStroops(n uint64) string {
	whole := n / PerLumen
	frac := n % PerLumen
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := strings.TrimRight(fmt.Sprintf("%07d", frac), "0")
	return fmt.Sprintf("%d.%s", whole, s)
}

// Cmp compares two decimal XLM amounts exactly, without converting either
// to the integer domain first.
func Cmp(a, b string) (int, error) {
	ra, err := parse(a)
	if err != nil {
		return 0, err
	}
	rb, err := parse(b)
	if err != nil {
		return 0, err
	}
	return ra.Cmp(rb), nil
}

// MaxWholeLumens is the largest whole-XLM amount representable in stroops
// without leaving uint64.
const MaxWholeLumens = math.MaxUint64 / PerLumen
