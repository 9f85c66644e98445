// Package bigint implements exact arbitrary-precision signed integers.
//
// Magnitudes are stored as base 10^9 limbs, least significant limb first.
// Every operation returns a new Int and leaves its operands untouched, so an
// Int can be shared freely between values.
package bigint

import (
	"strconv"
	"strings"

	"quill/internal/diag"
)

const (
	base       = 1_000_000_000
	limbDigits = 9
)

// Int is an immutable integer. The zero value is the integer 0.
type Int struct {
	sign int8     // -1, 0 or +1
	mag  []uint32 // canonical: no high zero limbs; zero is [0]
}

var zeroMag = []uint32{0}

func Zero() Int { return Int{mag: zeroMag} }

func FromInt64(n int64) Int {
	if n == 0 {
		return Zero()
	}
	sign := int8(1)
	u := uint64(n)
	if n < 0 {
		sign = -1
		u = uint64(-(n + 1)) + 1
	}
	var mag []uint32
	for u > 0 {
		mag = append(mag, uint32(u%base))
		u /= base
	}
	return Int{sign: sign, mag: mag}
}

// Parse reads an optional leading '-' followed by one or more decimal digits.
// There is no limit on the number of digits.
func Parse(lit string) (Int, error) {
	digits := lit
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	if digits == "" {
		return Int{}, diag.NewError(diag.MalformedLiteral, lit)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Int{}, diag.NewError(diag.MalformedLiteral, lit)
		}
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return Zero(), nil
	}

	mag := make([]uint32, 0, (len(digits)+limbDigits-1)/limbDigits)
	for end := len(digits); end > 0; end -= limbDigits {
		start := max(end-limbDigits, 0)
		var limb uint32
		for _, c := range []byte(digits[start:end]) {
			limb = limb*10 + uint32(c-'0')
		}
		mag = append(mag, limb)
	}

	sign := int8(1)
	if neg {
		sign = -1
	}
	return Int{sign: sign, mag: mag}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(lit string) Int {
	v, err := Parse(lit)
	if err != nil {
		panic(err)
	}
	return v
}

func (a Int) limbs() []uint32 {
	if len(a.mag) == 0 {
		return zeroMag
	}
	return a.mag
}

func (a Int) IsZero() bool { return a.sign == 0 }

func (a Int) Neg() Int {
	if a.sign == 0 {
		return Zero()
	}
	return Int{sign: -a.sign, mag: a.mag}
}

func (a Int) Add(b Int) Int {
	switch {
	case a.sign == 0:
		return normalize(b.sign, b.limbs())
	case b.sign == 0:
		return normalize(a.sign, a.limbs())
	case a.sign == b.sign:
		return Int{sign: a.sign, mag: addMag(a.limbs(), b.limbs())}
	}

	switch cmpMag(a.limbs(), b.limbs()) {
	case 0:
		return Zero()
	case 1:
		return Int{sign: a.sign, mag: subMag(a.limbs(), b.limbs())}
	default:
		return Int{sign: b.sign, mag: subMag(b.limbs(), a.limbs())}
	}
}

func (a Int) Sub(b Int) Int { return a.Add(b.Neg()) }

func (a Int) Mul(b Int) Int {
	if a.sign == 0 || b.sign == 0 {
		return Zero()
	}
	return Int{sign: a.sign * b.sign, mag: mulMag(a.limbs(), b.limbs())}
}

// QuoRem returns the quotient truncated toward zero and the remainder, which
// carries the sign of a. Dividing by zero fails with diag.DivisionByZero.
func (a Int) QuoRem(b Int) (Int, Int, error) {
	if b.sign == 0 {
		return Int{}, Int{}, diag.NewError(diag.DivisionByZero, "/")
	}
	if a.sign == 0 {
		return Zero(), Zero(), nil
	}
	q, r := divMag(a.limbs(), b.limbs())
	return normalize(a.sign*b.sign, q), normalize(a.sign, r), nil
}

func (a Int) Quo(b Int) (Int, error) {
	q, _, err := a.QuoRem(b)
	return q, err
}

func (a Int) Rem(b Int) (Int, error) {
	_, r, err := a.QuoRem(b)
	return r, err
}

// Cmp returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (a Int) Cmp(b Int) int {
	if a.sign != b.sign {
		if a.sign < b.sign {
			return -1
		}
		return 1
	}
	c := cmpMag(a.limbs(), b.limbs())
	if a.sign < 0 {
		return -c
	}
	return c
}

// CmpMagnitude compares |a| and |b|: limb count first, then limbs from the
// most significant down.
func CmpMagnitude(a, b Int) int { return cmpMag(a.limbs(), b.limbs()) }

func (a Int) Equal(b Int) bool { return a.Cmp(b) == 0 }

func (a Int) String() string {
	mag := a.limbs()
	var sb strings.Builder
	sb.Grow(len(mag)*limbDigits + 1)
	if a.sign < 0 {
		sb.WriteByte('-')
	}
	top := len(mag) - 1
	sb.WriteString(strconv.FormatUint(uint64(mag[top]), 10))
	for i := top - 1; i >= 0; i-- {
		s := strconv.FormatUint(uint64(mag[i]), 10)
		for pad := len(s); pad < limbDigits; pad++ {
			sb.WriteByte('0')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Digits reports the number of decimal digits in |a|.
func (a Int) Digits() int {
	mag := a.limbs()
	top := len(mag) - 1
	return top*limbDigits + len(strconv.FormatUint(uint64(mag[top]), 10))
}

func normalize(sign int8, mag []uint32) Int {
	mag = trim(mag)
	if len(mag) == 1 && mag[0] == 0 {
		return Zero()
	}
	return Int{sign: sign, mag: mag}
}
