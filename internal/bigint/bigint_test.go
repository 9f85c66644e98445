package bigint

import (
	"errors"
	"math"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/diag"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"000", "0"},
		{"7", "7"},
		{"-7", "-7"},
		{"000123", "123"},
		{"999999999", "999999999"},
		{"1000000000", "1000000000"},
		{"1000000001", "1000000001"},
		{"-100000000000000000000", "-100000000000000000000"},
		{
			"10879879879879879879879879898798701087987987987987987987987989879870",
			"10879879879879879879879879898798701087987987987987987987987989879870",
		},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got.String(), tt.input)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "-", "+1", "1_000", "12ab", " 1", "1 ", "--1", "1-", "0x10", "1.5"} {
		_, err := Parse(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, diag.MalformedLiteral), "input %q: %v", input, err)

		var de *diag.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, input, de.Subject)
	}
}

func TestZeroIsCanonical(t *testing.T) {
	var zv Int
	forms := []Int{
		zv,
		Zero(),
		MustParse("-0"),
		MustParse("0000"),
		FromInt64(0),
		MustParse("5").Sub(MustParse("5")),
		MustParse("-5").Add(MustParse("5")),
		MustParse("123456789012345678901234567890").Mul(Zero()),
	}
	for i, z := range forms {
		assert.True(t, z.IsZero(), "form %d", i)
		assert.Equal(t, "0", z.String(), "form %d", i)
		assert.Equal(t, []uint32{0}, z.limbs(), "form %d", i)
		assert.True(t, z.Equal(Zero()), "form %d", i)
	}
}

func TestAddCarriesPastFixedWidth(t *testing.T) {
	got := MustParse("999999999999999999").Add(MustParse("1"))
	assert.Equal(t, "1000000000000000000", got.String())

	got = MustParse("9223372036854775807").Add(MustParse("1"))
	assert.Equal(t, "9223372036854775808", got.String())

	got = MustParse("-9223372036854775808").Sub(MustParse("1"))
	assert.Equal(t, "-9223372036854775809", got.String())
}

func TestAddConformanceOperands(t *testing.T) {
	a := MustParse("10879879879879879879879879898798701087987987987987987987987989879870")
	b := MustParse("587987987989879879879879879879898798798794587987987989879879879879879879898798798794")

	want := new(big.Int)
	want.SetString(a.String(), 10)
	other, _ := new(big.Int).SetString(b.String(), 10)
	want.Add(want, other)

	assert.Equal(t, want.String(), a.Add(b).String())
	assert.Equal(t, want.String(), b.Add(a).String())
}

func TestAddSigns(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"5", "-3", "2"},
		{"-5", "3", "-2"},
		{"3", "-5", "-2"},
		{"-3", "-5", "-8"},
		{"1000000000", "-1", "999999999"},
		{"-1000000000000000000", "1", "-999999999999999999"},
		{"0", "-42", "-42"},
		{"-42", "0", "-42"},
	}
	for _, tt := range tests {
		got := MustParse(tt.a).Add(MustParse(tt.b))
		assert.Equal(t, tt.want, got.String(), "%s + %s", tt.a, tt.b)
	}
}

func TestOperandsAreNotMutated(t *testing.T) {
	a := MustParse("123456789123456789123456789")
	b := MustParse("-987654321987654321")
	aBefore, bBefore := a.String(), b.String()

	_ = a.Add(b)
	_ = a.Sub(b)
	_ = a.Mul(b)
	_, _, _ = a.QuoRem(b)
	_ = a.Neg()

	assert.Equal(t, aBefore, a.String())
	assert.Equal(t, bBefore, b.String())
}

func TestCmpMagnitude(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"-1", "1", 0},
		{"999999999", "1000000000", -1},
		{"1000000000", "999999999", 1},
		{"-123456789123", "123456789122", 1},
		{"0", "-1", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CmpMagnitude(MustParse(tt.a), MustParse(tt.b)), "%s vs %s", tt.a, tt.b)
	}
}

func TestCmp(t *testing.T) {
	assert.Equal(t, -1, MustParse("-5").Cmp(MustParse("3")))
	assert.Equal(t, 1, MustParse("-3").Cmp(MustParse("-5")))
	assert.Equal(t, -1, MustParse("-5000000000").Cmp(MustParse("-3")))
	assert.Equal(t, 0, MustParse("0").Cmp(Zero()))
	assert.Equal(t, 1, MustParse("1").Cmp(Zero()))
}

func TestFromInt64(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 999999999, 1000000000, math.MaxInt64, math.MinInt64} {
		assert.Equal(t, big.NewInt(n).String(), FromInt64(n).String())
	}
}

func TestDivisionByZero(t *testing.T) {
	_, _, err := MustParse("10").QuoRem(Zero())
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.DivisionByZero))

	_, err = Zero().Rem(Zero())
	assert.True(t, errors.Is(err, diag.DivisionByZero))
}

func TestQuoRemTruncates(t *testing.T) {
	tests := []struct {
		a, b, q, r string
	}{
		{"7", "2", "3", "1"},
		{"-7", "2", "-3", "-1"},
		{"7", "-2", "-3", "1"},
		{"-7", "-2", "3", "-1"},
		{"1", "1000000000000", "0", "1"},
		{"1000000000000000000000", "1000000000", "1000000000000", "0"},
	}
	for _, tt := range tests {
		q, r, err := MustParse(tt.a).QuoRem(MustParse(tt.b))
		require.NoError(t, err)
		assert.Equal(t, tt.q, q.String(), "%s / %s", tt.a, tt.b)
		assert.Equal(t, tt.r, r.String(), "%s %% %s", tt.a, tt.b)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, 1, Zero().Digits())
	assert.Equal(t, 9, MustParse("-999999999").Digits())
	assert.Equal(t, 10, MustParse("1000000000").Digits())
	assert.Equal(t, 68, MustParse("10879879879879879879879879898798701087987987987987987987987989879870").Digits())
}

// randomDecimal returns a decimal literal of 1..maxDigits digits, possibly negative.
func randomDecimal(rng *rand.Rand, maxDigits int) string {
	n := 1 + rng.Intn(maxDigits)
	var sb strings.Builder
	if rng.Intn(2) == 0 {
		sb.WriteByte('-')
	}
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	return sb.String()
}

func TestArithmeticMatchesMathBig(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 500; i++ {
		as, bs := randomDecimal(rng, 80), randomDecimal(rng, 40)
		a, b := MustParse(as), MustParse(bs)
		ba, _ := new(big.Int).SetString(as, 10)
		bb, _ := new(big.Int).SetString(bs, 10)

		require.Equal(t, new(big.Int).Add(ba, bb).String(), a.Add(b).String(), "%s + %s", as, bs)
		require.Equal(t, new(big.Int).Sub(ba, bb).String(), a.Sub(b).String(), "%s - %s", as, bs)
		require.Equal(t, new(big.Int).Mul(ba, bb).String(), a.Mul(b).String(), "%s * %s", as, bs)
		require.Equal(t, ba.Cmp(bb), a.Cmp(b), "cmp %s %s", as, bs)

		if bb.Sign() == 0 {
			continue
		}
		wantQ, wantR := new(big.Int).QuoRem(ba, bb, new(big.Int))
		q, r, err := a.QuoRem(b)
		require.NoError(t, err)
		require.Equal(t, wantQ.String(), q.String(), "%s / %s", as, bs)
		require.Equal(t, wantR.String(), r.String(), "%s %% %s", as, bs)
	}
}
