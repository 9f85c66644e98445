package bigint

// Magnitude helpers. Inputs are canonical little-endian limb slices and are
// never written to; every helper allocates its result.

func trim(m []uint32) []uint32 {
	n := len(m)
	for n > 1 && m[n-1] == 0 {
		n--
	}
	if n == 0 {
		return zeroMag
	}
	return m[:n]
}

func cmpMag(x, y []uint32) int {
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	for i := len(x) - 1; i >= 0; i-- {
		if x[i] != y[i] {
			if x[i] < y[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func addMag(x, y []uint32) []uint32 {
	if len(x) < len(y) {
		x, y = y, x
	}
	out := make([]uint32, len(x)+1)
	var carry uint32
	for i := range x {
		s := x[i] + carry
		if i < len(y) {
			s += y[i]
		}
		if s >= base {
			s -= base
			carry = 1
		} else {
			carry = 0
		}
		out[i] = s
	}
	out[len(x)] = carry
	return trim(out)
}

// subMag returns x - y and requires x >= y.
func subMag(x, y []uint32) []uint32 {
	out := make([]uint32, len(x))
	var borrow int64
	for i := range x {
		d := int64(x[i]) - borrow
		if i < len(y) {
			d -= int64(y[i])
		}
		if d < 0 {
			d += base
			borrow = 1
		} else {
			borrow = 0
		}
		out[i] = uint32(d)
	}
	if borrow != 0 {
		panic("bigint: subMag underflow")
	}
	return trim(out)
}

func mulMag(x, y []uint32) []uint32 {
	out := make([]uint32, len(x)+len(y))
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		var carry uint64
		for j, yj := range y {
			t := uint64(xi)*uint64(yj) + uint64(out[i+j]) + carry
			out[i+j] = uint32(t % base)
			carry = t / base
		}
		for k := i + len(y); carry > 0; k++ {
			t := uint64(out[k]) + carry
			out[k] = uint32(t % base)
			carry = t / base
		}
	}
	return trim(out)
}

// mulSmall returns x * d for a single limb d.
func mulSmall(x []uint32, d uint32) []uint32 {
	if d == 0 {
		return zeroMag
	}
	out := make([]uint32, len(x)+1)
	var carry uint64
	for i, xi := range x {
		t := uint64(xi)*uint64(d) + carry
		out[i] = uint32(t % base)
		carry = t / base
	}
	out[len(x)] = uint32(carry)
	return trim(out)
}

// divSmall divides x by a single nonzero limb.
func divSmall(x []uint32, d uint32) ([]uint32, []uint32) {
	q := make([]uint32, len(x))
	var rem uint64
	for i := len(x) - 1; i >= 0; i-- {
		cur := rem*base + uint64(x[i])
		q[i] = uint32(cur / uint64(d))
		rem = cur % uint64(d)
	}
	return trim(q), []uint32{uint32(rem)}
}

// divMag is schoolbook long division producing one quotient limb per
// dividend limb. Each quotient limb is the largest d with y*d <= rem, found
// by bisection over [0, base).
func divMag(x, y []uint32) ([]uint32, []uint32) {
	if cmpMag(x, y) < 0 {
		return zeroMag, x
	}
	if len(y) == 1 {
		return divSmall(x, y[0])
	}

	q := make([]uint32, len(x))
	rem := zeroMag
	for i := len(x) - 1; i >= 0; i-- {
		rem = shiftIn(rem, x[i])
		if cmpMag(rem, y) < 0 {
			continue
		}
		lo, hi := uint32(1), uint32(base-1)
		for lo < hi {
			mid := lo + (hi-lo+1)/2
			if cmpMag(mulSmall(y, mid), rem) <= 0 {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		q[i] = lo
		rem = subMag(rem, mulSmall(y, lo))
	}
	return trim(q), rem
}

// shiftIn returns m*base + limb.
func shiftIn(m []uint32, limb uint32) []uint32 {
	if len(m) == 1 && m[0] == 0 {
		return []uint32{limb}
	}
	out := make([]uint32, len(m)+1)
	out[0] = limb
	copy(out[1:], m)
	return out
}
