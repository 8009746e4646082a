package soc

// Isqrt returns floor(sqrt(n)) using the digit-by-digit method, which needs
// only shifts, adds and compares.
func Isqrt(n uint32) uint32 {
	var res uint32
	bit := uint32(1) << 30

	for bit > n {
		bit >>= 2
	}

	for bit != 0 {
		if n >= res+bit {
			n -= res + bit
			res = (res >> 1) + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}

	return res
}
