package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/measurekit/tabular/errs"
)

// Decode errors report the offset within buf at which the violation was
// detected via the int return; on errs.ErrNeedMore the offset is 0 and the
// caller must retry with more bytes appended to the buffer.

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isTerminator reports whether c ends a cell. '\r' counts because a
// carriage return immediately before a terminator is skipped wherever a
// terminator is expected (CRLF tolerance).
func isTerminator(c byte) bool { return c == '\t' || c == '\n' || c == '\r' }

// DecodeFloat parses an IEEE-754 double: optional leading '-' (never '+'),
// digits with an optional '.', and an optional exponent. The special
// tokens "nan", "inf" and "-inf" are accepted. At least one digit must be
// consumed or the token must be a special token, otherwise
// errs.ErrMalformedNumber is returned.
func DecodeFloat(buf []byte) (float64, int, error) {
	i := 0
	n := len(buf)

	neg := false
	if i < n && buf[i] == '-' {
		neg = true
		i++
	}

	if i < n && (buf[i] == 'n' || buf[i] == 'i') {
		return decodeSpecialFloat(buf, i, neg)
	}

	digits := 0
	for i < n && isDigit(buf[i]) {
		i++
		digits++
	}
	if i < n && buf[i] == '.' {
		i++
		for i < n && isDigit(buf[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		if i == n {
			return 0, 0, errs.ErrNeedMore
		}

		return 0, i, fmt.Errorf("%w: no digits in float", errs.ErrMalformedNumber)
	}

	if i < n && (buf[i] == 'e' || buf[i] == 'E') {
		j := i + 1
		if j < n && (buf[j] == '+' || buf[j] == '-') {
			j++
		}
		expDigits := 0
		for j < n && isDigit(buf[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			if j == n {
				return 0, 0, errs.ErrNeedMore
			}

			return 0, j, fmt.Errorf("%w: exponent has no digits", errs.ErrMalformedNumber)
		}
		i = j
	}

	if i == n {
		// The token reaches the end of the buffer; more digits or an
		// exponent could still follow.
		return 0, 0, errs.ErrNeedMore
	}

	f, err := strconv.ParseFloat(string(buf[:i]), 64)
	if err != nil {
		// Overflow parses to ±Inf without error; anything else here means
		// the grammar scan above let something invalid through.
		return 0, 0, fmt.Errorf("%w: %q", errs.ErrMalformedNumber, buf[:i])
	}

	return f, i, nil
}

// decodeSpecialFloat matches the "nan" / "inf" tokens, with i positioned
// on the first letter and the optional '-' already consumed.
func decodeSpecialFloat(buf []byte, i int, neg bool) (float64, int, error) {
	var word string
	var val float64
	if buf[i] == 'n' {
		word, val = "nan", math.NaN()
	} else {
		word, val = "inf", math.Inf(1)
	}

	for k := 0; k < len(word); k++ {
		if i+k == len(buf) {
			return 0, 0, errs.ErrNeedMore
		}
		if buf[i+k] != word[k] {
			return 0, i + k, fmt.Errorf("%w: %q", errs.ErrMalformedNumber, buf[:i+k+1])
		}
	}

	if i+len(word) == len(buf) {
		// Keep the invariant that a successful decode leaves at least one
		// byte after the token.
		return 0, 0, errs.ErrNeedMore
	}

	if neg {
		val = -val
	}

	return val, i + len(word), nil
}

// DecodeInt parses a signed 64-bit decimal integer: optional single
// leading '-' or '+', then one or more ASCII digits. Leading zeros are
// accepted; no digit grouping.
func DecodeInt(buf []byte) (int64, int, error) {
	i := 0
	n := len(buf)

	neg := false
	if i < n && (buf[i] == '-' || buf[i] == '+') {
		neg = buf[i] == '-'
		i++
	}

	digits := 0
	var v uint64
	for i < n && isDigit(buf[i]) {
		d := uint64(buf[i] - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, i, fmt.Errorf("%w: integer overflow", errs.ErrMalformedNumber)
		}
		v = v*10 + d
		i++
		digits++
	}

	if digits == 0 {
		if i == n {
			return 0, 0, errs.ErrNeedMore
		}

		return 0, i, fmt.Errorf("%w: no digits in integer", errs.ErrMalformedNumber)
	}
	if i == n {
		return 0, 0, errs.ErrNeedMore
	}

	if neg {
		if v > uint64(math.MaxInt64)+1 {
			return 0, i, fmt.Errorf("%w: integer overflow", errs.ErrMalformedNumber)
		}

		return -int64(v), i, nil //nolint: gosec
	}
	if v > math.MaxInt64 {
		return 0, i, fmt.Errorf("%w: integer overflow", errs.ErrMalformedNumber)
	}

	return int64(v), i, nil
}

// DecodeComplex parses the <real>±<imag>j grammar:
//   - real part followed immediately by 'j': purely imaginary
//   - real part followed by a cell terminator: purely real
//   - otherwise an optional '+' (a '-' stays with the float token), the
//     imaginary float, and a mandatory 'j'
func DecodeComplex(buf []byte) (complex128, int, error) {
	re, i, err := DecodeFloat(buf)
	if err != nil {
		return 0, i, err
	}

	// DecodeFloat only succeeds when at least one byte follows the token.
	switch {
	case buf[i] == 'j':
		return complex(0, re), i + 1, nil
	case isTerminator(buf[i]):
		return complex(re, 0), i, nil
	}

	if buf[i] == '+' {
		i++
	}

	im, m, err := DecodeFloat(buf[i:])
	if err != nil {
		if errors.Is(err, errs.ErrNeedMore) {
			return 0, 0, err
		}

		return 0, i + m, err
	}
	i += m

	if buf[i] != 'j' {
		return 0, i, fmt.Errorf("%w: expected 'j' after imaginary part, got %q",
			errs.ErrUnexpectedTrailingToken, buf[i])
	}

	return complex(re, im), i + 1, nil
}

// DecodeStr returns the raw span up to (but not including) the next tab or
// newline, decoded as UTF-8, with a trailing '\r' excluded so CRLF line
// endings read transparently. The terminator is not consumed.
func DecodeStr(buf []byte) (string, int, error) {
	for i, c := range buf {
		if c == '\t' || c == '\n' {
			end := i
			if end > 0 && buf[end-1] == '\r' {
				end--
			}

			return string(buf[:end]), end, nil
		}
	}

	return "", 0, errs.ErrNeedMore
}
