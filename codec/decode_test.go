package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/measurekit/tabular/errs"
)

func TestDecodeFloat(t *testing.T) {
	t.Run("ValidTokens", func(t *testing.T) {
		cases := []struct {
			in   string
			want float64
			n    int
		}{
			{"1.5\t", 1.5, 3},
			{"-0.5\n", -0.5, 4},
			{"1.500000000000000e+00\t", 1.5, 21},
			{"5.9e9\t", 5.9e9, 5},
			{"1E-3\t", 1e-3, 4},
			{"007\t", 7, 3},
			{".5\t", 0.5, 2},
			{"42.\t", 42, 3},
			{"0\t", 0, 1},
			{"nan\t", math.NaN(), 3},
			{"inf\t", math.Inf(1), 3},
			{"-inf\t", math.Inf(-1), 4},
		}
		for _, c := range cases {
			v, n, err := DecodeFloat([]byte(c.in))
			require.NoError(t, err, "input %q", c.in)
			require.Equal(t, c.n, n, "input %q", c.in)
			if math.IsNaN(c.want) {
				require.True(t, math.IsNaN(v), "input %q", c.in)
			} else {
				require.Equal(t, c.want, v, "input %q", c.in)
			}
		}
	})

	t.Run("LeadingPlusRejected", func(t *testing.T) {
		_, _, err := DecodeFloat([]byte("+1.5\t"))
		require.ErrorIs(t, err, errs.ErrMalformedNumber)
	})

	t.Run("NoDigits", func(t *testing.T) {
		for _, in := range []string{"-\t", ".\t", "x\t", "-.e5\t"} {
			_, _, err := DecodeFloat([]byte(in))
			require.ErrorIs(t, err, errs.ErrMalformedNumber, "input %q", in)
		}
	})

	t.Run("ExponentWithoutDigits", func(t *testing.T) {
		for _, in := range []string{"1.5e\t", "1.5e-\t", "1e+x"} {
			_, _, err := DecodeFloat([]byte(in))
			require.ErrorIs(t, err, errs.ErrMalformedNumber, "input %q", in)
		}
	})

	t.Run("NeedMoreAtBufferEnd", func(t *testing.T) {
		// Every proper prefix of a valid token could still continue.
		for _, in := range []string{"", "-", "1", "1.5", "1.5e", "1.5e+", "1.5e+0", "na", "-in", "nan"} {
			_, _, err := DecodeFloat([]byte(in))
			require.ErrorIs(t, err, errs.ErrNeedMore, "input %q", in)
		}
	})
}

func TestDecodeInt(t *testing.T) {
	t.Run("ValidTokens", func(t *testing.T) {
		cases := []struct {
			in   string
			want int64
			n    int
		}{
			{"3\t", 3, 1},
			{"-3\n", -3, 2},
			{"+7\t", 7, 2},
			{"007\t", 7, 3},
			{"9223372036854775807\t", math.MaxInt64, 19},
			{"-9223372036854775808\t", math.MinInt64, 20},
		}
		for _, c := range cases {
			v, n, err := DecodeInt([]byte(c.in))
			require.NoError(t, err, "input %q", c.in)
			require.Equal(t, c.want, v, "input %q", c.in)
			require.Equal(t, c.n, n, "input %q", c.in)
		}
	})

	t.Run("NoDigits", func(t *testing.T) {
		for _, in := range []string{"-\t", "+\t", "x\t", "\t"} {
			_, _, err := DecodeInt([]byte(in))
			require.ErrorIs(t, err, errs.ErrMalformedNumber, "input %q", in)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		for _, in := range []string{"9223372036854775808\t", "-9223372036854775809\t", "99999999999999999999\t"} {
			_, _, err := DecodeInt([]byte(in))
			require.ErrorIs(t, err, errs.ErrMalformedNumber, "input %q", in)
		}
	})

	t.Run("NeedMoreAtBufferEnd", func(t *testing.T) {
		for _, in := range []string{"", "-", "+", "12"} {
			_, _, err := DecodeInt([]byte(in))
			require.ErrorIs(t, err, errs.ErrNeedMore, "input %q", in)
		}
	})
}

func TestDecodeComplex(t *testing.T) {
	t.Run("FullForm", func(t *testing.T) {
		v, n, err := DecodeComplex([]byte("2+1j\t"))
		require.NoError(t, err)
		require.Equal(t, complex(2, 1), v)
		require.Equal(t, 4, n)

		v, n, err = DecodeComplex([]byte("1.5-2j\n"))
		require.NoError(t, err)
		require.Equal(t, complex(1.5, -2), v)
		require.Equal(t, 6, n)
	})

	t.Run("PurelyImaginary", func(t *testing.T) {
		v, n, err := DecodeComplex([]byte("-1j\t"))
		require.NoError(t, err)
		require.Equal(t, complex(0, -1), v)
		require.Equal(t, 3, n)

		v, n, err = DecodeComplex([]byte("2.5j\n"))
		require.NoError(t, err)
		require.Equal(t, complex(0, 2.5), v)
		require.Equal(t, 4, n)
	})

	t.Run("PurelyReal", func(t *testing.T) {
		v, n, err := DecodeComplex([]byte("3\t"))
		require.NoError(t, err)
		require.Equal(t, complex(3, 0), v)
		require.Equal(t, 1, n)

		// Carriage return counts as a pending terminator.
		v, n, err = DecodeComplex([]byte("3\r\n"))
		require.NoError(t, err)
		require.Equal(t, complex(3, 0), v)
		require.Equal(t, 1, n)
	})

	t.Run("MissingJ", func(t *testing.T) {
		_, _, err := DecodeComplex([]byte("2+1x\t"))
		require.ErrorIs(t, err, errs.ErrUnexpectedTrailingToken)
	})

	t.Run("MalformedImaginary", func(t *testing.T) {
		_, _, err := DecodeComplex([]byte("2+x\t"))
		require.ErrorIs(t, err, errs.ErrMalformedNumber)
	})

	t.Run("NeedMoreAtBufferEnd", func(t *testing.T) {
		for _, in := range []string{"2", "2+", "2+1", "-1"} {
			_, _, err := DecodeComplex([]byte(in))
			require.ErrorIs(t, err, errs.ErrNeedMore, "input %q", in)
		}
	})

	t.Run("JTerminatedTokenAtBufferEnd", func(t *testing.T) {
		// 'j' is final within the token, so the decode can complete even
		// when nothing follows it yet.
		v, n, err := DecodeComplex([]byte("2+1j"))
		require.NoError(t, err)
		require.Equal(t, complex(2, 1), v)
		require.Equal(t, 4, n)

		v, n, err = DecodeComplex([]byte("2j"))
		require.NoError(t, err)
		require.Equal(t, complex(0, 2), v)
		require.Equal(t, 2, n)
	})
}

func TestDecodeStr(t *testing.T) {
	t.Run("SpanToTerminator", func(t *testing.T) {
		v, n, err := DecodeStr([]byte("hello world\tnext"))
		require.NoError(t, err)
		require.Equal(t, "hello world", v)
		require.Equal(t, 11, n)
	})

	t.Run("EmptyCell", func(t *testing.T) {
		v, n, err := DecodeStr([]byte("\tnext"))
		require.NoError(t, err)
		require.Equal(t, "", v)
		require.Equal(t, 0, n)
	})

	t.Run("TrailingCRStripped", func(t *testing.T) {
		v, n, err := DecodeStr([]byte("abc\r\n"))
		require.NoError(t, err)
		require.Equal(t, "abc", v)
		require.Equal(t, 3, n)
	})

	t.Run("InteriorCRKept", func(t *testing.T) {
		v, _, err := DecodeStr([]byte("a\rb\n"))
		require.NoError(t, err)
		require.Equal(t, "a\rb", v)
	})

	t.Run("UTF8", func(t *testing.T) {
		v, _, err := DecodeStr([]byte("µ-wave\n"))
		require.NoError(t, err)
		require.Equal(t, "µ-wave", v)
	})

	t.Run("NeedMoreWithoutTerminator", func(t *testing.T) {
		_, _, err := DecodeStr([]byte("partial"))
		require.ErrorIs(t, err, errs.ErrNeedMore)
	})
}
