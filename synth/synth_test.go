package synth

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/randconst/entropy"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/grammar"
	qtest "github.com/teranos/randconst/internal/testing"
	"github.com/teranos/randconst/typespec"
)

func registry(t *testing.T) *typespec.Registry {
	t.Helper()
	reg, err := typespec.ForArch("amd64")
	require.NoError(t, err)
	return reg
}

func spec(t *testing.T, name string) typespec.TypeSpec {
	t.Helper()
	s, ok := registry(t).Resolve(name)
	require.True(t, ok, name)
	return s
}

func TestSynthesize_ByteOrder(t *testing.T) {
	u32 := spec(t, "u32")
	buf := []byte{0x01, 0x02, 0x03, 0x04}

	little, err := Synthesize(u32, buf, binary.LittleEndian)
	require.NoError(t, err)
	got, ok := little.Uint64()
	require.True(t, ok)
	assert.Equal(t, uint64(0x04030201), got)

	big, err := Synthesize(u32, buf, binary.BigEndian)
	require.NoError(t, err)
	got, _ = big.Uint64()
	assert.Equal(t, uint64(0x01020304), got)

	native, err := Synthesize(u32, buf, binary.NativeEndian)
	require.NoError(t, err)
	got, _ = native.Uint64()
	assert.Equal(t, uint64(binary.NativeEndian.Uint32(buf)), got)
}

func TestSynthesize_TwosComplement(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want string
	}{
		{"i8", []byte{0xff}, "-1"},
		{"i8", []byte{0x80}, "-128"},
		{"i8", []byte{0x7f}, "127"},
		{"u8", []byte{0xff}, "255"},
		{"i16", []byte{0x00, 0x80}, "-32768"},
		{"i16", []byte{0xff, 0x7f}, "32767"},
		{"i32", []byte{0xfe, 0xff, 0xff, 0xff}, "-2"},
		{"i64", []byte{0, 0, 0, 0, 0, 0, 0, 0x80}, "-9223372036854775808"},
		{"u64", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, "18446744073709551615"},
		{"i128", []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x80}, "-170141183460469231731687303715884105728"},
		{"u128", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, "340282366920938463463374607431768211455"},
		{"i128", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, "-1"},
		{"u16", []byte{0, 0}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.want, func(t *testing.T) {
			v, err := Synthesize(spec(t, tt.name), tt.buf, binary.LittleEndian)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Text(10))
			assert.Equal(t, tt.want[0] == '-', v.Negative())
		})
	}
}

func TestSynthesize_ZeroIsLegal(t *testing.T) {
	for _, name := range typespec.Names {
		s := spec(t, name)
		v, err := Synthesize(s, make([]byte, s.Width), binary.NativeEndian)
		require.NoError(t, err, name)
		assert.Equal(t, "0", v.Text(10), name)
		assert.True(t, v.Bits().IsZero(), name)
	}
}

func TestSynthesize_WidthMismatch(t *testing.T) {
	_, err := Synthesize(spec(t, "u16"), []byte{1}, binary.LittleEndian)
	require.Error(t, err)
}

func TestValue_Accessors(t *testing.T) {
	v, err := Synthesize(spec(t, "i16"), []byte{0x9c, 0xff}, binary.LittleEndian)
	require.NoError(t, err)

	n, ok := v.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(-100), n)
	_, ok = v.Uint64()
	assert.False(t, ok)
	assert.Equal(t, "-64", v.Text(16))

	wide, err := Synthesize(spec(t, "u128"), make([]byte, 16), binary.LittleEndian)
	require.NoError(t, err)
	_, ok = wide.Uint64()
	assert.False(t, ok)
}

func TestGenerate_Scalar(t *testing.T) {
	seq := qtest.NewSequenceSource(0x2a, 0x00, 0x00, 0x00)
	s := New(seq, binary.LittleEndian)

	values, err := s.Generate(grammar.Scalar(spec(t, "u32")))
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "42", values[0].Text(10))
	assert.Equal(t, []int{4}, seq.Calls())
}

func TestGenerate_ArrayOrder(t *testing.T) {
	seq := qtest.NewSequenceSource(0x01, 0x00, 0x02, 0x00, 0xff, 0xff)
	s := New(seq, binary.LittleEndian)

	values, err := s.Generate(grammar.ArrayOf(spec(t, "i16"), 3))
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "1", values[0].Text(10))
	assert.Equal(t, "2", values[1].Text(10))
	assert.Equal(t, "-1", values[2].Text(10))
	assert.Equal(t, []int{2, 2, 2}, seq.Calls(), "each element is an independent draw")
}

func TestGenerate_EmptyArrayDrawsNothing(t *testing.T) {
	seq := qtest.NewSequenceSource()
	s := New(seq, nil)

	values, err := s.Generate(grammar.ArrayOf(spec(t, "u64"), 0))
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Empty(t, seq.Calls())
}

func TestGenerate_EntropyFailureAborts(t *testing.T) {
	s := New(qtest.FailingSource{}, nil)

	_, err := s.Generate(grammar.ArrayOf(spec(t, "u8"), 4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEntropy))
}

func TestGenerate_PartialArrayFailure(t *testing.T) {
	// Enough bytes for two of three elements
	s := New(qtest.NewSequenceSource(1, 2, 3, 4), binary.LittleEndian)

	values, err := s.Generate(grammar.ArrayOf(spec(t, "u16"), 3))
	require.Error(t, err)
	assert.Nil(t, values, "no partial output")
}

// Over 10,000 u8 draws every value must appear and the histogram must pass a
// chi-square goodness-of-fit test against the uniform distribution.
func TestGenerate_U8Uniformity(t *testing.T) {
	const draws = 10000
	s := New(entropy.NewSystem(), nil)
	u8 := spec(t, "u8")

	var counts [256]int
	values, err := s.Generate(grammar.ArrayOf(u8, draws))
	require.NoError(t, err)
	for _, v := range values {
		n, ok := v.Uint64()
		require.True(t, ok)
		counts[n]++
	}

	expected := float64(draws) / 256
	chi2 := 0.0
	for value, c := range counts {
		assert.NotZero(t, c, "value %d never drawn", value)
		d := float64(c) - expected
		chi2 += d * d / expected
	}

	// 255 degrees of freedom: mean 255, standard deviation ~22.6.
	// 400 is more than six standard deviations out.
	assert.Less(t, chi2, 400.0, "chi-square %.1f", chi2)
}

func TestGenerate_SignedRangeCoverage(t *testing.T) {
	s := New(entropy.NewSystem(), nil)
	values, err := s.Generate(grammar.ArrayOf(spec(t, "i8"), 10000))
	require.NoError(t, err)

	var sawMin, sawMax, sawNeg, sawPos bool
	for _, v := range values {
		n, ok := v.Int64()
		require.True(t, ok)
		require.GreaterOrEqual(t, n, int64(-128))
		require.LessOrEqual(t, n, int64(127))
		sawMin = sawMin || n == -128
		sawMax = sawMax || n == 127
		sawNeg = sawNeg || n < 0
		sawPos = sawPos || n > 0
	}
	assert.True(t, sawMin && sawMax && sawNeg && sawPos)
}

// Two independent draws of a type of at least 16 bits must almost never be
// equal; this guards against accidental caching or determinism.
func TestGenerate_NotIdempotent(t *testing.T) {
	s := New(entropy.NewSystem(), nil)

	for _, name := range []string{"u64", "i64", "u128", "i128", "usize"} {
		req := grammar.Scalar(spec(t, name))
		a, err := s.Generate(req)
		require.NoError(t, err)
		b, err := s.Generate(req)
		require.NoError(t, err)
		assert.NotEqual(t, a[0].Text(16), b[0].Text(16), name)
	}
}

func TestParseByteOrder(t *testing.T) {
	for name, want := range map[string]binary.ByteOrder{
		"":       binary.NativeEndian,
		"native": binary.NativeEndian,
		"little": binary.LittleEndian,
		"Big":    binary.BigEndian,
	} {
		got, err := ParseByteOrder(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseByteOrder("middle")
	require.Error(t, err)
}
