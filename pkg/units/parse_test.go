package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/units"
)

func TestParse_SuffixTable(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"1k", 1e3},
		{"2.2meg", 2.2e6},
		{"4.7u", 4.7e-6},
		{"10n", 10e-9},
		{"1p", 1e-12},
		{"1f", 1e-15},
		{"1T", 1e12},
		{"1G", 1e9},
		{"3.3", 3.3},
		{"-5m", -5e-3},
		{"1.5e3", 1.5e3},
	}
	for _, c := range cases {
		got, err := units.Parse(c.raw)
		require.NoError(t, err, c.raw)
		assert.InDelta(t, c.want, got, 1e-20, c.raw)
	}
}

func TestParse_TrailingUnitLettersIgnored(t *testing.T) {
	got, err := units.Parse("5kohm")
	require.NoError(t, err)
	assert.InDelta(t, 5e3, got, 1e-9)

	got, err = units.Parse("100meghz")
	require.NoError(t, err)
	assert.InDelta(t, 100e6, got, 1e-3)
}

func TestParse_Invalid(t *testing.T) {
	_, err := units.Parse("")
	assert.Error(t, err)

	_, err = units.Parse("abc")
	assert.Error(t, err)
}

func TestFormat_Precision(t *testing.T) {
	s := units.Format(1234.5, 3)
	assert.Equal(t, "1.23e+03", s)

	s = units.Format(1234.5, 0)
	assert.Contains(t, s, "e+03")
}
