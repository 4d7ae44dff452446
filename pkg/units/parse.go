// Package units parses SPICE-style numeric literals carrying an SI suffix,
// shared by netlist values and device parameters.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// suffixes maps a lower-cased single- or three-letter unit suffix to its
// multiplier. "meg" is checked before the single-letter table since it
// would otherwise be consumed as a bare "m" (milli) followed by "eg".
var suffixes = map[string]float64{
	"meg": 1e6,
	"t":   1e12,
	"g":   1e9,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[tgkmunpf])?[a-z]*$`)

// Parse converts a SPICE value literal such as "1k", "2.2meg", "4.7u" or a
// bare number into its float64 value. The token is lower-cased before
// matching, so unit suffixes are case-insensitive on input even though the
// spec's canonical suffix table is lower-case only.
func Parse(raw string) (float64, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("units: empty value")
	}

	matches := valuePattern.FindStringSubmatch(token)
	if matches == nil {
		return 0, fmt.Errorf("units: invalid value format %q", raw)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("units: invalid numeric literal %q: %w", raw, err)
	}

	if suffix := matches[2]; suffix != "" {
		mult, ok := suffixes[suffix]
		if !ok {
			return 0, fmt.Errorf("units: unknown suffix %q in %q", suffix, raw)
		}
		num *= mult
	}

	return num, nil
}

// MustParse is Parse but panics on error; useful for literal test fixtures.
func MustParse(raw string) float64 {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders x in scientific notation with the given number of
// significant digits, used by the PSF text writer and CLI --precision flag.
func Format(x float64, precision int) string {
	if precision < 1 {
		precision = 6
	}
	return strconv.FormatFloat(x, 'e', precision-1, 64)
}
