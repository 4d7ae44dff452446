// Package psf writes a result.Run as a flat PSF-style text export, grounded
// on the original implementation's write_psf_text (a signals:/values: dump
// for the operating point) extended with transient and AC sections spec.md
// §6.3 calls for.
package psf

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-spice/engine/pkg/result"
	"github.com/go-spice/engine/pkg/units"
)

// WriteText renders run at the given significant-digit precision (the
// CLI's --precision flag). precision <= 0 falls back to units.Format's own
// default.
func WriteText(run result.Run, precision int) string {
	var b strings.Builder
	b.WriteString("PSF_TEXT\n")
	fmt.Fprintf(&b, "analysis=%s\n", run.Analysis)
	fmt.Fprintf(&b, "status=%s\n", run.Status)
	fmt.Fprintf(&b, "iterations=%d\n", run.Iterations)
	if run.Message != "" {
		fmt.Fprintf(&b, "message=%s\n", run.Message)
	}

	switch run.Analysis {
	case result.Op:
		writeSignalsValues(&b, run.NodeNames, run.Solution, precision)

	case result.Dc:
		writeSignals(&b, run.NodeNames)
		b.WriteString("values:\n")
		for i, v := range run.SweepValues {
			fmt.Fprintf(&b, "%s=%s\n", run.SweepVar, units.Format(v, precision))
			if i < len(run.SweepSolutions) {
				writeRow(&b, run.NodeNames, run.SweepSolutions[i], precision)
			}
		}

	case result.Tran:
		fmt.Fprintf(&b, "[Transient Analysis]\npoints = %d\n[Signals]\n- time\n", len(run.TranTimes))
		for _, name := range run.NodeNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("[Data]\n")
		for i, t := range run.TranTimes {
			fmt.Fprintf(&b, "%s", units.Format(t, precision))
			if i < len(run.TranSolutions) {
				for _, v := range run.TranSolutions[i] {
					fmt.Fprintf(&b, " %s", units.Format(v, precision))
				}
			}
			b.WriteString("\n")
		}

	case result.Ac:
		writeSignals(&b, run.NodeNames)
		b.WriteString("values:\n")
		for i, f := range run.ACFrequencies {
			fmt.Fprintf(&b, "freq=%s\n", units.Format(f, precision))
			for j, name := range run.NodeNames {
				mag, phase := 0.0, 0.0
				if i < len(run.ACMagDB) && j < len(run.ACMagDB[i]) {
					mag = run.ACMagDB[i][j]
				}
				if i < len(run.ACPhaseDeg) && j < len(run.ACPhaseDeg[i]) {
					phase = run.ACPhaseDeg[i][j]
				}
				fmt.Fprintf(&b, "  %s mag=%sdB phase=%sdeg\n", name, units.Format(mag, precision), units.Format(phase, precision))
			}
		}
	}

	return b.String()
}

// WriteFile renders run and writes it to path.
func WriteFile(run result.Run, precision int, path string) error {
	return os.WriteFile(path, []byte(WriteText(run, precision)), 0o644)
}

func writeSignals(b *strings.Builder, names []string) {
	b.WriteString("signals:\n")
	for _, name := range names {
		fmt.Fprintf(b, "- %s\n", name)
	}
}

func writeSignalsValues(b *strings.Builder, names []string, values []float64, precision int) {
	writeSignals(b, names)
	b.WriteString("values:\n")
	writeRow(b, names, values, precision)
}

func writeRow(b *strings.Builder, names []string, values []float64, precision int) {
	for i, v := range values {
		name := fmt.Sprintf("n%d", i)
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(b, "%s %s\n", name, units.Format(v, precision))
	}
}
