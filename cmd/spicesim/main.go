// Command spicesim runs a SPICE-style analog circuit netlist and prints or
// exports its result, in the teacher's flag-based CLI idiom (cmd/main.go).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-spice/engine/internal/consts"
	"github.com/go-spice/engine/pkg/circuit"
	"github.com/go-spice/engine/pkg/engine"
	"github.com/go-spice/engine/pkg/netlist"
	"github.com/go-spice/engine/pkg/psf"
	"github.com/go-spice/engine/pkg/result"
	"github.com/go-spice/engine/pkg/util"
)

const version = "0.1.0"

const usage = `usage: spicesim [options] <netlist>

options:
  -h, --help              show this help and exit
  -V, --version           show version and exit
  -o, --psf <path>        write a PSF text export to <path>
  -a, --analysis <kind>   op|dc|tran|ac (default: first directive in the netlist)
      --dc-source <name>  DC sweep source, overrides the netlist's .dc
      --dc-start  <num>
      --dc-stop   <num>
      --dc-step   <num>
      --ac-type   dec|oct|lin
      --ac-points <int>
      --ac-fstart <freq>
      --ac-fstop  <freq>
      --precision <1..15> significant digits in scientific-notation output (default 6)
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("spicesim", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var help, showVersion bool
	var psfPath, analysisKind, dcSource, acType string
	var dcStart, dcStop, dcStep, acFStart, acFStop float64
	var acPoints, precision int

	fs.BoolVar(&help, "h", false, "")
	fs.BoolVar(&help, "help", false, "")
	fs.BoolVar(&showVersion, "V", false, "")
	fs.BoolVar(&showVersion, "version", false, "")
	fs.StringVar(&psfPath, "o", "", "")
	fs.StringVar(&psfPath, "psf", "", "")
	fs.StringVar(&analysisKind, "a", "", "")
	fs.StringVar(&analysisKind, "analysis", "", "")
	fs.StringVar(&dcSource, "dc-source", "", "")
	fs.Float64Var(&dcStart, "dc-start", 0, "")
	fs.Float64Var(&dcStop, "dc-stop", 0, "")
	fs.Float64Var(&dcStep, "dc-step", 0, "")
	fs.StringVar(&acType, "ac-type", "", "")
	fs.IntVar(&acPoints, "ac-points", 0, "")
	fs.Float64Var(&acFStart, "ac-fstart", 0, "")
	fs.Float64Var(&acFStop, "ac-fstop", 0, "")
	fs.IntVar(&precision, "precision", 6, "")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if help {
		fs.Usage()
		return 0
	}
	if showVersion {
		fmt.Println("spicesim " + version)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicesim: %v\n", err)
		return 2
	}

	ckt, err := netlist.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicesim: parse error: %v\n", err)
		return 2
	}

	eng, err := engine.New(ckt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicesim: elaboration error: %v\n", err)
		return 2
	}

	dir, err := selectDirective(ckt, analysisKind, dcSource, dcStart, dcStop, dcStep, acType, acPoints, acFStart, acFStop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicesim: %v\n", err)
		return 2
	}

	store := result.NewStore()
	id, err := eng.RunWithStore(dir, consts.TNominal, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spicesim: run error: %v\n", err)
		return 1
	}
	run, _ := store.Get(id)
	if run.Status != result.Converged {
		fmt.Fprintf(os.Stderr, "spicesim: analysis %s: %s\n", run.Status, run.Message)
		return 1
	}

	printSummary(run)

	if psfPath != "" {
		if err := psf.WriteFile(run, precision, psfPath); err != nil {
			fmt.Fprintf(os.Stderr, "spicesim: psf export failed: %v\n", err)
			return 1
		}
	}
	return 0
}

// selectDirective picks the directive to run: an explicit -a/--analysis
// flag (optionally combined with --dc-*/--ac-* overrides) takes precedence
// over the first matching directive parsed from the netlist.
func selectDirective(ckt *circuit.Circuit, kind, dcSource string, dcStart, dcStop, dcStep float64, acType string, acPoints int, acFStart, acFStop float64) (circuit.Directive, error) {
	if kind == "" {
		if len(ckt.Directives) == 0 {
			return circuit.Directive{}, fmt.Errorf("no analysis directive in netlist and none given via -a")
		}
		return ckt.Directives[0], nil
	}

	switch circuit.DirectiveKind(kind) {
	case circuit.DirectiveOp:
		return circuit.Directive{Kind: circuit.DirectiveOp}, nil

	case circuit.DirectiveDC:
		if dcSource != "" {
			return circuit.Directive{Kind: circuit.DirectiveDC, DCSource: dcSource, DCStart: dcStart, DCStop: dcStop, DCStep: dcStep}, nil
		}
		for _, d := range ckt.Directives {
			if d.Kind == circuit.DirectiveDC {
				return d, nil
			}
		}
		return circuit.Directive{}, fmt.Errorf("-a dc needs --dc-source/--dc-start/--dc-stop/--dc-step or a .dc in the netlist")

	case circuit.DirectiveTran:
		for _, d := range ckt.Directives {
			if d.Kind == circuit.DirectiveTran {
				return d, nil
			}
		}
		return circuit.Directive{}, fmt.Errorf("-a tran needs a .tran directive in the netlist")

	case circuit.DirectiveAC:
		if acType != "" {
			return circuit.Directive{Kind: circuit.DirectiveAC, ACSweepType: acType, ACPoints: acPoints, ACFStart: acFStart, ACFStop: acFStop}, nil
		}
		for _, d := range ckt.Directives {
			if d.Kind == circuit.DirectiveAC {
				return d, nil
			}
		}
		return circuit.Directive{}, fmt.Errorf("-a ac needs --ac-type/--ac-points/--ac-fstart/--ac-fstop or a .ac in the netlist")

	default:
		return circuit.Directive{}, fmt.Errorf("unknown -a/--analysis value %q (want op|dc|tran|ac)", kind)
	}
}

func printSummary(run result.Run) {
	fmt.Printf("analysis=%s status=%s iterations=%d\n", run.Analysis, run.Status, run.Iterations)
	switch run.Analysis {
	case result.Op:
		for i, name := range run.NodeNames {
			if i < len(run.Solution) {
				fmt.Printf("%s = %s\n", name, util.FormatValueFactor(run.Solution[i], "V"))
			}
		}
	case result.Dc:
		fmt.Printf("%d sweep points\n", len(run.SweepValues))
	case result.Tran:
		fmt.Printf("%d time points\n", len(run.TranTimes))
	case result.Ac:
		printACTable(run)
	}
}

// printACTable renders one line per swept frequency, showing the
// magnitude/phase of every node the way the teacher's deleted
// cmd/main.go table did, but limited to the first node so the output
// stays readable for circuits with many nodes.
func printACTable(run result.Run) {
	if len(run.NodeNames) == 0 {
		fmt.Printf("%d frequency points\n", len(run.ACFrequencies))
		return
	}
	fmt.Printf("%d frequency points, showing %s\n", len(run.ACFrequencies), run.NodeNames[0])
	for i, f := range run.ACFrequencies {
		mag := run.ACMagDB[i][0]
		phase := run.ACPhaseDeg[i][0]
		fmt.Printf("%s %s %sdeg\n", util.FormatFrequency(f), util.FormatMagnitude(mag), util.FormatPhase(phase))
	}
}
