// Package netlist turns a SPICE-style text deck into an elaborated
// *circuit.Circuit. Subcircuit expansion and parameter substitution are
// left to an upstream elaboration step; this package only resolves node
// names, instance lines and `.model`/analysis directives.
package netlist

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-spice/engine/pkg/circuit"
	"github.com/go-spice/engine/pkg/units"
)

// Parse scans input line by line: the first line is the title, `*` lines
// are comments, `.` lines are directives and everything else is an
// instance line dispatched on its name's leading character.
func Parse(input string) (*circuit.Circuit, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	title := ""
	if scanner.Scan() {
		title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}
	ckt := circuit.New(title)

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := parseDirective(ckt, line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}
		if err := parseInstance(ckt, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	return ckt, nil
}

func parseDirective(ckt *circuit.Circuit, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty directive")
	}

	switch strings.ToLower(fields[0]) {
	case ".op":
		ckt.Directives = append(ckt.Directives, circuit.Directive{Kind: circuit.DirectiveOp})

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("%s: need at least tstep and tstop", fields[0])
		}
		d := circuit.Directive{Kind: circuit.DirectiveTran}
		var err error
		if d.TranStep, err = units.Parse(fields[1]); err != nil {
			return fmt.Errorf("tstep: %w", err)
		}
		if d.TranStop, err = units.Parse(fields[2]); err != nil {
			return fmt.Errorf("tstop: %w", err)
		}
		for i := 3; i < len(fields); i++ {
			if strings.EqualFold(fields[i], "uic") {
				d.UseUIC = true
				continue
			}
			v, err := units.Parse(fields[i])
			if err != nil {
				return fmt.Errorf("tran arg %d: %w", i, err)
			}
			switch i {
			case 3:
				d.TranStart = v
			case 4:
				d.TranMax = v
			}
		}
		if d.TranMax == 0 {
			d.TranMax = d.TranStep
		}
		ckt.Directives = append(ckt.Directives, d)

	case ".ac":
		if len(fields) < 5 {
			return fmt.Errorf(".ac: need sweep type, points, fstart, fstop")
		}
		d := circuit.Directive{Kind: circuit.DirectiveAC, ACSweepType: strings.ToLower(fields[1])}
		if d.ACSweepType != "dec" && d.ACSweepType != "oct" && d.ACSweepType != "lin" {
			return fmt.Errorf(".ac: unknown sweep type %q", fields[1])
		}
		points, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf(".ac points: %w", err)
		}
		d.ACPoints = points
		if d.ACFStart, err = units.Parse(fields[3]); err != nil {
			return fmt.Errorf(".ac fstart: %w", err)
		}
		if d.ACFStop, err = units.Parse(fields[4]); err != nil {
			return fmt.Errorf(".ac fstop: %w", err)
		}
		ckt.Directives = append(ckt.Directives, d)

	case ".dc":
		if len(fields) < 5 {
			return fmt.Errorf(".dc: need source, start, stop, step")
		}
		d := circuit.Directive{Kind: circuit.DirectiveDC, DCSource: fields[1]}
		var err error
		if d.DCStart, err = units.Parse(fields[2]); err != nil {
			return fmt.Errorf(".dc start: %w", err)
		}
		if d.DCStop, err = units.Parse(fields[3]); err != nil {
			return fmt.Errorf(".dc stop: %w", err)
		}
		if d.DCStep, err = units.Parse(fields[4]); err != nil {
			return fmt.Errorf(".dc step: %w", err)
		}
		ckt.Directives = append(ckt.Directives, d)

	case ".model":
		if len(fields) < 3 {
			return fmt.Errorf(".model: need name and type")
		}
		m := circuit.ModelCard{Name: fields[1], Type: strings.ToUpper(fields[2]), Params: map[string]string{}}
		rest := strings.Join(fields[3:], " ")
		rest = strings.TrimPrefix(strings.TrimSpace(rest), "(")
		rest = strings.TrimSuffix(strings.TrimSpace(rest), ")")
		for _, pair := range strings.Fields(rest) {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			m.Params[strings.ToLower(k)] = v
		}
		ckt.AddModel(m)

	case ".end", ".ends", ".include", ".subckt":
		return fmt.Errorf("%s: subcircuit/include elaboration is not supported", fields[0])

	default:
		return fmt.Errorf("unsupported directive %q", fields[0])
	}
	return nil
}

func parseInstance(ckt *circuit.Circuit, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("invalid instance line %q", line)
	}
	name := fields[0]
	kind := circuit.Kind(strings.ToUpper(name[:1]))

	switch kind {
	case circuit.VoltageSource, circuit.CurrentSource:
		return parseSource(ckt, kind, fields)
	case circuit.Diode:
		return parseDiode(ckt, fields)
	case circuit.Mosfet:
		return parseMosfet(ckt, fields)
	case circuit.VCVS, circuit.VCCS:
		return parseFourTerminalControlled(ckt, kind, fields)
	case circuit.CCCS, circuit.CCVS:
		return parseCurrentControlled(ckt, kind, fields)
	case circuit.Resistor, circuit.Capacitor, circuit.Inductor:
		return parseTwoTerminalRLC(ckt, kind, fields)
	case circuit.Subcircuit:
		return fmt.Errorf("%s: subcircuit instantiation is not supported", name)
	default:
		return fmt.Errorf("unrecognized instance kind %q in %q", kind, name)
	}
}

func nodeIDs(ckt *circuit.Circuit, names []string) []int {
	ids := make([]int, len(names))
	for i, n := range names {
		ids[i] = ckt.NodeID(n)
	}
	return ids
}

func parseTwoTerminalRLC(ckt *circuit.Circuit, kind circuit.Kind, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s: need n1, n2, value", fields[0])
	}
	if _, err := units.Parse(fields[3]); err != nil {
		return fmt.Errorf("%s: value: %w", fields[0], err)
	}
	ckt.AddInstance(&circuit.Instance{
		Name:  fields[0],
		Kind:  kind,
		Nodes: nodeIDs(ckt, fields[1:3]),
		Value: fields[3],
	})
	return nil
}

func parseDiode(ckt *circuit.Circuit, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%s: need n1, n2", fields[0])
	}
	inst := &circuit.Instance{
		Name:  fields[0],
		Kind:  circuit.Diode,
		Nodes: nodeIDs(ckt, fields[1:3]),
	}
	if len(fields) > 3 {
		inst.Model = fields[3]
	}
	ckt.AddInstance(inst)
	return nil
}

func parseMosfet(ckt *circuit.Circuit, fields []string) error {
	if len(fields) < 6 {
		return fmt.Errorf("%s: need d, g, s, b, model", fields[0])
	}
	inst := &circuit.Instance{
		Name:   fields[0],
		Kind:   circuit.Mosfet,
		Nodes:  nodeIDs(ckt, fields[1:5]),
		Model:  fields[5],
		Params: map[string]string{},
	}
	for _, pair := range fields[6:] {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		inst.Params[strings.ToLower(k)] = v
	}
	ckt.AddInstance(inst)
	return nil
}

// parseFourTerminalControlled handles VCVS (E) and VCCS (G) lines:
// `E<name> n+ n- nc+ nc- gain`.
func parseFourTerminalControlled(ckt *circuit.Circuit, kind circuit.Kind, fields []string) error {
	if len(fields) < 6 {
		return fmt.Errorf("%s: need n+, n-, nc+, nc-, gain", fields[0])
	}
	ckt.AddInstance(&circuit.Instance{
		Name:  fields[0],
		Kind:  kind,
		Nodes: nodeIDs(ckt, fields[1:5]),
		Value: fields[5],
	})
	return nil
}

// parseCurrentControlled handles CCCS (F) and CCVS (H) lines:
// `F<name> n+ n- Vcontrol gain`.
func parseCurrentControlled(ckt *circuit.Circuit, kind circuit.Kind, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("%s: need n+, n-, controlling source, gain", fields[0])
	}
	ckt.AddInstance(&circuit.Instance{
		Name:    fields[0],
		Kind:    kind,
		Nodes:   nodeIDs(ckt, fields[1:3]),
		Control: fields[3],
		Value:   fields[4],
	})
	return nil
}

func parseSource(ckt *circuit.Circuit, kind circuit.Kind, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%s: need n1, n2, source spec", fields[0])
	}
	inst := &circuit.Instance{
		Name:   fields[0],
		Kind:   kind,
		Nodes:  nodeIDs(ckt, fields[1:3]),
		Params: map[string]string{},
	}

	remaining := strings.Join(fields[3:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ")
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)
	if len(words) == 0 {
		return fmt.Errorf("%s: missing source spec", fields[0])
	}

	i := 0
	for i < len(words) {
		switch strings.ToUpper(words[i]) {
		case "DC":
			if i+1 >= len(words) {
				return fmt.Errorf("%s: missing DC value", fields[0])
			}
			inst.Value = words[i+1]
			i += 2

		case "SIN":
			body, n, err := parenBody(words, i+1)
			if err != nil {
				return fmt.Errorf("%s: SIN: %w", fields[0], err)
			}
			inst.Params["waveform"] = "sin"
			inst.Params["sin"] = strings.Join(body, " ")
			i += 1 + n

		case "PULSE":
			body, n, err := parenBody(words, i+1)
			if err != nil {
				return fmt.Errorf("%s: PULSE: %w", fields[0], err)
			}
			inst.Params["waveform"] = "pulse"
			inst.Params["pulse"] = strings.Join(body, " ")
			i += 1 + n

		case "PWL":
			body, n, err := parenBody(words, i+1)
			if err != nil {
				return fmt.Errorf("%s: PWL: %w", fields[0], err)
			}
			inst.Params["waveform"] = "pwl"
			inst.Params["pwl"] = strings.Join(body, " ")
			i += 1 + n

		case "AC":
			if i+1 >= len(words) {
				return fmt.Errorf("%s: missing AC magnitude", fields[0])
			}
			mag, err := units.Parse(words[i+1])
			if err != nil {
				return fmt.Errorf("%s: AC magnitude: %w", fields[0], err)
			}
			phase := 0.0
			consumed := 2
			if i+2 < len(words) {
				if p, err := units.Parse(words[i+2]); err == nil {
					phase = p
					consumed = 3
				}
			}
			inst.HasACMag = true
			inst.ACMag = mag
			inst.ACPhase = phase
			i += consumed

		default:
			return fmt.Errorf("%s: unrecognized source token %q", fields[0], words[i])
		}
	}

	ckt.AddInstance(inst)
	return nil
}

// parenBody collects the whitespace-delimited tokens between a "(" at
// words[start] and its matching ")", returning the inner tokens and the
// total word count consumed including both parens.
func parenBody(words []string, start int) (body []string, consumed int, err error) {
	if start >= len(words) {
		return nil, 0, fmt.Errorf("missing parameter list")
	}
	if words[start] != "(" {
		return nil, 0, fmt.Errorf("expected '(' got %q", words[start])
	}
	end := start + 1
	for end < len(words) && words[end] != ")" {
		body = append(body, words[end])
		end++
	}
	if end >= len(words) {
		return nil, 0, fmt.Errorf("unterminated parameter list")
	}
	return body, end - start + 1, nil
}
