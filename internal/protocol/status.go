package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Widget targets addressed by the rendering commands.
const (
	TargetLabel     = "label.text"
	TargetOperation = "operation.text"
	TargetProgress  = "progressbar.width"

	progressSuffix = "* progressbar_background.width"
)

// Status is one progress snapshot supplied by the host.
type Status struct {
	Operation string  `json:"operation" toml:"operation"`
	Label     string  `json:"label" toml:"label"`
	Value     float64 `json:"value" toml:"value"` // percent, 0-100
}

// Fraction returns Value mapped linearly onto [0,1].
func (s Status) Fraction() float64 {
	return clampUnit(s.Value / 100.0)
}

func clampUnit(f float64) float64 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Lines renders the three assignment statements for s, in wire order and
// without trailing newlines.
func (s Status) Lines() []string {
	return []string{
		fmt.Sprintf("%s = '%s'", TargetLabel, quote(s.Label)),
		fmt.Sprintf("%s = '%s'", TargetOperation, quote(s.Operation)),
		fmt.Sprintf("%s = %s %s", TargetProgress, FormatFraction(s.Fraction()), progressSuffix),
	}
}

// FormatFraction prints f in its shortest form, always keeping a decimal
// point so the dialog evaluates it as a float.
func FormatFraction(f float64) string {
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	// Newlines would split one statement into two protocol lines.
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return quoter.Replace(s)
}

// Command is one parsed outbound statement.
type Command struct {
	Target string
	Text   string  // set for label and operation targets
	Width  float64 // set for the progress target, in [0,1]
}

// ParseCommand parses a single outbound line produced by Status.Lines.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	target, expr, ok := strings.Cut(line, "=")
	if !ok {
		return Command{}, fmt.Errorf("not an assignment: %q", line)
	}
	target = strings.TrimSpace(target)
	expr = strings.TrimSpace(expr)

	switch target {
	case TargetLabel, TargetOperation:
		text, err := unquote(expr)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", target, err)
		}
		return Command{Target: target, Text: text}, nil
	case TargetProgress:
		num, ok := strings.CutSuffix(expr, progressSuffix)
		if !ok {
			return Command{}, fmt.Errorf("%s: missing reference width", target)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", target, err)
		}
		return Command{Target: target, Width: clampUnit(f)}, nil
	default:
		return Command{}, fmt.Errorf("unknown target %q", target)
	}
}

func unquote(expr string) (string, error) {
	if len(expr) < 2 || expr[0] != '\'' || expr[len(expr)-1] != '\'' {
		return "", fmt.Errorf("expected single-quoted string, got %q", expr)
	}
	body := []rune(expr[1 : len(expr)-1])
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		r := body[i]
		if r == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
			r = body[i]
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
