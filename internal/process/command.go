package process

import (
	"fmt"
	"strings"
)

// splitArgs splits a launch target into argv. Single and double quotes
// group words, and a backslash takes the next character literally both
// inside and outside quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		word    strings.Builder
		quote   rune
		escaped bool
	)
	flush := func() {
		if word.Len() > 0 {
			args = append(args, word.String())
			word.Reset()
		}
	}

	for _, r := range strings.TrimSpace(line) {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			word.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in launch target", quote)
	}
	if escaped {
		word.WriteRune('\\')
	}
	flush()
	return args, nil
}

// QuoteArg quotes s so splitArgs yields it back as a single argument.
func QuoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t'\"\\") {
		return s
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
