// Package params parses shell-style parameter lists: white-space
// separated words where single quotes protect text verbatim, double
// quotes protect text while still expanding backslash escapes, and
// unquoted text expands escapes in place. Adjacent quoted and unquoted
// parts concatenate into one parameter.
package params

import (
	"strings"

	"github.com/hypersoft/nanostarbox/scanner"
	"github.com/hypersoft/nanostarbox/text"
)

const (
	singleQuote rune = '\''
	doubleQuote rune = '"'
)

// boundary ends an unquoted part: white space or the start of a quoted
// part.
var boundary = text.AllWhiteSpace.Union(text.Map(`'"`))

// A List parses every parameter remaining in its scanner's input.
// Successful completion commits the scanner's history.
type List struct {
	scanner.Parser
	scanner.NewFuturePromise
	Values []string
}

// NewList binds a parameter-list parser to the scanner.
func NewList(s *scanner.Scanner) *List {
	return &List{Parser: scanner.NewParser(s)}
}

// Start consumes parameters separated by white space until the input
// is exhausted.
func (p *List) Start() error {
	s := p.Scanner()
	for {
		s.ScanAllWhiteSpace()
		if !s.HaveNext() {
			break
		}
		value, err := p.parameter(s)
		if err != nil {
			return err
		}
		p.Values = append(p.Values, value)
	}
	p.Finish()
	return nil
}

// parameter assembles one parameter from adjacent quoted and unquoted
// parts.
func (p *List) parameter(s *scanner.Scanner) (string, error) {
	var sb strings.Builder
	for s.HaveNext() {
		c := s.Next()
		switch {
		case text.AllWhiteSpace.Contains(c):
			s.Back()
			return sb.String(), nil
		case c == singleQuote:
			part := s.NextField(text.Map(string(singleQuote)))
			if _, err := s.NextCharacter(singleQuote, true); err != nil {
				return "", s.SyntaxError("Expected closing quotation mark for single quoted text and located end of text stream")
			}
			sb.WriteString(part)
		case c == doubleQuote:
			part, err := s.NextBoundField(text.Map(string(doubleQuote)))
			if err != nil {
				return "", err
			}
			if _, err := s.NextCharacter(doubleQuote, true); err != nil {
				return "", s.SyntaxError("Expected closing quotation mark for double quoted text and located end of text stream")
			}
			sb.WriteString(part)
		default:
			s.Back()
			part, err := s.NextBoundField(boundary)
			if err != nil {
				return "", err
			}
			sb.WriteString(part)
		}
	}
	return sb.String(), nil
}

// Split parses input into parameters. The label names the source in
// error messages.
func Split(label, input string) ([]string, error) {
	parsed, err := scanner.Parse(NewList, scanner.ForString(label, input))
	if err != nil {
		return nil, err
	}
	return parsed.Values, nil
}
