// Package grammar provides lexical scanning based on EBNF grammars,
// driven over a backtracking scanner. Productions whose names start
// with an uppercase letter are treated as tokens; the longest match
// wins. Trial matches consume characters and walk the scanner back, so
// lookahead is bounded only by the scanner's history.
package grammar

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/hypersoft/nanostarbox/scanner"
)

// Token represents a lexical token with the position it started at.
type Token struct {
	Kind     string
	Literal  string
	Location scanner.Bookmark
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%d:%d %s %q", t.Location.Path, t.Location.Line, t.Location.Column, t.Kind, t.Literal)
}

// memoKey memoizes match results per production and stream index.
type memoKey struct {
	name  string
	index int64
}

// Lexer tokenizes a scanner's input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	scanner  *scanner.Scanner
	memo     map[memoKey]int
	visiting map[memoKey]bool
}

// NewLexer creates a lexer for the given grammar over the scanner.
func NewLexer(grammar ebnf.Grammar, s *scanner.Scanner) *Lexer {
	return &Lexer{
		grammar:  grammar,
		scanner:  s,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// NextToken returns the next token from the input. Tokens the grammar
// cannot account for are emitted one character at a time with kind
// ERROR. Committed tokens flush the scanner's history.
func (l *Lexer) NextToken() (Token, error) {
	if !l.scanner.HaveNext() {
		return Token{Kind: "EOF", Location: l.scanner.Bookmark()}, io.EOF
	}

	start := l.scanner.Index()
	location := l.scanner.NextBookmark()

	// match lengths are position dependent; start every token fresh
	l.memo = make(map[memoKey]int)

	var bestKind string
	bestLen := 0

	for name, prod := range l.grammar {
		if prod.Expr == nil {
			continue
		}
		if len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
			continue
		}

		l.visiting = make(map[memoKey]bool)
		matchLen := l.tryMatch(prod.Expr)
		l.scanner.WalkBack(start)
		if matchLen > bestLen {
			bestLen = matchLen
			bestKind = name
		}
	}

	if bestLen == 0 {
		c := l.scanner.Next()
		l.scanner.FlushHistory()
		return Token{
			Kind:     "ERROR",
			Literal:  string(c),
			Location: location,
		}, nil
	}

	literal := l.scanner.NextOptionalLength(bestLen)
	l.scanner.FlushHistory()

	return Token{
		Kind:     bestKind,
		Literal:  literal,
		Location: location,
	}, nil
}

// tryMatch attempts to match an expression at the scanner's current
// position, consuming what it matches. On failure it restores the
// position it was called at and returns -1.
func (l *Lexer) tryMatch(expr ebnf.Expression) int {
	start := l.scanner.Index()
	switch e := expr.(type) {
	case *ebnf.Token:
		literal := strings.Trim(e.String, "\"")
		if literal == "" {
			return 0
		}
		if l.scanner.NextOptionalSequence(literal, true) == "" {
			return -1
		}
		return len([]rune(literal))

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := l.tryMatch(item)
			if n < 0 {
				l.scanner.WalkBack(start)
				return -1
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		var bestExpr ebnf.Expression
		for _, alt := range e {
			n := l.tryMatch(alt)
			if n >= 0 {
				l.scanner.WalkBack(start)
				if n > best {
					best = n
					bestExpr = alt
				}
			}
		}
		if best < 0 {
			return -1
		}
		// replay the winning alternative to consume it
		return l.tryMatch(bestExpr)

	case *ebnf.Repetition:
		total := 0
		for {
			n := l.tryMatch(e.Body)
			if n < 0 {
				break
			}
			if n == 0 {
				// zero-width body would repeat forever
				break
			}
			total += n
		}
		return total

	case *ebnf.Option:
		n := l.tryMatch(e.Body)
		if n < 0 {
			return 0
		}
		return n

	case *ebnf.Group:
		return l.tryMatch(e.Body)

	case *ebnf.Name:
		return l.tryMatchName(e.String)

	default:
		return -1
	}
}

// tryMatchRange matches one character within an inclusive range.
func (l *Lexer) tryMatchRange(begin, end string) int {
	first := []rune(strings.Trim(begin, "\""))
	last := []rune(strings.Trim(end, "\""))
	if len(first) != 1 || len(last) != 1 {
		return -1
	}
	if !l.scanner.HaveNext() {
		return -1
	}
	c := l.scanner.Next()
	if c >= first[0] && c <= last[0] {
		return 1
	}
	l.scanner.Back()
	return -1
}

// tryMatchName matches a named production with memoization and cycle
// detection.
func (l *Lexer) tryMatchName(name string) int {
	key := memoKey{name: name, index: l.scanner.Index()}

	if result, ok := l.memo[key]; ok {
		if result < 0 {
			return -1
		}
		// consume the memoized span
		l.scanner.NextOptionalLength(result)
		return result
	}

	// break left-recursive cycles
	if l.visiting[key] {
		return -1
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return -1
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr)
	delete(l.visiting, key)

	l.memo[key] = result
	return result
}

// Tokenize reads all tokens from the input.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
