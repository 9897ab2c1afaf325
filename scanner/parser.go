package scanner

import (
	"errors"
	"fmt"
)

// Status is the outcome of a parser.
type Status int

const (
	// OK marks a parser that constructed successfully and has not
	// failed.
	OK Status = iota
	// Failed marks a parser cancelled by its own logic or constructed
	// at end of source.
	Failed
)

// Parser is the embeddable base of a recursive-descent unit bound to
// one Scanner. It owns no characters: it records only its start
// offset, its end offset once finished, its status, and an origin
// bookmark for error reporting.
//
// Concrete parsers embed Parser, implement Start, and end every
// successful Start with exactly one call to Finish. Parsers are run
// through Parse, which enforces the completion protocol.
type Parser struct {
	scanner  *Scanner
	status   Status
	start    int64
	end      int64
	finished bool
	origin   Bookmark
}

// NewParser binds a parser base to the scanner. Construction fails
// closed: at end of source the parser is marked Failed and the scanner
// is left untouched.
func NewParser(s *Scanner) Parser {
	if s.EndOfSource() {
		return Parser{scanner: s, status: Failed}
	}
	return Parser{
		scanner: s,
		status:  OK,
		start:   s.Index(),
		origin:  s.NextBookmark(),
	}
}

// Task is what a concrete parser provides: its grammar in Start, which
// returns nil after calling Finish, or a *SyntaxError describing why
// the input did not fit. Embedding Parser supplies the rest.
type Task interface {
	Start() error
	header() *Parser
}

func (p *Parser) header() *Parser { return p }

// Scanner returns the scanner this parser reads from.
func (p *Parser) Scanner() *Scanner { return p.scanner }

// Successful reports whether the parser has not failed.
func (p *Parser) Successful() bool { return p.status == OK }

// Finished reports whether Finish was called.
func (p *Parser) Finished() bool { return p.finished }

// StartOffset returns the scanner index the parser began at.
func (p *Parser) StartOffset() int64 { return p.start }

// EndOffset returns the scanner index recorded by Finish, 0 until the
// parser finishes.
func (p *Parser) EndOffset() int64 { return p.end }

// Origin returns the bookmark captured at construction.
func (p *Parser) Origin() Bookmark { return p.origin }

// Length returns the number of characters this parse spans so far.
func (p *Parser) Length() int64 {
	start := max(p.start, 0)
	if p.end == 0 {
		return p.scanner.Index() - start
	}
	return p.end - start
}

// Finish records the parser's end at the scanner's current index.
// Every Start must call it exactly once; calling it twice is a defect.
func (p *Parser) Finish() {
	if p.finished {
		contractViolation("parsing already finished (code optimization bug)")
	}
	p.end = p.scanner.Index()
	p.finished = true
}

// Cancel rewinds the scanner to the parser's start and marks the
// parser Failed, so a sibling parser may try the same span. It returns
// a bookmark of the position the scanner had before rewinding, which
// is where the trouble was found.
func (p *Parser) Cancel() Bookmark {
	mark := p.scanner.Bookmark()
	p.end = p.start
	p.scanner.WalkBack(p.start)
	p.status = Failed
	return mark
}

// SyntaxError builds a syntax error at the position the parser has
// reached, cancelling the parse as a side effect: the scanner rewinds
// to the parser's start so an alternative can be tried.
func (p *Parser) SyntaxError(message string) *SyntaxError {
	return &SyntaxError{Message: message, Location: p.Cancel()}
}

// NewFuturePromise marks a parser whose successful completion flushes
// the scanner's backtracking history, letting composed grammars commit
// memory incrementally. Embed it alongside Parser.
type NewFuturePromise struct{}

func (NewFuturePromise) promisesNewFuture() {}

type futurePromise interface{ promisesNewFuture() }

// List is an ordered collection of parsed results, for grammars with
// elliptical (repeating) content.
type List[T Task] []T

// Parse constructs a parser over the scanner and runs it under the
// completion protocol:
//
//   - A parser constructed at end of source is returned as-is, Failed,
//     without Start being attempted.
//   - A *SyntaxError from Start is re-tagged with the parser's type,
//     positioned where the trouble was found, and the scanner rewinds
//     to the parser's start. Other errors (transport faults) pass
//     through untouched.
//   - A parser that returns success without calling Finish, or whose
//     recorded end disagrees with the scanner's position, is a defect:
//     Parse panics with a ContractError.
//   - A parser marked with NewFuturePromise flushes scanner history on
//     success.
func Parse[T Task](construct func(*Scanner) T, s *Scanner) (T, error) {
	parser := construct(s)
	base := parser.header()
	if !base.Successful() {
		return parser, nil
	}
	if err := parser.Start(); err != nil {
		var syntax *SyntaxError
		if !errors.As(err, &syntax) {
			return parser, err
		}
		location := syntax.Location
		if base.Successful() {
			// the parser bailed without cancelling; rewind for it
			location = base.Cancel()
		}
		return parser, &SyntaxError{
			Tag:      fmt.Sprintf("%T", parser),
			Message:  syntax.Message,
			Location: location,
			Cause:    syntax.Cause,
		}
	}
	if !base.finished {
		contractViolation("%T: parser must call finish before it exits (parser quality assurance bug)", parser)
	}
	if base.end != s.Index() {
		contractViolation("%T: parser did not synchronize its end result with the scanner state (parser quality assurance bug)", parser)
	}
	if _, ok := any(parser).(futurePromise); ok {
		s.FlushHistory()
	}
	return parser, nil
}
