package scanner

import "fmt"

// A Bookmark is an immutable snapshot of a scanner position, used for
// error reporting and for diffing against the scanner's live position.
type Bookmark struct {
	Path   string
	Index  int64
	Line   int64
	Column int64
}

func (b Bookmark) String() string {
	return fmt.Sprintf("at location = {line: %d, column: %d, index: %d, source: '%s'}",
		b.Line, b.Column, b.Index, b.Path)
}

// A SyntaxError reports malformed input: a literal that did not match,
// an unterminated sequence, an illegal escape, or a bounds shortfall.
// It always carries the position the problem was detected at.
//
// Syntax errors are the recoverable error channel: a caller may catch
// one from a sub-parse and try an alternative. Defects in parser
// implementations are reported through ContractError instead.
type SyntaxError struct {
	// Tag names the parser the error originated from, when the error
	// was raised through the parser framework. Empty for scanner-level
	// errors.
	Tag      string
	Message  string
	Location Bookmark
	Cause    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:\n\n   %s", e.Message, e.Location)
}

func (e *SyntaxError) Unwrap() error { return e.Cause }

// A ContractError reports a defect in a Scanner, Method, or Parser
// implementation: a double-acquired lock, a parser that never calls
// Finish, a finished parser out of sync with the scanner. These are
// bugs in the grammar author's code, not in the input, so they are
// raised with panic rather than returned.
type ContractError struct {
	Message string
}

func (e *ContractError) Error() string { return e.Message }

func contractViolation(format string, args ...any) {
	panic(&ContractError{Message: fmt.Sprintf(format, args...)})
}
