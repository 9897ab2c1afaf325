package scanner

import (
	"errors"
	"strings"
	"testing"

	"github.com/hypersoft/nanostarbox/text"
)

// wordParser consumes one white-space delimited word.
type wordParser struct {
	Parser
	Word string
}

func newWordParser(s *Scanner) *wordParser {
	return &wordParser{Parser: NewParser(s)}
}

func (p *wordParser) Start() error {
	p.Word = p.Scanner().NextField(text.AllWhiteSpace)
	p.Finish()
	return nil
}

// numberParser requires a run of digits and demonstrates failure.
type numberParser struct {
	Parser
	Value string
}

func newNumberParser(s *Scanner) *numberParser {
	return &numberParser{Parser: NewParser(s)}
}

func (p *numberParser) Start() error {
	p.Value = p.Scanner().NextMap(text.Numbers)
	if p.Value == "" {
		return p.SyntaxError("Expected a number")
	}
	p.Finish()
	return nil
}

// committedWordParser flushes scanner history on success.
type committedWordParser struct {
	Parser
	NewFuturePromise
	Word string
}

func newCommittedWordParser(s *Scanner) *committedWordParser {
	return &committedWordParser{Parser: NewParser(s)}
}

func (p *committedWordParser) Start() error {
	p.Word = p.Scanner().NextField(text.AllWhiteSpace)
	p.Finish()
	return nil
}

func TestParseWord(t *testing.T) {
	s := ForString("test", "alpha beta")

	parsed, err := Parse(newWordParser, s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Word != "alpha" {
		t.Errorf("Word = %q, want %q", parsed.Word, "alpha")
	}
	if !parsed.Finished() {
		t.Error("Finished = false, want true")
	}
	if parsed.EndOffset() != s.Index() {
		t.Errorf("EndOffset = %d, scanner at %d", parsed.EndOffset(), s.Index())
	}
	if parsed.Length() != 5 {
		t.Errorf("Length = %d, want 5", parsed.Length())
	}
	if parsed.Origin().Index != 1 {
		t.Errorf("Origin.Index = %d, want 1", parsed.Origin().Index)
	}
}

func TestParseChildParsers(t *testing.T) {
	s := ForString("test", "one two three")

	var words []string
	for {
		parsed, err := Parse(newWordParser, s)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !parsed.Successful() {
			break
		}
		words = append(words, parsed.Word)
		s.ScanAllWhiteSpace()
		if s.EndOfSource() {
			break
		}
	}
	if got := strings.Join(words, ","); got != "one,two,three" {
		t.Errorf("words = %q", got)
	}
}

func TestParseConstructionAtEndOfSource(t *testing.T) {
	s := ForString("test", "")
	s.Next() // trip the end flag

	parsed, err := Parse(newWordParser, s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Successful() {
		t.Error("Successful = true, want false")
	}
	if parsed.Finished() {
		t.Error("Finished = true: Start must not run for a failed construction")
	}
}

func TestParseSyntaxErrorRewindsAndTags(t *testing.T) {
	s := ForString("test", "abc")
	s.Next() // start the parser mid-stream

	parsed, err := Parse(newNumberParser, s)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("err = %T, want *SyntaxError", err)
	}
	if !strings.Contains(syntax.Tag, "numberParser") {
		t.Errorf("Tag = %q, want the parser type", syntax.Tag)
	}
	if !strings.Contains(err.Error(), "Expected a number") {
		t.Errorf("message = %q", err.Error())
	}
	if parsed.Successful() {
		t.Error("Successful = true, want false")
	}
	// the scanner rewound to the parser's start for a sibling to try
	if s.Index() != 1 {
		t.Errorf("Index = %d, want 1", s.Index())
	}
}

func TestParseAlternativeAfterCancel(t *testing.T) {
	s := ForString("test", "word")

	if _, err := Parse(newNumberParser, s); err == nil {
		t.Fatal("expected the number alternative to fail")
	}
	parsed, err := Parse(newWordParser, s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Word != "word" {
		t.Errorf("Word = %q, want %q", parsed.Word, "word")
	}
}

func TestParseScannerLevelErrorIsWrapped(t *testing.T) {
	s := ForString("test", "xyz")
	parsed, err := Parse(newLiteralParser, s)
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("err = %T, want *SyntaxError", err)
	}
	if parsed.Successful() {
		t.Error("parser left successful after a wrapped scanner fault")
	}
	if s.Index() != 0 {
		t.Errorf("Index = %d, want a full rewind to 0", s.Index())
	}
}

// literalParser propagates a scanner-level error without cancelling,
// leaving the framework to rewind on its behalf.
type literalParser struct {
	Parser
}

func newLiteralParser(s *Scanner) *literalParser {
	return &literalParser{Parser: NewParser(s)}
}

func (p *literalParser) Start() error {
	if _, err := p.Scanner().NextString("expected", true); err != nil {
		return err
	}
	p.Finish()
	return nil
}

// truantParser never calls Finish.
type truantParser struct {
	Parser
}

func newTruantParser(s *Scanner) *truantParser {
	return &truantParser{Parser: NewParser(s)}
}

func (p *truantParser) Start() error {
	p.Scanner().Next()
	return nil
}

func TestParseMissingFinishPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(*ContractError)
		if !ok {
			t.Fatal("expected a ContractError panic")
		}
		if !strings.Contains(err.Error(), "must call finish") {
			t.Errorf("message = %q", err.Error())
		}
	}()
	Parse(newTruantParser, ForString("test", "abc"))
}

// desyncParser finishes and then keeps reading, breaking the
// synchronization invariant.
type desyncParser struct {
	Parser
}

func newDesyncParser(s *Scanner) *desyncParser {
	return &desyncParser{Parser: NewParser(s)}
}

func (p *desyncParser) Start() error {
	p.Scanner().Next()
	p.Finish()
	p.Scanner().Next()
	return nil
}

func TestParseDesynchronizationPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(*ContractError)
		if !ok {
			t.Fatal("expected a ContractError panic")
		}
		if !strings.Contains(err.Error(), "synchronize") {
			t.Errorf("message = %q", err.Error())
		}
	}()
	Parse(newDesyncParser, ForString("test", "abc"))
}

// eagerParser calls Finish twice.
type eagerParser struct {
	Parser
}

func newEagerParser(s *Scanner) *eagerParser {
	return &eagerParser{Parser: NewParser(s)}
}

func (p *eagerParser) Start() error {
	p.Scanner().Next()
	p.Finish()
	p.Finish()
	return nil
}

func TestParseDoubleFinishPanics(t *testing.T) {
	defer func() {
		err, ok := recover().(*ContractError)
		if !ok {
			t.Fatal("expected a ContractError panic")
		}
		if !strings.Contains(err.Error(), "already finished") {
			t.Errorf("message = %q", err.Error())
		}
	}()
	Parse(newEagerParser, ForString("test", "abc"))
}

func TestParseNewFuturePromiseFlushesHistory(t *testing.T) {
	s := ForString("test", "committed rest")

	if _, err := Parse(newCommittedWordParser, s); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// consumed history is gone; the pushed-back boundary survives the
	// flush as an unread tail
	if got := s.HistoryLength(); got != 1 {
		t.Errorf("HistoryLength = %d, want 1 after a promised flush", got)
	}
	if c := s.Next(); c != ' ' {
		t.Errorf("Next = %q after flush, want the pushed-back boundary", c)
	}

	s = ForString("test", "plain rest")
	if _, err := Parse(newWordParser, s); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := s.HistoryLength(); got == 0 {
		t.Error("HistoryLength = 0: an unpromised parser must not flush")
	}
}

func TestParserList(t *testing.T) {
	s := ForString("test", "a b c")
	var list List[*wordParser]
	for {
		parsed, err := Parse(newWordParser, s)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !parsed.Successful() {
			break
		}
		list = append(list, parsed)
		s.ScanAllWhiteSpace()
		if s.EndOfSource() {
			break
		}
	}
	if len(list) != 3 {
		t.Errorf("len = %d, want 3", len(list))
	}
}
