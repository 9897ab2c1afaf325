// Package scanner implements a stateful character scanner with precise
// position tracking, rewindable history, transactional backtracking,
// backslash escape expansion, and a recursive-descent parser framework
// layered on top.
//
// A Scanner owns one character Source for its lifetime and is driven by
// one logical call chain at a time. Grammar-level mismatches travel as
// *SyntaxError values; defects in parser or method implementations are
// raised as *ContractError panics.
package scanner

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hypersoft/nanostarbox/text"
)

// An Expander resolves the character following a backslash into its
// expansion. Returning ok=false defers to the next expander in line.
type Expander func(s *Scanner, c rune) (expansion string, ok bool)

// identityExpander is the default fallback: the character stands for
// itself.
func identityExpander(_ *Scanner, c rune) (string, bool) {
	return string(c), true
}

// An Option configures a Scanner at construction.
type Option func(*Scanner)

// WithExpander installs a custom escape expander consulted before the
// built-in escape table.
func WithExpander(x Expander) Option {
	return func(s *Scanner) { s.expander = x }
}

// WithFallbackExpander replaces the expander of last resort used for
// escape characters the built-in table does not recognize.
func WithFallbackExpander(x Expander) Option {
	return func(s *Scanner) { s.fallback = x }
}

// WithTranslations installs per-character labels used when rendering
// characters in error messages.
func WithTranslations(t map[rune]string) Option {
	return func(s *Scanner) {
		for c, label := range t {
			s.translations[c] = label
		}
	}
}

// Scanner is a forward-reading cursor over a character stream with
// bounded backtracking. It is scoped to one logical input and carries
// a human-readable path used in every error message.
type Scanner struct {
	source       Source
	state        *state
	translations map[rune]string
	expander     Expander
	fallback     Expander
	err          error
}

// New builds a Scanner over src. The path labels the input in error
// messages; it does not have to name a real file.
func New(path string, src Source, opts ...Option) *Scanner {
	s := &Scanner{
		source:       src,
		state:        newState(path),
		translations: make(map[rune]string),
		fallback:     identityExpander,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForString builds a Scanner over an in-memory string.
func ForString(path, input string, opts ...Option) *Scanner {
	return New(path, NewStringSource(input), opts...)
}

// ForReader builds a Scanner over an arbitrary reader.
func ForReader(path string, r io.Reader, opts ...Option) *Scanner {
	return New(path, NewReaderSource(r), opts...)
}

// Open builds a Scanner over the named file. Close releases the file.
func Open(path string, opts ...Option) (*Scanner, error) {
	src, err := openFileSource(path)
	if err != nil {
		return nil, err
	}
	return New(path, src, opts...), nil
}

// Close releases the underlying source when it is closeable.
func (s *Scanner) Close() error {
	if closer, ok := s.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Err returns the sticky transport fault, if a source read failed.
// A transport fault ends the stream; it is not a syntax error.
func (s *Scanner) Err() error { return s.err }

// Path returns the scanner's connotation of where the stream
// originates.
func (s *Scanner) Path() string { return s.state.path }

// Index returns the number of characters consumed so far.
func (s *Scanner) Index() int64 { return s.state.index }

// Line returns the 1-based line number at the current position.
func (s *Scanner) Line() int64 { return s.state.line }

// Column returns the column within the current line.
func (s *Scanner) Column() int64 { return s.state.column }

// Current returns the most recently consumed character.
func (s *Scanner) Current() rune { return s.state.current() }

// Bookmark captures the current position.
func (s *Scanner) Bookmark() Bookmark { return s.state.bookmark() }

// NextBookmark captures the position the next character will be read
// at, by reading it and stepping back: a future claim.
func (s *Scanner) NextBookmark() Bookmark {
	if c := s.Next(); c == 0 && s.EndOfSource() {
		return s.Bookmark()
	}
	b := s.Bookmark()
	s.Back()
	return b
}

// Claim renders the current position the way syntax errors do.
func (s *Scanner) Claim() string { return s.Bookmark().String() }

// NextCharacterClaim renders the position the next character will be
// read at.
func (s *Scanner) NextCharacterClaim() string { return s.NextBookmark().String() }

// BackSlashMode reports that the previous character was an unresolved
// backslash.
func (s *Scanner) BackSlashMode() bool { return s.state.slashing }

// EscapeMode reports that the current character is the target of a
// backslash escape.
func (s *Scanner) EscapeMode() bool { return s.state.escaped }

// HistoryLength returns the size of the replay buffer.
func (s *Scanner) HistoryLength() int { return s.state.historyLength() }

// FlushHistory drops consumed history. Call it once the current
// position will never be backtracked past, or history grows without
// bound on large inputs.
func (s *Scanner) FlushHistory() { s.state.clearHistory() }

// TrimHistory discards the oldest history entries until at most size
// remain.
func (s *Scanner) TrimHistory(size int) { s.state.trimHistoryLength(size) }

// HaveNext reports whether Next can produce a character. When the
// replay buffer is empty this pre-reads one character from the source
// and steps back over it.
func (s *Scanner) HaveNext() bool {
	if s.state.haveNext() {
		return true
	}
	if s.state.eof {
		return false
	}
	c, eof, err := s.source.ReadCharacter()
	if err != nil {
		s.fault(err)
		return false
	}
	if eof || c == 0 {
		s.state.eof = true
		return false
	}
	s.state.recordCharacter(c)
	s.state.stepBackward()
	return true
}

// EndOfSource reports true only when the stream is exhausted and no
// buffered character remains to replay.
func (s *Scanner) EndOfSource() bool {
	return s.state.eof && !s.state.haveNext()
}

// Next returns the next character, or the 0 sentinel at end of
// stream. At end of stream the position does not advance, so repeated
// calls are idempotent.
func (s *Scanner) Next() rune {
	if s.state.haveNext() {
		return s.state.next()
	}
	if s.state.eof {
		return 0
	}
	c, eof, err := s.source.ReadCharacter()
	if err != nil {
		s.fault(err)
		return 0
	}
	if eof || c == 0 {
		s.state.eof = true
		return 0
	}
	s.state.recordCharacter(c)
	return c
}

// Back un-reads one character. Stepping back with no history is a
// caller bug and panics with a ContractError.
func (s *Scanner) Back() { s.state.stepBackward() }

// WalkBack rewinds the scanner to the given index, which must lie
// within the replay buffer.
func (s *Scanner) WalkBack(to int64) {
	if to > s.state.index {
		contractViolation("cannot walk back to index %d: scanner is at index %d", to, s.state.index)
	}
	for s.state.index != to {
		s.state.stepBackward()
	}
}

// fault records a transport failure and ends the stream.
func (s *Scanner) fault(err error) {
	if s.err == nil {
		s.err = fmt.Errorf("reading %s: %w", s.state.path, err)
	}
	s.state.eof = true
}

// MapCharacterTranslation configures the label used when displaying c
// in this scanner's error messages.
func (s *Scanner) MapCharacterTranslation(c rune, label string) string {
	s.translations[c] = label
	return label
}

// TranslateCharacter returns a user-displayable rendition of c,
// honoring this scanner's overrides before the package defaults.
func (s *Scanner) TranslateCharacter(c rune) string {
	if c == 0 {
		return "null"
	}
	if label, ok := s.translations[c]; ok {
		return label
	}
	return text.Translate(c)
}

// SyntaxError builds a syntax error carrying the given message and the
// scanner's current position.
func (s *Scanner) SyntaxError(message string) *SyntaxError {
	return &SyntaxError{Message: message, Location: s.Bookmark()}
}

func (s *Scanner) syntaxErrorCause(message string, cause error) *SyntaxError {
	return &SyntaxError{Message: message, Location: s.Bookmark(), Cause: cause}
}

// NextCharacter consumes one character and requires it to match the
// given one, optionally ignoring case. The character read is returned
// as it appeared in the stream.
func (s *Scanner) NextCharacter(character rune, caseSensitive bool) (rune, error) {
	return s.nextLabeledCharacter(s.TranslateCharacter(character), character, caseSensitive)
}

func (s *Scanner) nextLabeledCharacter(label string, character rune, caseSensitive bool) (rune, error) {
	c := s.Next()
	if c == 0 {
		return 0, s.SyntaxError("Expected " + label + " and located end of text stream")
	}
	have, want := c, character
	if !caseSensitive {
		have = unicode.ToLower(have)
		want = unicode.ToLower(want)
	}
	if have != want {
		return 0, s.SyntaxError("Expected " + label + " and located `" + s.TranslateCharacter(c) + "'")
	}
	return c, nil
}

// NextString consumes characters matching seek one at a time, failing
// on the first mismatch. The stream is left positioned at the
// mismatch; partial consumption is intentional.
func (s *Scanner) NextString(seek string, caseSensitive bool) (string, error) {
	var sb strings.Builder
	for _, c := range seek {
		got, err := s.nextLabeledCharacter(seek, c, caseSensitive)
		if err != nil {
			return "", err
		}
		sb.WriteRune(got)
	}
	return sb.String(), nil
}

// NextOptionalSequence attempts to match seek from the current
// position. On failure the scanner rewinds to where it started and an
// empty string is returned instead of an error.
func (s *Scanner) NextOptionalSequence(seek string, caseSensitive bool) string {
	start := s.Index()
	match := s.NextOptionalLength(len([]rune(seek)))
	test, want := match, seek
	if !caseSensitive {
		test = strings.ToLower(test)
		want = strings.ToLower(want)
	}
	if test != want {
		s.WalkBack(start)
		return ""
	}
	return match
}

// NextMap greedily consumes characters belonging to the map. The first
// non-matching character is pushed back.
func (s *Scanner) NextMap(chars text.Map) string {
	return s.NextMapLength(-1, chars)
}

// NextMapLength is NextMap bounded to at most max characters. A
// negative max means unbounded.
func (s *Scanner) NextMapLength(max int, chars text.Map) string {
	var sb strings.Builder
	for max < 0 || sb.Len() < max {
		c := s.Next()
		if c == 0 && s.EndOfSource() {
			break
		}
		if !chars.Contains(c) {
			s.Back()
			break
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// NextField consumes characters while they are not in the map: the
// inverse of NextMap. The boundary character is pushed back.
func (s *Scanner) NextField(chars text.Map) string {
	return s.NextFieldLength(-1, chars)
}

// NextFieldLength is NextField bounded to at most max characters. A
// negative max means unbounded.
func (s *Scanner) NextFieldLength(max int, chars text.Map) string {
	var sb strings.Builder
	for max < 0 || sb.Len() < max {
		c := s.Next()
		if c == 0 && s.EndOfSource() {
			break
		}
		if chars.Contains(c) {
			s.Back()
			break
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// ScanAllWhiteSpace consumes any run of white space.
func (s *Scanner) ScanAllWhiteSpace() string {
	return s.NextMap(text.AllWhiteSpace)
}

// ScanLineWhiteSpace consumes white space that does not end lines.
func (s *Scanner) ScanLineWhiteSpace() string {
	return s.NextMap(text.LineWhiteSpace)
}

// NextBoundField consumes characters until one in the map appears,
// expanding backslash escape sequences inline. End of stream is an
// implicit field boundary, unless an escape sequence was left
// incomplete, which is a syntax error.
func (s *Scanner) NextBoundField(chars text.Map) (string, error) {
	var sb strings.Builder
	for s.HaveNext() {
		c := s.Next()
		if c == text.Backslash && !s.EscapeMode() {
			continue
		}
		if s.EscapeMode() {
			swap, err := s.Expand(c)
			if err != nil {
				return "", err
			}
			sb.WriteString(swap)
			continue
		}
		if chars.Contains(c) {
			s.Back()
			break
		}
		sb.WriteRune(c)
	}
	if s.BackSlashMode() {
		return "", s.SyntaxError("expected character escape sequence, found end of stream")
	}
	return sb.String(), nil
}

// NextSequence scans forward accumulating characters until the literal
// sequence appears at the tail of what was read, returning everything
// before it. With detectEscape set, a backslash directly before the
// sequence head consumes the head as data and re-arms the match.
// Running out of input before a match is a syntax error.
func (s *Scanner) NextSequence(sequence string, caseSensitive, detectEscape bool) (string, error) {
	search := []rune(sequence)
	if !caseSensitive {
		search = []rune(strings.ToLower(sequence))
	}
	if len(search) == 0 {
		return "", nil
	}
	var collected []rune
	matchIndex := 0
	for {
		c := s.Next()
		if c == 0 {
			return "", s.SyntaxError("Expected `" + sequence + "' and found end of text stream")
		}
		collected = append(collected, c)
		find := c
		if !caseSensitive {
			find = unicode.ToLower(c)
		}
		if find == search[matchIndex] {
			if detectEscape && matchIndex == 0 && s.EscapeMode() {
				// escaped delimiter head: absorbed as data
			} else {
				matchIndex++
			}
		} else {
			matchIndex = 0
		}
		if matchIndex == len(search) {
			break
		}
	}
	return string(collected[:len(collected)-len(search)]), nil
}

// NextLength reads exactly n characters, failing with a bounds error
// when the stream runs short.
func (s *Scanner) NextLength(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	out := make([]rune, 0, n)
	for len(out) < n {
		c := s.Next()
		if c == 0 && s.EndOfSource() {
			return "", s.SyntaxError("Substring bounds error")
		}
		out = append(out, c)
	}
	return string(out), nil
}

// NextOptionalLength reads up to n characters, returning a truncated
// result at end of stream instead of failing.
func (s *Scanner) NextOptionalLength(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, 0, n)
	for len(out) < n {
		c := s.Next()
		if c == 0 && s.EndOfSource() {
			break
		}
		out = append(out, c)
	}
	return string(out)
}

// FlagNextCharacterSyntaxError requires the next character to belong
// to the map, describing the expected content with the given message.
// The stream position is maintained when no error occurs.
func (s *Scanner) FlagNextCharacterSyntaxError(message string, chars text.Map) error {
	c := s.Next()
	if !chars.Contains(c) {
		return s.SyntaxError("Expected " + message + " and located `" + s.TranslateCharacter(c) + "'")
	}
	s.Back()
	return nil
}

// Expand performs backslash escape expansion for the character that
// followed a backslash. A configured expander is consulted first; the
// built-in table covers the canonical escape letters and the numeric
// forms; anything else falls through to the fallback expander.
func (s *Scanner) Expand(c rune) (string, error) {
	if s.expander != nil {
		if expansion, ok := s.expander(s, c); ok {
			return expansion, nil
		}
	}
	switch c {
	case 'd':
		return string(text.Delete), nil
	case 'e':
		return string(text.Escape), nil
	case 't':
		return "\t", nil
	case 'b':
		return "\b", nil
	case 'v':
		return string(text.VerticalTab), nil
	case 'r':
		return "\r", nil
	case 'n':
		return "\n", nil
	case 'f':
		return "\f", nil
	case 'u':
		return s.expandHex(s.NextMapLength(4, text.Hex))
	case '0':
		next := s.Next()
		if next == 'x' {
			return s.expandHex(s.NextMapLength(4, text.Hex))
		}
		if !(next == 0 && s.EndOfSource()) {
			s.Back()
		}
		digits := "0" + s.NextMapLength(3, text.Octal)
		value, err := strconv.ParseUint(digits, 8, 32)
		if err != nil {
			return "", s.syntaxErrorCause("Illegal escape", err)
		}
		if value > 255 {
			return "", s.SyntaxError(fmt.Sprintf("octal escape subscript out of range; expected 00-0377; have: %d", value))
		}
		return string(rune(value)), nil
	}
	if text.Numbers.Contains(c) {
		digits := string(c) + s.NextMapLength(2, text.Numbers)
		value, err := strconv.Atoi(digits)
		if err != nil {
			return "", s.syntaxErrorCause("Illegal escape", err)
		}
		if value > 255 {
			return "", s.SyntaxError(fmt.Sprintf("integer escape subscript out of range; expected 0-255; have: %d", value))
		}
		return string(rune(value)), nil
	}
	if expansion, ok := s.fallback(s, c); ok {
		return expansion, nil
	}
	return string(c), nil
}

func (s *Scanner) expandHex(digits string) (string, error) {
	value, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return "", s.syntaxErrorCause("Illegal escape", err)
	}
	return string(rune(value)), nil
}
