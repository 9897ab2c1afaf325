package scanner

import "github.com/hypersoft/nanostarbox/text"

// An entry is one character of replay history. Alongside the character
// it keeps the position and escape flags that were in effect before
// the character was consumed, so stepping backward is an exact inverse
// of stepping forward.
type entry struct {
	c        rune
	line     int64
	column   int64
	slashing bool
	escaped  bool
}

// state is the mutable cursor of a Scanner: current position, the
// replay buffer of characters available for step-back, the end-of-
// stream flag, the escape-mode flags, and the transaction lock gate.
type state struct {
	path     string
	index    int64
	line     int64
	column   int64
	buffer   []entry
	cursor   int
	eof      bool
	slashing bool
	escaped  bool
	locked   bool
}

func newState(path string) *state {
	return &state{path: path, line: 1}
}

// clone copies the state, including the replay buffer, for use as a
// transaction backup.
func (s *state) clone() *state {
	dup := *s
	dup.buffer = append([]entry(nil), s.buffer...)
	return &dup
}

// haveNext reports whether the replay buffer holds an unread character
// ahead of the cursor, without touching the source.
func (s *state) haveNext() bool {
	return s.cursor < len(s.buffer)
}

// current returns the most recently consumed character, or 0 when
// nothing has been read yet.
func (s *state) current() rune {
	if s.cursor == 0 {
		return 0
	}
	return s.buffer[s.cursor-1].c
}

// next replays the buffered character under the cursor and advances
// the position over it.
func (s *state) next() rune {
	e := &s.buffer[s.cursor]
	e.line, e.column = s.line, s.column
	e.slashing, e.escaped = s.slashing, s.escaped
	s.cursor++
	s.consume(e.c)
	return e.c
}

// recordCharacter appends a freshly read character to the replay
// buffer and advances over it. Only valid when the buffer is
// exhausted, which is the only time the scanner pulls from its source.
func (s *state) recordCharacter(c rune) {
	s.buffer = append(s.buffer, entry{c: c})
	s.next()
}

// consume applies c to the position and the escape flags. A newline
// (\n or \r) starts a new line and resets the column; the second half
// of a \r\n pair does not count a second line.
func (s *state) consume(c rune) {
	if s.slashing {
		s.escaped = true
		s.slashing = false
	} else {
		s.escaped = false
		s.slashing = c == text.Backslash
	}
	s.index++
	switch {
	case c == text.LineFeed && s.previous() == text.CarriageReturn:
		s.column = 0
	case c == text.LineFeed || c == text.CarriageReturn:
		s.line++
		s.column = 0
	default:
		s.column++
	}
}

// previous returns the character before the one just consumed.
func (s *state) previous() rune {
	if s.cursor < 2 {
		return 0
	}
	return s.buffer[s.cursor-2].c
}

// stepBackward moves the cursor one position earlier within the
// buffer, restoring position and escape flags exactly as they were
// before the character was consumed.
func (s *state) stepBackward() {
	if s.cursor == 0 {
		contractViolation("cannot step backward: no history at index %d", s.index)
	}
	s.cursor--
	e := s.buffer[s.cursor]
	s.index--
	s.line, s.column = e.line, e.column
	s.slashing, s.escaped = e.slashing, e.escaped
}

// clearHistory discards every consumed entry, keeping any entries
// still ahead of the cursor (such as a haveNext pre-read).
func (s *state) clearHistory() {
	if s.cursor == 0 {
		return
	}
	s.buffer = append(s.buffer[:0:0], s.buffer[s.cursor:]...)
	s.cursor = 0
}

// trimHistoryLength discards the oldest entries until at most size
// remain. Trimming the region the cursor sits in is a caller bug.
func (s *state) trimHistoryLength(size int) {
	if size < 0 {
		size = 0
	}
	drop := len(s.buffer) - size
	if drop <= 0 {
		return
	}
	if s.cursor < drop {
		contractViolation("cannot trim history: cursor is inside the trimmed region")
	}
	s.buffer = append(s.buffer[:0:0], s.buffer[drop:]...)
	s.cursor -= drop
}

func (s *state) historyLength() int {
	return len(s.buffer)
}

func (s *state) bookmark() Bookmark {
	return Bookmark{Path: s.path, Index: s.index, Line: s.line, Column: s.column}
}
