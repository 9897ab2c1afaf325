package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// A Source supplies characters to a Scanner one at a time and supports
// a mark/reset pair so the scanner's transactional lock can rewind it.
type Source interface {
	// ReadCharacter returns the next character from the stream.
	// Ordinary end of stream is reported through eof, never through
	// err; err is reserved for transport failures.
	ReadCharacter() (c rune, eof bool, err error)

	// Mark records the current stream position so ResetToMark can
	// return to it. The mark stays valid for at least limit
	// characters of subsequent reading.
	Mark(limit int)

	// ResetToMark rewinds the stream to the most recent mark.
	ResetToMark() error
}

// StringSource is an in-memory Source. Marking is free: the whole
// input is addressable.
type StringSource struct {
	runes []rune
	pos   int
	mark  int
}

func NewStringSource(s string) *StringSource {
	return &StringSource{runes: []rune(s)}
}

func (s *StringSource) ReadCharacter() (rune, bool, error) {
	if s.pos >= len(s.runes) {
		return 0, true, nil
	}
	c := s.runes[s.pos]
	s.pos++
	return c, false, nil
}

func (s *StringSource) Mark(limit int) { s.mark = s.pos }

func (s *StringSource) ResetToMark() error {
	s.pos = s.mark
	return nil
}

// ReaderSource adapts an io.Reader into a Source. Mark support is
// provided by retaining characters read past the mark in a replay
// buffer, up to the limit the caller asked for.
type ReaderSource struct {
	reader  *bufio.Reader
	closer  io.Closer
	marked  bool
	limit   int
	history []rune
	replay  []rune
}

func NewReaderSource(r io.Reader) *ReaderSource {
	src := &ReaderSource{reader: bufio.NewReader(r)}
	if closer, ok := r.(io.Closer); ok {
		src.closer = closer
	}
	return src
}

func (s *ReaderSource) ReadCharacter() (rune, bool, error) {
	var c rune
	if len(s.replay) > 0 {
		c = s.replay[0]
		s.replay = s.replay[1:]
	} else {
		r, _, err := s.reader.ReadRune()
		if errors.Is(err, io.EOF) {
			return 0, true, nil
		}
		if err != nil {
			return 0, false, err
		}
		c = r
	}
	if s.marked {
		if len(s.history) >= s.limit {
			// the mark expired; forget it
			s.marked = false
			s.history = nil
		} else {
			s.history = append(s.history, c)
		}
	}
	return c, false, nil
}

func (s *ReaderSource) Mark(limit int) {
	s.marked = true
	s.limit = limit
	s.history = s.history[:0]
}

func (s *ReaderSource) ResetToMark() error {
	if !s.marked {
		return fmt.Errorf("reset without a valid mark")
	}
	if len(s.history) > 0 {
		restored := make([]rune, 0, len(s.history)+len(s.replay))
		restored = append(restored, s.history...)
		restored = append(restored, s.replay...)
		s.replay = restored
		s.history = s.history[:0]
	}
	return nil
}

// Close closes the underlying reader when it is closeable.
func (s *ReaderSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// openFileSource opens path as a ReaderSource owning the file handle.
func openFileSource(path string) (*ReaderSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewReaderSource(f), nil
}
