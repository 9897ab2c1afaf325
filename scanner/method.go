package scanner

// A Method is a pluggable token-assembly strategy driven by the
// scanner's loop. The hooks run in strict order: Start once, then per
// character Collect followed by Terminate, and when Terminate declines
// to stop, Scan decides whether another character is requested at all.
// Compile produces the token once the loop ends.
//
// A fresh Method instance is built per invocation through the factory
// handed to Run or Branch, so one configured factory can be shared
// across any number of calls.
type Method interface {
	// Start initializes the method from caller-supplied parameters.
	Start(s *Scanner, params []any)
	// Collect is called once for every character the loop consumes,
	// including the very first.
	Collect(s *Scanner, c rune)
	// Terminate decides whether c ends the token. The terminating
	// character has already been consumed; pushing it back is the
	// method's responsibility.
	Terminate(s *Scanner, c rune) bool
	// Scan decides whether to request another character.
	Scan(s *Scanner) bool
	// Compile produces the final token value.
	Compile(s *Scanner) (string, error)
}

// Run starts a method loop by reading a brand-new character first.
func (s *Scanner) Run(build func() Method, params ...any) (string, error) {
	m := build()
	m.Start(s, params)
	s.drive(m)
	return m.Compile(s)
}

// Branch starts a method loop from the scanner's current character
// instead of reading a new one, short-circuiting immediately when that
// character already terminates the token.
func (s *Scanner) Branch(build func() Method, params ...any) (string, error) {
	m := build()
	m.Start(s, params)
	c := s.Current()
	m.Collect(s, c)
	if !m.Terminate(s, c) && m.Scan(s) {
		s.drive(m)
	}
	return m.Compile(s)
}

func (s *Scanner) drive(m Method) {
	for {
		c := s.Next()
		m.Collect(s, c)
		if m.Terminate(s, c) {
			return
		}
		if !m.Scan(s) {
			return
		}
	}
}

// BaseMethod supplies the default Method behavior: buffer every
// character, stop at end of stream, always request more, and compile
// to the buffered text. Embed it and override the hooks that matter.
type BaseMethod struct {
	Buffer []rune
}

func (m *BaseMethod) Start(_ *Scanner, _ []any) {
	m.Buffer = m.Buffer[:0]
}

func (m *BaseMethod) Collect(_ *Scanner, c rune) {
	if c != 0 {
		m.Buffer = append(m.Buffer, c)
	}
}

func (m *BaseMethod) Terminate(_ *Scanner, c rune) bool {
	return c == 0
}

func (m *BaseMethod) Scan(_ *Scanner) bool { return true }

func (m *BaseMethod) Compile(_ *Scanner) (string, error) {
	return string(m.Buffer), nil
}

// Drop removes the last n buffered characters, for methods that
// consume a terminator they do not want in the token.
func (m *BaseMethod) Drop(n int) {
	if n > len(m.Buffer) {
		n = len(m.Buffer)
	}
	m.Buffer = m.Buffer[:len(m.Buffer)-n]
}
